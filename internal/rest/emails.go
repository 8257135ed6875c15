package rest

import (
	"net/http"

	"github.com/chilisites/postsapi/api"
	ndomain "github.com/chilisites/postsapi/notification/domain"
	"github.com/gin-gonic/gin"
)

func (a *Api) SendThanks(c *gin.Context) {
	a.dispatch(c, ndomain.KindThanks)
}

func (a *Api) SendInternal(c *gin.Context) {
	a.dispatch(c, ndomain.KindInternal)
}

func (a *Api) dispatch(c *gin.Context, kind ndomain.Kind) {
	var form api.ContactForm
	if err := c.ShouldBindJSON(&form); err != nil {
		badRequest(c, err)
		return
	}

	res, err := a.dispatcher.Dispatch(c.Request.Context(), kind, form.Fields())
	if a.recorder != nil {
		a.recorder.RecordDispatch(string(kind), err)
	}
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.EmailSent{Email: *res})
}
