package rest

import (
	"net/http"

	"github.com/chilisites/postsapi/api"
	"github.com/gin-gonic/gin"
)

const healthMessage = "API de ChiliSites funcionando correctamente 🚀"

func (a *Api) Health(c *gin.Context) {
	c.JSON(http.StatusOK, api.Message{Message: healthMessage})
}
