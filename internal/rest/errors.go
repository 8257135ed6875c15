package rest

import (
	"errors"
	"net/http"

	"github.com/chilisites/postsapi/api"
	"github.com/chilisites/postsapi/blog/domain"
	"github.com/chilisites/postsapi/internal/middleware"
	ndomain "github.com/chilisites/postsapi/notification/domain"
	"github.com/chilisites/postsapi/shared/status"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const internalErrorMessage = "internal server error"

// writeError maps err to its status code and a body that never carries
// internal details.
func writeError(c *gin.Context, err error) {
	code := status.ErrorCode(err)

	var dispatchErr *ndomain.DispatchError
	msg := status.Message(err)
	switch {
	case errors.As(err, &dispatchErr):
		msg = dispatchErr.Error()
	case code >= http.StatusInternalServerError || msg == "":
		msg = internalErrorMessage
	}

	event := log.Warn()
	if code >= http.StatusInternalServerError {
		event = log.Error()
	}
	event.Err(err).
		Str("request_id", middleware.GetRequestID(c)).
		Int("status", code).
		Msg("Request failed")

	c.AbortWithStatusJSON(code, api.Error{Error: msg})
}

// badRequest reports an unreadable request body.
func badRequest(c *gin.Context, err error) {
	writeError(c, status.Wrap(domain.ErrValidation, err))
}
