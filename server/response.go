package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/asr-server/errors"
)

// RespondWithError sends err in the standard error envelope. An
// *apperrors.AppError anywhere in the chain sets status and code; anything
// else becomes a 500.
func RespondWithError(c *gin.Context, err error) {
	appErr := apperrors.Wrap(err)
	c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.ToResponse())
}

// RespondOK sends a 200 with body as is.
func RespondOK(c *gin.Context, body any) {
	c.JSON(http.StatusOK, body)
}

// noRoute answers unknown paths in the error envelope.
func noRoute(c *gin.Context) {
	RespondWithError(c, apperrors.NotFound(c.Request.URL.Path))
}

func noMethod(c *gin.Context) {
	RespondWithError(c, apperrors.MethodNotAllowed(c.Request.Method, c.Request.URL.Path))
}
