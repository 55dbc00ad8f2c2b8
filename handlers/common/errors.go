package common

import (
	"net/http"
	"strconv"

	"github.com/cinebuzz/discovery/services/auth"
	sv "github.com/cinebuzz/discovery/services/common"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// Abort answers with the status matching err. Validation errors are 400, auth
// errors 401, anything else is logged and reported as 500.
func Abort(c *gin.Context, err error) {
	var ve *sv.ValidationError
	var be *auth.BackendError
	switch {
	case errors.As(err, &ve):
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: ve.Message, Field: ve.Field})
	case errors.Is(err, auth.ErrUnauthorized),
		errors.Is(err, auth.ErrTokenExpired),
		errors.Is(err, auth.ErrInvalidCredentials):
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: err.Error()})
	case errors.As(err, &be) && be.Code >= 400 && be.Code < 500:
		c.AbortWithStatusJSON(be.Code, ErrorResponse{Error: be.Message})
	default:
		log.WithError(err).WithField("path", c.FullPath()).Error("request failed")
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}

// IntQuery returns the integer query parameter or def when it is missing or invalid.
func IntQuery(c *gin.Context, name string, def int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return def
	}
	return v
}
