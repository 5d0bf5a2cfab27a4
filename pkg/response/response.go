// Package response writes the JSON envelope every API endpoint returns.
package response

import (
	"errors"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/socialfeed/pkg/apperr"
	"github.com/d60-Lab/socialfeed/pkg/logger"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Error   string      `json:"error,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Code: 0, Message: "success", Data: data})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Code: 0, Message: "created", Data: data})
}

func fail(c *gin.Context, status int, kind apperr.Kind, msg string) {
	c.AbortWithStatusJSON(status, Response{Code: status, Message: msg, Error: kind.String()})
}

func BadRequest(c *gin.Context, msg string) {
	fail(c, http.StatusBadRequest, apperr.KindInvalidInput, msg)
}

func Unauthorized(c *gin.Context, msg string) {
	fail(c, http.StatusUnauthorized, apperr.KindUnauthorized, msg)
}

func Forbidden(c *gin.Context, msg string) {
	fail(c, http.StatusForbidden, apperr.KindForbidden, msg)
}

func NotFound(c *gin.Context, msg string) {
	fail(c, http.StatusNotFound, apperr.KindNotFound, msg)
}

func Conflict(c *gin.Context, msg string) {
	fail(c, http.StatusConflict, apperr.KindConflict, msg)
}

// InternalError logs and reports err; clients only see a generic message.
func InternalError(c *gin.Context, err error) {
	logger.Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	if hub := sentry.GetHubFromContext(c.Request.Context()); hub != nil {
		hub.CaptureException(err)
	} else {
		sentry.CaptureException(err)
	}
	msg := "internal server error"
	if e, ok := asAppErr(err); ok && e.Message != "" {
		msg = e.Message
	}
	fail(c, http.StatusInternalServerError, apperr.KindServer, msg)
}

func asAppErr(err error) (*apperr.Error, bool) {
	var e *apperr.Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Error maps an error from the service layer onto an HTTP status.
func Error(c *gin.Context, err error) {
	msg := err.Error()
	if e, ok := asAppErr(err); ok {
		msg = e.Message
	}
	switch apperr.KindOf(err) {
	case apperr.KindUnauthorized:
		Unauthorized(c, msg)
	case apperr.KindForbidden:
		Forbidden(c, msg)
	case apperr.KindNotFound:
		NotFound(c, msg)
	case apperr.KindInvalidInput:
		BadRequest(c, msg)
	case apperr.KindConflict:
		Conflict(c, msg)
	default:
		InternalError(c, err)
	}
}
