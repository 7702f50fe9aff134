package util

import (
	"dating_scan_backend/internal/scoring"
	"dating_scan_backend/pkg/logger"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Response is the envelope of every API reply.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    http.StatusCreated,
		Message: "created",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
	})
}

func ErrorWithData(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
		Data:    data,
	})
}

func Unauthorized(c *gin.Context) {
	Error(c, http.StatusUnauthorized, "Unauthorized")
}

func Forbidden(c *gin.Context) {
	Error(c, http.StatusForbidden, "Forbidden")
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

func NotFound(c *gin.Context) {
	Error(c, http.StatusNotFound, "Resource not found")
}

func TooManyRequests(c *gin.Context) {
	Error(c, http.StatusTooManyRequests, "Too many requests")
}

func InternalServerError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "Internal server error")
}

func LogInternalError(c *gin.Context, err error) {
	logger.Log.Error("Internal server error",
		zap.String("path", c.FullPath()),
		zap.Error(err))
	InternalServerError(c)
}

// HandleServiceError maps domain errors onto the response envelope.
func HandleServiceError(c *gin.Context, err error) {
	var denied *RetakeDeniedError
	var incomplete *IncompleteError

	switch {
	case errors.As(err, &denied):
		data := gin.H{"reason": denied.Reason}
		if denied.CanRetakeAfter != nil {
			data["canRetakeAfter"] = denied.CanRetakeAfter.UTC().Format(time.RFC3339)
		}
		if denied.AssessmentID != "" {
			data["assessmentId"] = denied.AssessmentID
		}
		ErrorWithData(c, http.StatusConflict, err.Error(), data)
	case errors.As(err, &incomplete):
		ErrorWithData(c, http.StatusUnprocessableEntity, err.Error(), gin.H{
			"answered": incomplete.Answered,
			"required": incomplete.Required,
			"missing":  incomplete.Missing,
		})
	case errors.Is(err, ErrAssessmentNotFound),
		errors.Is(err, ErrDefinitionNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		NotFound(c)
	case errors.Is(err, ErrPermissionDenied):
		Forbidden(c)
	case errors.Is(err, ErrInvalidState):
		Error(c, http.StatusConflict, err.Error())
	case errors.Is(err, scoring.ErrUnknownQuestion),
		errors.Is(err, scoring.ErrMalformedResponse):
		BadRequest(c, err.Error())
	case errors.Is(err, scoring.ErrInsufficientData):
		Error(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ErrNarratorDisabled):
		Error(c, http.StatusServiceUnavailable, err.Error())
	default:
		LogInternalError(c, err)
	}
}
