package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/ssis/internal/app/models/dto"
	"github.com/yigit/ssis/internal/pkg/apperrors"
	"github.com/yigit/ssis/internal/pkg/logger"
)

// --- Central Error Handling Middleware/Function ---

// HandleAPIError maps application errors to a status code and the error envelope
func HandleAPIError(c *gin.Context, err error) {
	var ce *apperrors.CustomError
	errors.As(err, &ce)
	message := func(fallback string) string {
		if ce != nil && ce.Message != "" {
			return ce.Message
		}
		return fallback
	}

	switch {
	case errors.Is(err, apperrors.ErrResourceNotFound):
		c.JSON(http.StatusNotFound, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, message("Resource not found")),
		))
	case errors.Is(err, apperrors.ErrResourceAlreadyExists):
		c.JSON(http.StatusConflict, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeResourceAlreadyExists, message("Resource already exists")),
		))
	case errors.Is(err, apperrors.ErrValidationFailed):
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, message("Validation failed")).
			WithSeverity(dto.ErrorSeverityWarning)
		if fields := apperrors.FieldErrors(err); len(fields) > 0 {
			detail = detail.WithDetails(fields)
			if len(fields) == 1 {
				detail = detail.WithField(fields[0].Field)
			}
		}
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
	case errors.Is(err, apperrors.ErrBadRequest):
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeBadRequest, message("Bad request")).WithSeverity(dto.ErrorSeverityWarning),
		))
	case errors.Is(err, apperrors.ErrInvalidReference):
		detail := dto.NewErrorDetail(dto.ErrorCodeInvalidReference, message("Referenced record does not exist"))
		if ce != nil {
			if field, ok := ce.Details["field"].(string); ok {
				detail = detail.WithField(field)
			}
		}
		c.JSON(http.StatusUnprocessableEntity, dto.NewErrorResponse(detail))
	default:
		logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Unhandled error")
		detail := dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error").
			WithSeverity(dto.ErrorSeverityCritical)
		if gin.Mode() == gin.DebugMode {
			detail = detail.WithDebugInfo("%v", err)
		}
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(detail))
	}
}

// HandleBindError answers a request whose body or query could not be decoded
func HandleBindError(c *gin.Context, err error) {
	detail := dto.NewErrorDetail(dto.ErrorCodeBadRequest, "Invalid request data").WithDetails(err.Error())
	c.JSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
}

// Recovery turns a panic in a handler into a 500 response
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error().Interface("panic", recovered).Str("path", c.Request.URL.Path).Msg("Recovered from panic")
		detail := dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error").
			WithSeverity(dto.ErrorSeverityCritical)
		c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewErrorResponse(detail))
	})
}
