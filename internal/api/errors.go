package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/pageza/recipe-catalog/backend/internal/apperrors"
	"github.com/pageza/recipe-catalog/backend/internal/types"
)

// respondError writes the error envelope for err. Only the first validation
// failure is reported. Causes of internal errors are logged, never returned.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		fe := validationErrs[0]
		writeError(c, http.StatusBadRequest, types.FieldPath(fe)+": "+types.ValidationMessage(fe))
		return
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxErr), errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		writeError(c, http.StatusBadRequest, "Malformed JSON request body")
		return
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		writeError(c, http.StatusBadRequest, field+": has an invalid type")
		return
	}

	if appErr, ok := apperrors.As(err); ok {
		status := appErr.StatusCode()
		if status >= http.StatusInternalServerError {
			logInternal(c, logger, err)
			writeError(c, status, "An unexpected error occurred")
			return
		}
		writeError(c, status, appErr.Error())
		return
	}

	logInternal(c, logger, err)
	writeError(c, http.StatusInternalServerError, "An unexpected error occurred")
}

func writeError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, types.NewErrorResponse(status, message))
}

func logInternal(c *gin.Context, logger *zap.Logger, err error) {
	_ = c.Error(err)
	logger.Error("request failed",
		zap.String("request_id", c.GetString("request_id")),
		zap.String("path", c.FullPath()),
		zap.Error(err))
}
