package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Sofsavdo/BiznesYordam.uz-sub000/internal/errors"
)

// ErrorBody is the JSON shape of every error response
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes one failure
type ErrorDetail struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	RequestID string                 `json:"request_id,omitempty"`
	Context   map[string]interface{} `json:"context,omitempty"`
}

// statusFor maps an error type to an HTTP status
func statusFor(t errors.Type) int {
	switch t {
	case errors.TypeInput:
		return http.StatusBadRequest
	case errors.TypeUnauthorized:
		return http.StatusUnauthorized
	case errors.TypeForbidden:
		return http.StatusForbidden
	case errors.TypeNotFound, errors.TypeTierNotFound:
		return http.StatusNotFound
	case errors.TypeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError translates err into a status and body. Internal details are
// logged, not returned.
func writeError(c *gin.Context, logger *zap.Logger, err error) {
	detail := ErrorDetail{
		Code:      string(errors.TypeInternal),
		Message:   "internal error",
		RequestID: c.GetString(ctxRequestID),
	}
	status := http.StatusInternalServerError

	if e, ok := errors.As(err); ok {
		status = statusFor(e.Type)
		if status != http.StatusInternalServerError {
			detail.Code = string(e.Type)
			detail.Message = e.Message
			detail.Context = e.Context
		}
	}
	if status == http.StatusInternalServerError && logger != nil {
		logger.Error("request failed",
			zap.String("request_id", detail.RequestID),
			zap.Error(err))
	}

	c.JSON(status, ErrorBody{Error: detail})
}

func (s *Server) writeError(c *gin.Context, err error) {
	writeError(c, s.logger, err)
}
