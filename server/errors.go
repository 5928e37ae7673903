package server

import (
	"net/http"

	"github.com/YuminosukeSato/electrospin/pkg/errors"
	"github.com/YuminosukeSato/electrospin/pkg/log"
	"github.com/gin-gonic/gin"
)

// KindNotFound is reported for unknown model ids.
const KindNotFound = "NotFound"

// ErrModelNotFound is returned when a model id is not cached.
var ErrModelNotFound = errors.New("model not found")

// ErrorBody is the JSON error envelope.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries the error kind and message.
type ErrorDetail struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// statusFor maps an error kind to an HTTP status.
func statusFor(err error) (int, string) {
	if errors.Is(err, ErrModelNotFound) {
		return http.StatusNotFound, KindNotFound
	}
	kind := errors.Kind(err)
	switch kind {
	case errors.KindInvalidDesign, errors.KindInvalidSelection, errors.KindEmptyDataset,
		errors.KindNonNumericData, errors.KindInvalidArgument:
		return http.StatusBadRequest, kind
	case errors.KindDomain:
		return http.StatusUnprocessableEntity, kind
	default:
		return http.StatusInternalServerError, errors.KindInternal
	}
}

// abortWithError writes the error envelope and logs the failure.
func (s *Server) abortWithError(c *gin.Context, err error) {
	status, kind := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", err,
			log.RequestIDKey, requestID(c),
			log.ErrorKindKey, kind,
		)
		message = "internal error"
	} else {
		s.logger.Debug("request rejected",
			log.RequestIDKey, requestID(c),
			log.ErrorKindKey, kind,
			"error.message", message,
		)
	}
	c.AbortWithStatusJSON(status, ErrorBody{Error: ErrorDetail{Kind: kind, Message: message}})
}

// bindError wraps a request decoding failure as a caller error.
func bindError(err error) error {
	return errors.NewValueError("request", err.Error())
}
