package scorer

import (
	"errors"
	"net/http"
)

// InternalMessage is returned for failures the client cannot act on.
const InternalMessage = "internal error"

// Error kinds reported by ErrorKind.
const (
	KindFormat    = "format"
	KindNotFound  = "not_found"
	KindSchema    = "schema"
	KindModelLoad = "model_load"
	KindInternal  = "internal"
)

type kinded interface {
	error
	ErrorKind() string
}

// Kind returns the classification of err, or KindInternal when err carries
// none.
func Kind(err error) string {
	var k kinded
	if errors.As(err, &k) {
		return k.ErrorKind()
	}
	return KindInternal
}

// Classify maps a pipeline error to an HTTP status and the message sent to the
// client. Errors without a client-facing kind are reported as internal errors
// so store and model details stay in the logs.
func Classify(err error) (int, string) {
	if err == nil {
		return http.StatusOK, ""
	}
	var k kinded
	if !errors.As(err, &k) {
		return http.StatusInternalServerError, InternalMessage
	}
	switch k.ErrorKind() {
	case KindFormat:
		return http.StatusBadRequest, FormatMessage
	case KindNotFound:
		return http.StatusNotFound, k.Error()
	case KindSchema:
		return http.StatusUnprocessableEntity, k.Error()
	default:
		return http.StatusInternalServerError, InternalMessage
	}
}
