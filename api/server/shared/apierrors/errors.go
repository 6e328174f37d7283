package apierrors

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/watchdock/agent/internal/logger"
)

// RequestError separates what the client may see from what gets logged.
type RequestError interface {
	Error() string
	ExternalError() string
	GetStatusCode() int
}

type errInternal struct {
	err error
}

func NewErrInternal(err error) RequestError {
	return &errInternal{err: err}
}

func (e *errInternal) Error() string {
	return e.err.Error()
}

func (e *errInternal) ExternalError() string {
	return "an internal error occurred"
}

func (e *errInternal) GetStatusCode() int {
	return http.StatusInternalServerError
}

type errPassThrough struct {
	err        error
	statusCode int
}

// NewErrPassThroughToClient surfaces the wrapped error text to the
// client with the given status code.
func NewErrPassThroughToClient(err error, statusCode int) RequestError {
	return &errPassThrough{err: err, statusCode: statusCode}
}

func (e *errPassThrough) Error() string {
	return e.err.Error()
}

func (e *errPassThrough) ExternalError() string {
	return e.err.Error()
}

func (e *errPassThrough) GetStatusCode() int {
	return e.statusCode
}

type errorResponse struct {
	Error string `json:"error"`
}

// HandleAPIError logs the internal error and writes the external one.
func HandleAPIError(l *logger.Logger, w http.ResponseWriter, r *http.Request, reqErr RequestError) {
	if reqErr.GetStatusCode() >= http.StatusInternalServerError {
		l.Error().Caller().Msgf("%v", reqErr.Error())
	} else {
		l.Info().Msgf("%v", reqErr.Error())
	}

	render.Status(r, reqErr.GetStatusCode())
	render.JSON(w, r, &errorResponse{Error: reqErr.ExternalError()})
}
