package shared

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/render"
	"github.com/gorilla/schema"

	"github.com/watchdock/agent/api/server/shared/apierrors"
	"github.com/watchdock/agent/internal/logger"
)

// ResultWriter writes a handler's successful response.
type ResultWriter interface {
	WriteResult(w http.ResponseWriter, r *http.Request, v interface{})
}

// RequestDecoderValidator populates a request struct from the query
// string or JSON body, writing the error response itself on failure.
type RequestDecoderValidator interface {
	DecodeAndValidate(w http.ResponseWriter, r *http.Request, v interface{}) bool
}

type DefaultResultWriter struct {
	logger *logger.Logger
}

func NewDefaultResultWriter(l *logger.Logger) *DefaultResultWriter {
	return &DefaultResultWriter{logger: l}
}

func (writer *DefaultResultWriter) WriteResult(w http.ResponseWriter, r *http.Request, v interface{}) {
	render.JSON(w, r, v)
}

type DefaultRequestDecoderValidator struct {
	logger  *logger.Logger
	decoder *schema.Decoder
}

func NewDefaultRequestDecoderValidator(l *logger.Logger) *DefaultRequestDecoderValidator {
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)

	return &DefaultRequestDecoderValidator{logger: l, decoder: decoder}
}

func (v *DefaultRequestDecoderValidator) DecodeAndValidate(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	var err error

	if r.Method == http.MethodGet || r.Method == http.MethodDelete {
		err = v.decoder.Decode(req, r.URL.Query())
	} else {
		err = json.NewDecoder(r.Body).Decode(req)
	}

	if err != nil {
		apierrors.HandleAPIError(v.logger, w, r, apierrors.NewErrPassThroughToClient(
			fmt.Errorf("could not decode request: %w", err), http.StatusBadRequest,
		))

		return false
	}

	return true
}
