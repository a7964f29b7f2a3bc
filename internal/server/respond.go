package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/getsentry/sentry-go"
	"github.com/go-chi/chi/v5"
	"github.com/paulexconde/vaxreview/pkg/fault"
)

// maxBodyBytes bounds request bodies; a review with images and a survey fits well below it.
const maxBodyBytes = 1 << 20

type errorBody struct {
	Error  string                   `json:"error"`
	Fields []*fault.ValidationError `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("JSON encode failed: %v", err)
	}
}

// writeError answers with the status the error maps to. Internal errors are
// logged and reported but never shown to the client.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := fault.HTTPStatus(err)
	body := errorBody{Error: err.Error()}

	var fields fault.ValidationErrors
	var field *fault.ValidationError
	switch {
	case errors.As(err, &fields):
		body.Error = "validation failed"
		body.Fields = fields
	case errors.As(err, &field):
		body.Error = "validation failed"
		body.Fields = []*fault.ValidationError{field}
	}

	if status == http.StatusInternalServerError {
		s.logger.Printf("%s %s: %v", r.Method, r.URL.Path, err)
		if hub := sentry.GetHubFromContext(r.Context()); hub != nil {
			hub.CaptureException(err)
		} else {
			sentry.CaptureException(err)
		}
		body = errorBody{Error: http.StatusText(status)}
	}

	writeJSON(w, status, body)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		return fault.NewClientError("invalid request body", err)
	}
	return nil
}

func pathID(r *http.Request, name string) (int, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fault.NewValidationError(name, raw, "must be a positive integer")
	}
	return id, nil
}
