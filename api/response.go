package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/poiesic/pocketgenie/core"
	"github.com/poiesic/pocketgenie/search"
	"github.com/poiesic/pocketgenie/storage"
	"github.com/poiesic/pocketgenie/summarize"
)

// errBadRequest marks malformed input: bad JSON or query parameters.
var errBadRequest = errors.New("bad request")

type errorResponse struct {
	Detail string `json:"detail"`
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrInvalidTask),
		errors.Is(err, core.ErrInvalidNote),
		errors.Is(err, core.ErrInvalidPriority),
		errors.Is(err, summarize.ErrEmptyContent),
		errors.Is(err, summarize.ErrInvalidMaxPoints):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errBadRequest),
		errors.Is(err, search.ErrInvalidFilter),
		errors.Is(err, search.ErrInvalidLimit),
		errors.Is(err, storage.ErrInvalidQuery):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError logs err and writes it as {"detail": ...}. Server errors hide
// their message from the client.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)

	attrs := []any{"status", status, "path", r.URL.Path, "error", err.Error()}
	var ge *goerr.Error
	if errors.As(err, &ge) {
		attrs = append(attrs, "values", ge.Values())
	}
	if status >= http.StatusInternalServerError {
		if ge != nil {
			attrs = append(attrs, "stack", ge.Stacks())
		}
		s.logger.Error("HTTP error", attrs...)
		s.writeJSON(w, status, errorResponse{Detail: http.StatusText(status)})
		return
	}
	s.logger.Debug("HTTP error", attrs...)
	s.writeJSON(w, status, errorResponse{Detail: detail(err)})
}

// detail strips goerr's wrapping messages down to the domain error text.
func detail(err error) string {
	var ge *goerr.Error
	if errors.As(err, &ge) && ge.Unwrap() != nil {
		return detail(ge.Unwrap())
	}
	return err.Error()
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("failed to marshal response", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data) //nolint:errcheck // header already committed
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %v", errBadRequest, err)
	}
	return nil
}
