package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"kebutuhan-pln/internal/middleware"
	"kebutuhan-pln/internal/model"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// statusByCode maps domain error codes onto HTTP status codes. Unlisted codes
// are treated as internal errors.
var statusByCode = map[string]int{
	model.ErrCodeInvalidJSON:       http.StatusBadRequest,
	model.ErrCodeMissingField:      http.StatusBadRequest,
	model.ErrCodeEmptyCart:         http.StatusBadRequest,
	model.ErrCodeInvalidLineItem:   http.StatusBadRequest,
	model.ErrCodeInvalidAddress:    http.StatusBadRequest,
	model.ErrCodeUnknownStatus:     http.StatusBadRequest,
	model.ErrCodeInvalidDate:       http.StatusBadRequest,
	model.ErrCodeOrderNotFound:     http.StatusNotFound,
	model.ErrCodeProductNotFound:   http.StatusNotFound,
	model.ErrCodeInsufficientStock: http.StatusConflict,
	model.ErrCodeInvalidTransition: http.StatusConflict,
	model.ErrCodeOrderTerminal:     http.StatusConflict,
	model.ErrCodeNoApprovedItems:   http.StatusConflict,
	model.ErrCodeUnauthorised:      http.StatusUnauthorized,
	model.ErrCodeForbidden:         http.StatusForbidden,
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError translates err into the error envelope. Domain errors keep their
// code and message; anything else is logged and reported as INTERNAL_ERROR.
func writeError(w http.ResponseWriter, r *http.Request, err error, logger zerolog.Logger) {
	resp := model.ErrorResponse{CorrelationID: chimw.GetReqID(r.Context())}
	status := http.StatusInternalServerError

	var de *model.DomainError
	if errors.As(err, &de) {
		if s, ok := statusByCode[de.Code]; ok {
			status = s
		}
		resp.Error = de.Code
		resp.Message = de.Message
		resp.Details = de.Details
	} else {
		resp.Error = model.ErrCodeInternalError
		resp.Message = "An unexpected error occurred"
	}

	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Err(err).
		Str("code", resp.Error).
		Int("status", status).
		Str("path", r.URL.Path).
		Msg("handler error")

	writeJSON(w, status, resp)
}

// decodeJSON reads the request body into v.
func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return model.NewDomainError(model.ErrCodeInvalidJSON, fmt.Sprintf("Invalid request body: %v", err))
	}
	return nil
}

// principal returns the caller placed on the context by middleware.Principal.
func principal(r *http.Request) (model.Principal, error) {
	p, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		return model.Principal{}, model.ErrUnauthorised
	}
	return p, nil
}

func missingField(name string) error {
	return model.NewDomainError(model.ErrCodeMissingField, fmt.Sprintf("%s is required", name))
}
