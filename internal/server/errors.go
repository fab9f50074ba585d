package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/campushq/vaultd/internal/errdefs"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error string `json:"error"`
}

// writeError maps an error from the gateway onto an HTTP status and a JSON
// body. Authentication and authorization failures carry fixed generic
// messages so responses cannot be used to enumerate clients, labels, or
// keys; everything else surfaces the error text.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errdefs.ErrAuthentication):
		respondJSON(w, http.StatusUnauthorized, errorBody{Error: "authentication failed"})
	case errors.Is(err, errdefs.ErrAccessDenied):
		respondJSON(w, http.StatusForbidden, errorBody{Error: "access denied"})
	case errors.Is(err, errdefs.ErrNotFound):
		respondJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	case errors.Is(err, errdefs.ErrValidation):
		respondJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case errors.Is(err, errdefs.ErrConflict):
		respondJSON(w, http.StatusConflict, errorBody{Error: err.Error()})
	case errors.Is(err, errdefs.ErrConnection):
		respondJSON(w, http.StatusBadGateway, errorBody{Error: "storage unavailable"})
	default:
		log.Printf("internal error: %v", err)
		respondJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

// respondJSON writes v as a JSON response with the given status.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}
