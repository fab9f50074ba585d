package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	vaultmw "github.com/campushq/vaultd/internal/middleware"
	"github.com/campushq/vaultd/internal/services/identity"
)

// ClientHandlers wires the client management REST endpoints.
type ClientHandlers struct {
	gateway vaultGateway
}

// NewClientHandlers creates a new handler set for client management.
func NewClientHandlers(gw vaultGateway) *ClientHandlers {
	return &ClientHandlers{gateway: gw}
}

// clientBody is the JSON shape of a client in responses. The secret hash
// never leaves the service layer.
type clientBody struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func toClientBody(c *identity.Client) clientBody {
	return clientBody{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
	}
}

type clientRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Create handles POST /client. The generated secret appears in this
// response and nowhere else.
func (h *ClientHandlers) Create(w http.ResponseWriter, r *http.Request) {
	creds := vaultmw.CredentialsFrom(r.Context())

	var req clientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "missing request body"})
		return
	}

	client, secret, err := h.gateway.CreateClient(r.Context(), creds, req.Name, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{
		"status":        "success",
		"client":        toClientBody(client),
		"client_secret": secret,
	})
}

// List handles GET /client
func (h *ClientHandlers) List(w http.ResponseWriter, r *http.Request) {
	creds := vaultmw.CredentialsFrom(r.Context())

	clients, err := h.gateway.ListClients(r.Context(), creds)
	if err != nil {
		writeError(w, err)
		return
	}
	bodies := make([]clientBody, 0, len(clients))
	for i := range clients {
		bodies = append(bodies, toClientBody(&clients[i]))
	}
	respondJSON(w, http.StatusOK, map[string]any{"clients": bodies})
}

// Get handles GET /client/{id}
func (h *ClientHandlers) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	creds := vaultmw.CredentialsFrom(r.Context())

	client, err := h.gateway.GetClient(r.Context(), creds, id)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"client": toClientBody(client)})
}

// Update handles PUT /client/{id}
func (h *ClientHandlers) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	creds := vaultmw.CredentialsFrom(r.Context())

	var req clientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "missing request body"})
		return
	}

	if err := h.gateway.UpdateClient(r.Context(), creds, id, req.Name, req.Description); err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"status":    "success",
		"client_id": id,
		"action":    "updated",
	})
}

// Rotate handles POST /client/{id}/secret. The previous secret stops
// working as soon as this returns.
func (h *ClientHandlers) Rotate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	creds := vaultmw.CredentialsFrom(r.Context())

	secret, err := h.gateway.RotateClientSecret(r.Context(), creds, id)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"status":        "success",
		"client_id":     id,
		"client_secret": secret,
	})
}

// Delete handles DELETE /client/{id}
func (h *ClientHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	creds := vaultmw.CredentialsFrom(r.Context())

	if err := h.gateway.DeleteClient(r.Context(), creds, id); err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"status":    "success",
		"client_id": id,
		"action":    "deleted",
	})
}
