package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	vaultmw "github.com/campushq/vaultd/internal/middleware"
)

// VaultHandlers wires the secret storage REST endpoints.
type VaultHandlers struct {
	gateway vaultGateway
}

// NewVaultHandlers creates a new handler set for secret operations.
func NewVaultHandlers(gw vaultGateway) *VaultHandlers {
	return &VaultHandlers{gateway: gw}
}

// ListLabels handles GET /vault/list
func (h *VaultHandlers) ListLabels(w http.ResponseWriter, r *http.Request) {
	creds := vaultmw.CredentialsFrom(r.Context())
	labels, err := h.gateway.ListLabels(r.Context(), creds)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"vaults": labels})
}

// ListKeys handles GET /vault/{label}/list
func (h *VaultHandlers) ListKeys(w http.ResponseWriter, r *http.Request) {
	label := chi.URLParam(r, "label")
	creds := vaultmw.CredentialsFrom(r.Context())
	keys, err := h.gateway.ListKeys(r.Context(), creds, label)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"label": label, "keys": keys})
}

// GetSecret handles GET /vault/{label}/{key}
func (h *VaultHandlers) GetSecret(w http.ResponseWriter, r *http.Request) {
	label := chi.URLParam(r, "label")
	key := chi.URLParam(r, "key")
	creds := vaultmw.CredentialsFrom(r.Context())

	value, err := h.gateway.GetSecret(r.Context(), creds, label, key)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"key": key, "value": string(value)})
}

type setSecretRequest struct {
	Value *string `json:"value"`
}

// SetSecret handles POST /vault/{label}/{key}
func (h *VaultHandlers) SetSecret(w http.ResponseWriter, r *http.Request) {
	label := chi.URLParam(r, "label")
	key := chi.URLParam(r, "key")
	creds := vaultmw.CredentialsFrom(r.Context())

	var req setSecretRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Value == nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "missing 'value' in request body"})
		return
	}

	created, err := h.gateway.SetSecret(r.Context(), creds, label, key, []byte(*req.Value))
	if err != nil {
		writeError(w, err)
		return
	}
	action := "updated"
	if created {
		action = "created"
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"key":    key,
		"action": action,
	})
}

// DeleteSecret handles DELETE /vault/{label}/{key}
func (h *VaultHandlers) DeleteSecret(w http.ResponseWriter, r *http.Request) {
	label := chi.URLParam(r, "label")
	key := chi.URLParam(r, "key")
	creds := vaultmw.CredentialsFrom(r.Context())

	if err := h.gateway.DeleteSecret(r.Context(), creds, label, key); err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"key":    key,
		"action": "deleted",
	})
}
