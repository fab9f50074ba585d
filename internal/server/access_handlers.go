package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/campushq/vaultd/internal/errdefs"
	vaultmw "github.com/campushq/vaultd/internal/middleware"
	"github.com/campushq/vaultd/internal/services/access"
)

// AccessHandlers wires the permission management REST endpoints.
type AccessHandlers struct {
	gateway vaultGateway
}

// NewAccessHandlers creates a new handler set for access management.
func NewAccessHandlers(gw vaultGateway) *AccessHandlers {
	return &AccessHandlers{gateway: gw}
}

type grantRequest struct {
	ClientID    string          `json:"client_id"`
	Label       string          `json:"label"`
	Permissions json.RawMessage `json:"permissions"`
}

// Grant handles POST /access. Permissions arrive either as an integer mask
// or as a list of permission names.
func (h *AccessHandlers) Grant(w http.ResponseWriter, r *http.Request) {
	creds := vaultmw.CredentialsFrom(r.Context())

	var req grantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "missing request body"})
		return
	}
	if req.ClientID == "" || req.Label == "" || len(req.Permissions) == 0 {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "missing required fields: client_id, label, permissions"})
		return
	}

	perm, err := decodePermissions(req.Permissions)
	if err != nil {
		writeError(w, err)
		return
	}

	mask, err := h.gateway.Grant(r.Context(), creds, req.ClientID, req.Label, perm)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"status":      "success",
		"client_id":   req.ClientID,
		"label":       req.Label,
		"permissions": int(mask),
	})
}

// Revoke handles DELETE /access/{client_id}/{label}. Without a body the
// whole mask is revoked; with a permissions body only the named bits are.
func (h *AccessHandlers) Revoke(w http.ResponseWriter, r *http.Request) {
	targetID := chi.URLParam(r, "client_id")
	label := chi.URLParam(r, "label")
	creds := vaultmw.CredentialsFrom(r.Context())

	perm := access.None
	if r.ContentLength > 0 {
		var req struct {
			Permissions json.RawMessage `json:"permissions"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondJSON(w, http.StatusBadRequest, errorBody{Error: "malformed request body"})
			return
		}
		if len(req.Permissions) > 0 {
			p, err := decodePermissions(req.Permissions)
			if err != nil {
				writeError(w, err)
				return
			}
			perm = p
		}
	}

	mask, err := h.gateway.Revoke(r.Context(), creds, targetID, label, perm)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"status":      "success",
		"client_id":   targetID,
		"label":       label,
		"action":      "revoked",
		"permissions": int(mask),
	})
}

// Describe handles GET /access/{client_id}/{label}, returning a per-bit
// breakdown of the target's permissions.
func (h *AccessHandlers) Describe(w http.ResponseWriter, r *http.Request) {
	targetID := chi.URLParam(r, "client_id")
	label := chi.URLParam(r, "label")
	creds := vaultmw.CredentialsFrom(r.Context())

	mask, err := h.gateway.DescribeAccess(r.Context(), creds, targetID, label)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"client_id": targetID,
		"label":     label,
		"permissions": map[string]bool{
			"READ":   mask.Has(access.Read),
			"CREATE": mask.Has(access.Create),
			"UPDATE": mask.Has(access.Update),
			"DELETE": mask.Has(access.Delete),
		},
	})
}

// decodePermissions accepts either an integer mask or a list of permission
// names, mirroring the two request shapes callers use.
func decodePermissions(raw json.RawMessage) (access.Permission, error) {
	var names []string
	if err := json.Unmarshal(raw, &names); err == nil {
		return access.Parse(names)
	}
	var mask int
	if err := json.Unmarshal(raw, &mask); err == nil {
		return access.Permission(mask), nil
	}
	return access.None, errdefs.Validationf("permissions must be an integer or a list of permission names")
}
