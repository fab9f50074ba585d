package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushq/vaultd/internal/errdefs"
	"github.com/campushq/vaultd/internal/services/access"
	"github.com/campushq/vaultd/internal/services/gateway"
	"github.com/campushq/vaultd/internal/services/identity"
)

// stubGateway implements vaultGateway with overridable functions. Handlers
// under test only exercise the functions a test sets; everything else
// panics to surface accidental calls.
type stubGateway struct {
	getSecret      func(creds gateway.Credentials, label, key string) ([]byte, error)
	setSecret      func(creds gateway.Credentials, label, key string, value []byte) (bool, error)
	deleteSecret   func(creds gateway.Credentials, label, key string) error
	listKeys       func(creds gateway.Credentials, label string) ([]string, error)
	listLabels     func(creds gateway.Credentials) ([]string, error)
	grant          func(creds gateway.Credentials, targetID, label string, perm access.Permission) (access.Permission, error)
	revoke         func(creds gateway.Credentials, targetID, label string, perm access.Permission) (access.Permission, error)
	describeAccess func(creds gateway.Credentials, targetID, label string) (access.Permission, error)
	createClient   func(creds gateway.Credentials, name, description string) (*identity.Client, string, error)
}

func (s *stubGateway) GetSecret(_ context.Context, creds gateway.Credentials, label, key string) ([]byte, error) {
	return s.getSecret(creds, label, key)
}

func (s *stubGateway) SetSecret(_ context.Context, creds gateway.Credentials, label, key string, value []byte) (bool, error) {
	return s.setSecret(creds, label, key, value)
}

func (s *stubGateway) DeleteSecret(_ context.Context, creds gateway.Credentials, label, key string) error {
	return s.deleteSecret(creds, label, key)
}

func (s *stubGateway) ListKeys(_ context.Context, creds gateway.Credentials, label string) ([]string, error) {
	return s.listKeys(creds, label)
}

func (s *stubGateway) ListLabels(_ context.Context, creds gateway.Credentials) ([]string, error) {
	return s.listLabels(creds)
}

func (s *stubGateway) Grant(_ context.Context, creds gateway.Credentials, targetID, label string, perm access.Permission) (access.Permission, error) {
	return s.grant(creds, targetID, label, perm)
}

func (s *stubGateway) Revoke(_ context.Context, creds gateway.Credentials, targetID, label string, perm access.Permission) (access.Permission, error) {
	return s.revoke(creds, targetID, label, perm)
}

func (s *stubGateway) DescribeAccess(_ context.Context, creds gateway.Credentials, targetID, label string) (access.Permission, error) {
	return s.describeAccess(creds, targetID, label)
}

func (s *stubGateway) CreateClient(_ context.Context, creds gateway.Credentials, name, description string) (*identity.Client, string, error) {
	return s.createClient(creds, name, description)
}

func (s *stubGateway) GetClient(_ context.Context, _ gateway.Credentials, _ string) (*identity.Client, error) {
	panic("GetClient not stubbed")
}

func (s *stubGateway) ListClients(_ context.Context, _ gateway.Credentials) ([]identity.Client, error) {
	panic("ListClients not stubbed")
}

func (s *stubGateway) UpdateClient(_ context.Context, _ gateway.Credentials, _, _, _ string) error {
	panic("UpdateClient not stubbed")
}

func (s *stubGateway) RotateClientSecret(_ context.Context, _ gateway.Credentials, _ string) (string, error) {
	panic("RotateClientSecret not stubbed")
}

func (s *stubGateway) DeleteClient(_ context.Context, _ gateway.Credentials, _ string) error {
	panic("DeleteClient not stubbed")
}

func serveRequest(t *testing.T, gw vaultGateway, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()

	r := NewRouter(RouterOptions{Gateway: gw})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestGetSecretHandler(t *testing.T) {
	gw := &stubGateway{
		getSecret: func(creds gateway.Credentials, label, key string) ([]byte, error) {
			assert.Equal(t, "c1", creds.ClientID)
			assert.Equal(t, "s3cret", creds.Secret)
			assert.Equal(t, "app", label)
			assert.Equal(t, "api-key", key)
			return []byte("v1"), nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/vault/app/api-key", nil)
	req.Header.Set("Authorization", "Bearer c1:s3cret")
	rec := serveRequest(t, gw, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "api-key", body["key"])
	assert.Equal(t, "v1", body["value"])
}

func TestErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{"authentication", errdefs.ErrAuthentication, http.StatusUnauthorized, "authentication failed"},
		{"access denied", errdefs.ErrAccessDenied, http.StatusForbidden, "access denied"},
		{"not found", errdefs.NotFoundf("secret %q in vault %q", "k", "app"), http.StatusNotFound, `secret "k" in vault "app"`},
		{"validation", errdefs.Validationf("vault label must not be empty"), http.StatusBadRequest, "vault label"},
		{"conflict", errdefs.Conflictf("client id taken"), http.StatusConflict, "client id taken"},
		{"connection", errdefs.ErrConnection, http.StatusBadGateway, "storage unavailable"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gw := &stubGateway{
				getSecret: func(gateway.Credentials, string, string) ([]byte, error) {
					return nil, tc.err
				},
			}

			req := httptest.NewRequest(http.MethodGet, "/vault/app/k", nil)
			rec := serveRequest(t, gw, req)

			assert.Equal(t, tc.wantStatus, rec.Code)
			body := decodeBody(t, rec)
			assert.Contains(t, body["error"], tc.wantBody)
		})
	}
}

func TestDenialBodiesStayGeneric(t *testing.T) {
	gw := &stubGateway{
		getSecret: func(gateway.Credentials, string, string) ([]byte, error) {
			return nil, errdefs.ErrAccessDenied
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/vault/app/hidden-key", nil)
	req.Header.Set("Authorization", "Bearer c1:wrong")
	rec := serveRequest(t, gw, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.NotContains(t, rec.Body.String(), "hidden-key")
	assert.NotContains(t, rec.Body.String(), "app")
}

func TestSetSecretHandler(t *testing.T) {
	t.Run("created vs updated", func(t *testing.T) {
		created := true
		gw := &stubGateway{
			setSecret: func(_ gateway.Credentials, _, _ string, value []byte) (bool, error) {
				assert.Equal(t, []byte("v1"), value)
				return created, nil
			},
		}

		req := httptest.NewRequest(http.MethodPost, "/vault/app/k", strings.NewReader(`{"value":"v1"}`))
		rec := serveRequest(t, gw, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "created", decodeBody(t, rec)["action"])

		created = false
		rec = serveRequest(t, gw, httptest.NewRequest(http.MethodPost, "/vault/app/k", strings.NewReader(`{"value":"v1"}`)))
		assert.Equal(t, "updated", decodeBody(t, rec)["action"])
	})

	t.Run("missing value", func(t *testing.T) {
		gw := &stubGateway{}

		req := httptest.NewRequest(http.MethodPost, "/vault/app/k", strings.NewReader(`{}`))
		rec := serveRequest(t, gw, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGrantHandler(t *testing.T) {
	t.Run("accepts permission names", func(t *testing.T) {
		gw := &stubGateway{
			grant: func(_ gateway.Credentials, targetID, label string, perm access.Permission) (access.Permission, error) {
				assert.Equal(t, "c2", targetID)
				assert.Equal(t, "app", label)
				assert.Equal(t, access.Read|access.Create, perm)
				return perm, nil
			},
		}

		body := `{"client_id":"c2","label":"app","permissions":["READ","CREATE"]}`
		req := httptest.NewRequest(http.MethodPost, "/access", strings.NewReader(body))
		rec := serveRequest(t, gw, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, float64(3), decodeBody(t, rec)["permissions"])
	})

	t.Run("accepts integer mask", func(t *testing.T) {
		gw := &stubGateway{
			grant: func(_ gateway.Credentials, _, _ string, perm access.Permission) (access.Permission, error) {
				assert.Equal(t, access.All, perm)
				return perm, nil
			},
		}

		body := `{"client_id":"c2","label":"app","permissions":15}`
		req := httptest.NewRequest(http.MethodPost, "/access", strings.NewReader(body))
		rec := serveRequest(t, gw, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("rejects unknown permission name", func(t *testing.T) {
		gw := &stubGateway{}

		body := `{"client_id":"c2","label":"app","permissions":["WRITE"]}`
		req := httptest.NewRequest(http.MethodPost, "/access", strings.NewReader(body))
		rec := serveRequest(t, gw, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		gw := &stubGateway{}

		req := httptest.NewRequest(http.MethodPost, "/access", strings.NewReader(`{"label":"app"}`))
		rec := serveRequest(t, gw, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestDescribeAccessHandler(t *testing.T) {
	gw := &stubGateway{
		describeAccess: func(_ gateway.Credentials, targetID, label string) (access.Permission, error) {
			return access.Read | access.Update, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/access/c2/app", nil)
	rec := serveRequest(t, gw, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	perms := body["permissions"].(map[string]any)
	assert.Equal(t, true, perms["READ"])
	assert.Equal(t, false, perms["CREATE"])
	assert.Equal(t, true, perms["UPDATE"])
	assert.Equal(t, false, perms["DELETE"])
}

func TestRevokeHandler(t *testing.T) {
	gw := &stubGateway{
		revoke: func(_ gateway.Credentials, targetID, label string, perm access.Permission) (access.Permission, error) {
			assert.Equal(t, access.None, perm)
			return access.None, nil
		},
	}

	req := httptest.NewRequest(http.MethodDelete, "/access/c2/app", nil)
	rec := serveRequest(t, gw, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "revoked", decodeBody(t, rec)["action"])
}

func TestCreateClientHandler(t *testing.T) {
	gw := &stubGateway{
		createClient: func(_ gateway.Credentials, name, description string) (*identity.Client, string, error) {
			assert.Equal(t, "svc", name)
			return &identity.Client{ID: "client-1", Name: name, Description: description}, "plain-secret", nil
		},
	}

	body := `{"name":"svc","description":"a service"}`
	req := httptest.NewRequest(http.MethodPost, "/client", strings.NewReader(body))
	rec := serveRequest(t, gw, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	decoded := decodeBody(t, rec)
	assert.Equal(t, "plain-secret", decoded["client_secret"])
	client := decoded["client"].(map[string]any)
	assert.Equal(t, "client-1", client["id"])
}

func TestHealthAndMetricsBypassAuth(t *testing.T) {
	gw := &stubGateway{}

	rec := serveRequest(t, gw, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serveRequest(t, gw, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
