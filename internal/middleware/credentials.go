package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/campushq/vaultd/internal/services/gateway"
)

type contextKey struct{ name string }

var credentialsKey = &contextKey{"credentials"}

// Credentials extracts the caller's credential pair from the Authorization
// header and stores it in the request context. The expected form is
//
//	Authorization: Bearer <client_id>:<client_secret>
//
// Requests without the header pass through with empty credentials; the
// gateway rejects those during authentication, so unauthenticated health
// and metrics routes stay unaffected.
func Credentials(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		creds := parseAuthorization(r.Header.Get("Authorization"))
		ctx := context.WithValue(r.Context(), credentialsKey, creds)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CredentialsFrom returns the credentials stored by the middleware, or the
// zero value when none were presented.
func CredentialsFrom(ctx context.Context) gateway.Credentials {
	creds, _ := ctx.Value(credentialsKey).(gateway.Credentials)
	return creds
}

func parseAuthorization(header string) gateway.Credentials {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return gateway.Credentials{}
	}
	token := strings.TrimPrefix(header, prefix)
	id, secret, ok := strings.Cut(token, ":")
	if !ok {
		return gateway.Credentials{}
	}
	return gateway.Credentials{ClientID: id, Secret: secret}
}
