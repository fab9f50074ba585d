package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	vaultmw "github.com/campushq/vaultd/internal/middleware"
)

// RouterOptions controls the construction of the vaultd HTTP router.
// The zero value is valid apart from Gateway, which is required; sensible
// defaults are applied where fields are not set.
type RouterOptions struct {
	Gateway       vaultGateway
	CORSOptions   *cors.Options
	Middleware    []func(http.Handler) http.Handler
	HealthHandler http.HandlerFunc
	ExtraRoutes   func(chi.Router)
}

// DefaultCORSOptions returns the shared development CORS policy.
func DefaultCORSOptions() cors.Options {
	return cors.Options{
		AllowedOrigins: []string{
			"http://localhost:5173",
			"http://127.0.0.1:5173",
		},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}
}

func defaultHealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// NewRouter assembles a chi.Router with shared middleware, CORS policy, and
// the vault handlers mounted. The router can be tailored via RouterOptions
// for CLI usage, tests, or other entrypoints.
func NewRouter(opts RouterOptions) chi.Router {
	r := chi.NewRouter()

	// Baseline middleware shared across entrypoints.
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	corsCfg := DefaultCORSOptions()
	if opts.CORSOptions != nil {
		corsCfg = *opts.CORSOptions
	}
	r.Use(cors.Handler(corsCfg))

	for _, mw := range opts.Middleware {
		if mw != nil {
			r.Use(mw)
		}
	}

	r.Use(vaultmw.Credentials)

	vault := NewVaultHandlers(opts.Gateway)
	r.Route("/vault", func(r chi.Router) {
		r.Get("/list", vault.ListLabels)
		r.Get("/{label}/list", vault.ListKeys)
		r.Get("/{label}/{key}", vault.GetSecret)
		r.Post("/{label}/{key}", vault.SetSecret)
		r.Delete("/{label}/{key}", vault.DeleteSecret)
	})

	acl := NewAccessHandlers(opts.Gateway)
	r.Route("/access", func(r chi.Router) {
		r.Post("/", acl.Grant)
		r.Get("/{client_id}/{label}", acl.Describe)
		r.Delete("/{client_id}/{label}", acl.Revoke)
	})

	clients := NewClientHandlers(opts.Gateway)
	r.Route("/client", func(r chi.Router) {
		r.Post("/", clients.Create)
		r.Get("/", clients.List)
		r.Get("/{id}", clients.Get)
		r.Put("/{id}", clients.Update)
		r.Delete("/{id}", clients.Delete)
		r.Post("/{id}/secret", clients.Rotate)
	})

	healthHandler := opts.HealthHandler
	if healthHandler == nil {
		healthHandler = defaultHealthHandler
	}
	r.Get("/healthz", healthHandler)
	r.Handle("/metrics", promhttp.Handler())

	if opts.ExtraRoutes != nil {
		opts.ExtraRoutes(r)
	}

	return r
}
