package cmd

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/campushq/vaultd/cmd/cmdutil"
	"github.com/campushq/vaultd/internal/errdefs"
	"github.com/campushq/vaultd/internal/server"
	"github.com/campushq/vaultd/internal/telemetry"
)

// sessionSigningKey is the bootstrap secret the server reads at startup.
const sessionSigningKey = "session-signing-key"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the vault API server",
	Long:  `Starts the HTTP server exposing the secret, access, and client endpoints.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		shutdownTelemetry, err := telemetry.Init(cmd.Context(), cfg.Observability)
		if err != nil {
			return fmt.Errorf("failed to initialize telemetry: %w", err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTelemetry(ctx); err != nil {
				log.Printf("Warning: telemetry shutdown: %v", err)
			}
		}()
		telemetry.InitMetrics()

		bundle, err := cmdutil.NewServiceBundle(cfg)
		if err != nil {
			return err
		}
		defer bundle.Close()

		log.Printf("Connected to database")

		// The session signing key lives in the bootstrap vault; its absence
		// means `vaultd bootstrap` has not run yet. The server still starts,
		// it just cannot issue signed session material.
		if _, err := bundle.Gateway.BootstrapSecret(cmd.Context(), sessionSigningKey); err != nil {
			if errdefs.IsNotFound(err) {
				log.Printf("WARNING: no %q secret in the %q vault; run 'vaultd bootstrap'",
					sessionSigningKey, bundle.Gateway.BootstrapLabel())
			} else {
				return fmt.Errorf("read bootstrap secret: %w", err)
			}
		}

		r := server.NewRouter(server.RouterOptions{
			Gateway: bundle.Gateway,
		})

		// h2c lets HTTP/2 clients connect without TLS termination in front.
		h2cHandler := h2c.NewHandler(r, &http2.Server{})

		srv := &http.Server{
			Addr:         cfg.ServerAddr,
			Handler:      h2cHandler,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		serverErrors := make(chan error, 1)
		go func() {
			log.Printf("Starting server on %s", cfg.ServerAddr)
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			log.Printf("Received signal %v, shutting down gracefully", sig)

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				srv.Close()
				return fmt.Errorf("graceful shutdown failed: %w", err)
			}

			log.Printf("Server stopped")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
