package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/velora-app/flowengine"
	"github.com/velora-app/flowengine/internal/adapters/expreval"
	"github.com/velora-app/flowengine/internal/adapters/httpapi"
	"github.com/velora-app/flowengine/internal/adapters/httphost"
	"github.com/velora-app/flowengine/internal/adapters/memory"
	redisstore "github.com/velora-app/flowengine/internal/adapters/redis"
	"github.com/velora-app/flowengine/internal/logging"
	"github.com/velora-app/flowengine/pkg/observability"
	"github.com/velora-app/flowengine/pkg/persistence/middleware"
	"github.com/velora-app/flowengine/pkg/ports"
	"github.com/velora-app/flowengine/pkg/registry"
)

var serveCmd = &cobra.Command{
	Use:   "serve [flow file]",
	Short: "Serve the flow over HTTP",
	Long:  `Starts an HTTP server hosting conversation sessions over the flow, with JSON endpoints for starting sessions and delivering user input.`,
	Run: func(cmd *cobra.Command, args []string) {
		path, _ := cmd.Flags().GetString("flow")
		if len(args) > 0 {
			path = args[0]
		}
		port, _ := cmd.Flags().GetString("port")
		redisAddr, _ := cmd.Flags().GetString("redis")
		sessionTTL, _ := cmd.Flags().GetDuration("session-ttl")
		encKey, _ := cmd.Flags().GetString("encryption-key")
		redact, _ := cmd.Flags().GetStringSlice("redact")
		backendURL, _ := cmd.Flags().GetString("actions-backend")
		backendKey, _ := cmd.Flags().GetString("actions-api-key")
		actionNames, _ := cmd.Flags().GetStringSlice("action")

		logger := logging.New(slog.LevelInfo)

		eng, err := flowengine.NewFromFile(path, flowengine.WithLogger(logger))
		if err != nil {
			fmt.Printf("Error loading flow: %v\n", err)
			os.Exit(1)
		}

		var store ports.StateStore
		if redisAddr != "" {
			rs := redisstore.New(redisAddr, "", 0, redisstore.WithTTL(sessionTTL))
			defer rs.Close()
			store = rs
		} else {
			store = memory.NewStore()
		}

		if encKey != "" {
			key, err := hex.DecodeString(encKey)
			if err != nil {
				fmt.Printf("Error: --encryption-key must be hex-encoded: %v\n", err)
				os.Exit(1)
			}
			store = middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
				ActiveKey: key,
			})(store)
		}
		if len(redact) > 0 {
			store = middleware.NewPIIMiddleware(redact)(store)
		}

		metrics := observability.NewMetrics()
		hostOpts := []httphost.Option{
			httphost.WithLogger(logger),
			httphost.WithSessionOptions(
				flowengine.WithConditionEvaluator(expreval.New().Evaluate),
				flowengine.WithLifecycleHooks(metrics.Hooks()),
			),
		}
		if backendURL != "" && len(actionNames) > 0 {
			reg := registry.NewRegistry()
			for _, name := range actionNames {
				reg.Register(name, httpapi.NewBusinessAction(backendURL, backendKey, name))
			}
			hostOpts = append(hostOpts,
				httphost.WithSessionOptions(flowengine.WithBusinessActions(reg)))
		}

		host := httphost.NewServer(eng.Graph(), store, hostOpts...)

		srv := &http.Server{
			Addr:    ":" + port,
			Handler: host.Handler(),
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			fmt.Printf("Serving flow %q on %s\n", eng.Name, srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)

		case sig := <-shutdown:
			fmt.Printf("\nShutting down... Signal: %v\n", sig)

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				fmt.Printf("Graceful shutdown did not complete in %v: %v\n", 5*time.Second, err)
				if err := srv.Close(); err != nil {
					fmt.Printf("Error killing server: %v\n", err)
				}
			}
			fmt.Println("Server stopped gracefully")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().String("redis", "", "Redis address for session persistence (default: in-memory)")
	serveCmd.Flags().Duration("session-ttl", 24*time.Hour, "Session expiry when using Redis")
	serveCmd.Flags().String("encryption-key", "", "Hex-encoded 32-byte key for snapshot encryption at rest")
	serveCmd.Flags().StringSlice("redact", nil, "Variable name patterns to mask before persisting")
	serveCmd.Flags().String("actions-backend", "", "Base URL of the business action backend")
	serveCmd.Flags().String("actions-api-key", "", "API key for the business action backend")
	serveCmd.Flags().StringSlice("action", nil, "Business action names to expose to flows")
}
