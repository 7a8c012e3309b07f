// Package app provides the command-line surface of the broker binary.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jasonp/mcp-gateway/pkg/broker"
	"github.com/jasonp/mcp-gateway/pkg/broker/store"
	"github.com/jasonp/mcp-gateway/pkg/config"
	"github.com/jasonp/mcp-gateway/pkg/logger"
	"github.com/jasonp/mcp-gateway/pkg/networking"
)

const gracefulTimeout = 30 * time.Second

var rootCmd = &cobra.Command{
	Use:               "oauth-broker",
	DisableAutoGenTag: true,
	Short:             "oauth-broker is the token custodian for the MCP gateway",
	Long: `oauth-broker runs the OAuth authorization-code flows for GitHub and
Google, persists the resulting grants, and serves fresh access tokens to the
gateway over a loopback HTTP endpoint. Run it standalone when the gateway is
configured with OAUTH_BROKER_URL; otherwise the gateway hosts it in-process.`,
	RunE: runBroker,
}

var listenAddr string

// NewRootCmd creates the root command for the broker CLI.
func NewRootCmd() *cobra.Command {
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	if err := viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug")); err != nil {
		logger.Errorf("Failed to bind debug flag: %v", err)
	}
	rootCmd.PersistentPreRun = func(_ *cobra.Command, _ []string) {
		logger.Initialize()
	}
	rootCmd.Flags().StringVar(&listenAddr, "address", ":8587", "Broker listen address")

	return rootCmd
}

func runBroker(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	httpClient, err := networking.NewHttpClientBuilder().Build()
	if err != nil {
		return fmt.Errorf("failed to build HTTP client: %w", err)
	}

	var st store.Store
	if cfg.TokenDBPath == "" {
		logger.Warn("TOKEN_DB_PATH is unset; tokens are held in memory only")
		st = store.NewMemoryStore()
	} else {
		st, err = store.NewSQLiteStore(cfg.TokenDBPath)
		if err != nil {
			return fmt.Errorf("failed to open token store: %w", err)
		}
	}

	b := broker.New(st, cfg, httpClient)
	server := b.Server(listenAddr)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		logger.Info("Shutting down broker...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), gracefulTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Errorf("Broker forced to shut down: %v", err)
		}
	}()

	logger.Infof("Broker listening on %s (authorize at %s/auth/<provider>?user_id=%s)",
		listenAddr, cfg.BrokerBaseURL, cfg.UserID)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("broker server failed: %w", err)
	}
	logger.Info("Broker shutdown complete")
	return nil
}
