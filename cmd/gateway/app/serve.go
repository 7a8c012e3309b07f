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
	"golang.org/x/sync/errgroup"

	"github.com/jasonp/mcp-gateway/pkg/broker"
	"github.com/jasonp/mcp-gateway/pkg/broker/store"
	"github.com/jasonp/mcp-gateway/pkg/config"
	"github.com/jasonp/mcp-gateway/pkg/gateway"
	"github.com/jasonp/mcp-gateway/pkg/logger"
	"github.com/jasonp/mcp-gateway/pkg/networking"
	"github.com/jasonp/mcp-gateway/pkg/providers/calendar"
	"github.com/jasonp/mcp-gateway/pkg/providers/drive"
	"github.com/jasonp/mcp-gateway/pkg/providers/github"
	"github.com/jasonp/mcp-gateway/pkg/providers/gmail"
	"github.com/jasonp/mcp-gateway/pkg/providers/supabase"
	"github.com/jasonp/mcp-gateway/pkg/registry"
	"github.com/jasonp/mcp-gateway/pkg/resolver"
	"github.com/jasonp/mcp-gateway/pkg/telemetry"
)

const gracefulTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP gateway server",
	Long: `Start the MCP gateway server. Unless OAUTH_BROKER_URL points at a
remote broker, the OAuth broker is started in the same process and the
gateway resolves tokens by direct call.`,
	RunE: runServe,
}

var (
	gatewayAddr string
	brokerAddr  string
)

func init() {
	serveCmd.Flags().StringVar(&gatewayAddr, "address", ":8586", "Gateway listen address")
	serveCmd.Flags().StringVar(&brokerAddr, "broker-address", ":8587", "Broker listen address (when co-resident)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	cfg.GatewayAddr = gatewayAddr
	cfg.BrokerAddr = brokerAddr

	httpClient, err := networking.NewHttpClientBuilder().Build()
	if err != nil {
		return fmt.Errorf("failed to build HTTP client: %w", err)
	}

	// A remote broker URL disables the co-resident broker.
	var bound *broker.Broker
	if cfg.BrokerURL == "" {
		st, err := openStore(cfg.TokenDBPath)
		if err != nil {
			return err
		}
		bound = broker.New(st, cfg, httpClient)
	}

	keys := resolver.APIKeys{}
	if cfg.SupabaseKey != "" {
		keys["supabase"] = cfg.SupabaseKey
	}
	if cfg.AnthropicAPIKey != "" {
		keys["anthropic"] = cfg.AnthropicAPIKey
	}
	// The broker URL is typically loopback HTTP, so the resolver's client
	// must not insist on HTTPS the way the upstream client does.
	brokerClient, err := networking.NewHttpClientBuilder().WithPlainHTTP(true).Build()
	if err != nil {
		return fmt.Errorf("failed to build HTTP client: %w", err)
	}
	res, err := resolver.New(bound, cfg.BrokerURL, brokerClient, keys)
	if err != nil {
		return err
	}

	reg, err := registry.New(
		github.New(),
		gmail.New(cfg.AnthropicAPIKey),
		calendar.New(),
		drive.New(),
		supabase.New(cfg.SupabaseURL),
	)
	if err != nil {
		return fmt.Errorf("failed to build tool registry: %w", err)
	}

	gw := gateway.New(gateway.Config{
		UserID:     cfg.UserID,
		Resolver:   res,
		Registry:   reg,
		HTTPClient: httpClient,
		Metrics:    telemetry.New(),
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)

	gatewayServer := gw.Server(cfg.GatewayAddr)
	group.Go(func() error {
		logger.Infof("Gateway listening on %s", cfg.GatewayAddr)
		if err := gatewayServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("gateway server failed: %w", err)
		}
		return nil
	})

	var brokerServer *http.Server
	if bound != nil {
		brokerServer = bound.Server(cfg.BrokerAddr)
		group.Go(func() error {
			logger.Infof("Broker listening on %s (authorize at %s/auth/<provider>?user_id=%s)",
				cfg.BrokerAddr, cfg.BrokerBaseURL, cfg.UserID)
			if err := brokerServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("broker server failed: %w", err)
			}
			return nil
		})
	}

	group.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), gracefulTimeout)
		defer cancel()

		err := gatewayServer.Shutdown(shutdownCtx)
		if brokerServer != nil {
			if brokerErr := brokerServer.Shutdown(shutdownCtx); err == nil {
				err = brokerErr
			}
		}
		return err
	})

	if err := group.Wait(); err != nil {
		return err
	}
	logger.Info("Shutdown complete")
	return nil
}

// openStore picks the token store backend: sqlite when a path is configured,
// in-memory otherwise. In-memory tokens do not survive a restart.
func openStore(path string) (store.Store, error) {
	if path == "" {
		logger.Warn("TOKEN_DB_PATH is unset; tokens are held in memory only")
		return store.NewMemoryStore(), nil
	}
	st, err := store.NewSQLiteStore(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open token store: %w", err)
	}
	return st, nil
}
