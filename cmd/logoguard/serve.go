package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matiasleandrokruk/logoguard/internal/infra/config"
	"github.com/matiasleandrokruk/logoguard/internal/server"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var (
		transport string
		addr      string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve validate_logo_url over MCP (stdio by default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := opts.cfg
			if cmd.Flags().Changed("transport") {
				cfg.Transport = transport
			}
			if cmd.Flags().Changed("addr") {
				cfg.HTTPAddr = addr
			}
			if err := cfg.Validate(); err != nil {
				return exitError(exitUsage, "%v", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg)
		},
	}

	cmd.Flags().StringVar(&transport, "transport", config.TransportStdio, "Transport: stdio or http")
	cmd.Flags().StringVar(&addr, "addr", config.DefaultHTTPAddr, "Listen address for the http transport")
	return cmd
}

func runServe(ctx context.Context, cfg config.Config) error {
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close(ctx)

	mcpServer := server.NewMCPServer(a.registry)

	if cfg.Transport == config.TransportStdio {
		return server.Serve(ctx, mcpServer, &mcp.StdioTransport{})
	}

	deps := server.RouterDeps{
		Registry: a.registry,
		MCP:      mcpServer,
		Auth:     server.AuthConfig{JWTSecret: cfg.JWTSecret, APIKeyHash: cfg.APIKeyHash},
	}
	if a.audit != nil {
		deps.History = a.audit
	}
	if !deps.Auth.Enabled() {
		log.Warn().Str("addr", cfg.HTTPAddr).Msg("http transport running without authentication")
	}
	httpServer := server.NewHTTPServer(server.DefaultHTTPConfig(cfg.HTTPAddr), server.NewRouter(deps))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(httpServer.Start)
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
