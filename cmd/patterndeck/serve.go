package main

import (
	"context"
	"fmt"
	"net"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/fredcamaral/patterndeck/internal/adapters/secondary/browser"
	"github.com/fredcamaral/patterndeck/internal/content"
	"github.com/fredcamaral/patterndeck/internal/domain/entities"
	"github.com/fredcamaral/patterndeck/internal/logging"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the deck over HTTP",
		Long: `Start a local HTTP server that renders the deck on every page load.

Example:
  patterndeck serve
  patterndeck serve --port 8080 --no-browser`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	// defaults here are placeholders, config loading decides the real values
	cmd.Flags().IntP("port", "p", 0, "Port to serve on (overrides config)")
	cmd.Flags().String("host", "", "Host to bind to (overrides config)")
	cmd.Flags().Bool("no-browser", false, "Don't open browser automatically (overrides config)")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := logging.New("serve", cfg.Logging)

	server, err := newDeckServer(cfg, logger)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}

	deckURL := browsableURL(server.URL())
	logger.Info("Serving %q at %s", content.PageTitle, deckURL)

	openBrowser(cfg, deckURL, logger)

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GetShutdownTimeout())
	defer cancel()

	if err := server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("stopping server: %w", err)
	}

	logger.Success("Server stopped")
	return nil
}

// openBrowser opens the deck if auto-open is enabled; failures are only logged
func openBrowser(cfg *entities.Config, deckURL string, logger *logging.Logger) {
	if !cfg.Browser.ShouldAutoOpen() {
		return
	}

	launcher := browser.NewLauncher(cfg.Browser.Browser)
	if err := launcher.Launch(deckURL, false); err != nil {
		logger.Warn("Failed to open browser: %v", err)
	}
}

// browsableURL rewrites wildcard bind addresses to localhost so the URL can be opened
func browsableURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	host, port, err := net.SplitHostPort(u.Host)
	if err != nil {
		return raw
	}

	if ip := net.ParseIP(host); host == "" || (ip != nil && ip.IsUnspecified()) {
		u.Host = net.JoinHostPort("localhost", port)
	}
	return u.String()
}
