package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	httpadapter "github.com/fredcamaral/patterndeck/internal/adapters/primary/http"
	"github.com/fredcamaral/patterndeck/internal/adapters/secondary/config"
	"github.com/fredcamaral/patterndeck/internal/adapters/secondary/renderer"
	"github.com/fredcamaral/patterndeck/internal/domain/entities"
	"github.com/fredcamaral/patterndeck/internal/domain/services"
	"github.com/fredcamaral/patterndeck/internal/logging"
	"github.com/fredcamaral/patterndeck/internal/metrics"
)

const syncPath = "/ws"

func newConfigService() *services.ConfigService {
	return services.NewConfigService(config.NewFileLoader(), config.NewConfigMerger())
}

// loadConfig resolves the effective configuration for a command:
// defaults, global file, local or --config file, environment, then flags
func loadConfig(cmd *cobra.Command) (*entities.Config, error) {
	explicitPath, _ := cmd.Flags().GetString("config")

	workingDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("resolving working directory: %w", err)
	}

	cfg, err := newConfigService().LoadConfig(cmd.Context(), workingDir, explicitPath, collectFlags(cmd))
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	return cfg, nil
}

// collectFlags returns only the flags the user actually set, so unset flags never mask config values
func collectFlags(cmd *cobra.Command) map[string]interface{} {
	flags := make(map[string]interface{})
	set := cmd.Flags()

	if set.Changed("port") {
		if v, err := set.GetInt("port"); err == nil {
			flags["port"] = v
		}
	}
	if set.Changed("host") {
		if v, err := set.GetString("host"); err == nil {
			flags["host"] = v
		}
	}
	if set.Changed("no-browser") {
		if v, err := set.GetBool("no-browser"); err == nil {
			flags["no-browser"] = v
		}
	}
	if set.Changed("verbose") {
		if v, err := set.GetBool("verbose"); err == nil {
			flags["verbose"] = v
		}
	}
	if set.Changed("log-level") {
		if v, err := set.GetString("log-level"); err == nil {
			flags["log-level"] = v
		}
	}

	return flags
}

// newPageRenderer builds the page renderer; an empty syncURL leaves out the navigation script
func newPageRenderer(cfg *entities.Config, syncURL string) (*renderer.Renderer, error) {
	r, err := renderer.NewRenderer(renderer.PageOptions{
		RevealURL:       cfg.Presentation.GetRevealURL(),
		Theme:           cfg.Presentation.GetTheme(),
		AllowUnsafeHTML: cfg.Presentation.UnsafeHTMLAllowed(),
		SyncURL:         syncURL,
	})
	if err != nil {
		return nil, fmt.Errorf("creating renderer: %w", err)
	}
	return r, nil
}

// newDeckServer wires the entrypoint, renderer, metrics and logger into the HTTP host
func newDeckServer(cfg *entities.Config, logger *logging.Logger) (*httpadapter.Server, error) {
	pages, err := newPageRenderer(cfg, syncPath)
	if err != nil {
		return nil, err
	}

	m := metrics.New()
	m.SetBuildInfo("patterndeck", Version)

	entrypoint := services.NewEntrypoint(logger.With("entrypoint"))

	return httpadapter.NewServer(entrypoint, pages, cfg,
		httpadapter.WithLogger(logger.With("server")),
		httpadapter.WithMetrics(m),
		httpadapter.WithVersion(Version),
	), nil
}
