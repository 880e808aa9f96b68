package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/fredcamaral/patterndeck/internal/domain/entities"
	"github.com/fredcamaral/patterndeck/internal/domain/ports"
)

// ErrNilConfig is returned when validating a missing configuration
var ErrNilConfig = errors.New("config cannot be nil")

// ConfigService resolves the effective deck host configuration
type ConfigService struct {
	loader ports.ConfigLoader
	merger ports.ConfigMerger
}

// fileLayer is one optional configuration file in precedence order
type fileLayer struct {
	what string
	load func(ctx context.Context) (*entities.Config, error)
}

// NewConfigService creates a config service over a file loader and merger
func NewConfigService(loader ports.ConfigLoader, merger ports.ConfigMerger) *ConfigService {
	return &ConfigService{loader: loader, merger: merger}
}

// LoadConfig resolves defaults, the global file, then either the local file
// found in workingDir or explicitPath, then environment and flag overrides.
func (s *ConfigService) LoadConfig(ctx context.Context, workingDir, explicitPath string, flags map[string]interface{}) (*entities.Config, error) {
	stack := []*entities.Config{s.GetDefaultConfig()}

	for _, layer := range s.fileLayers(workingDir, explicitPath) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		cfg, err := layer.load(ctx)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", layer.what, err)
		}
		if cfg != nil {
			stack = append(stack, cfg)
		}
	}

	resolved := s.merger.ApplyFlags(s.merger.ApplyEnvVars(s.merger.Merge(stack...)), flags)
	if err := s.ValidateConfig(resolved); err != nil {
		return nil, fmt.Errorf("final config validation: %w", err)
	}

	return resolved, nil
}

func (s *ConfigService) fileLayers(workingDir, explicitPath string) []fileLayer {
	layers := []fileLayer{{what: "global config", load: s.loader.LoadGlobal}}

	if explicitPath != "" {
		return append(layers, fileLayer{
			what: "config file " + explicitPath,
			load: func(ctx context.Context) (*entities.Config, error) {
				return s.loader.LoadFile(ctx, explicitPath)
			},
		})
	}

	return append(layers, fileLayer{
		what: "local config",
		load: func(ctx context.Context) (*entities.Config, error) {
			return s.loader.LoadLocal(ctx, workingDir)
		},
	})
}

// GetDefaultConfig returns the built-in defaults, which the merger owns
func (s *ConfigService) GetDefaultConfig() *entities.Config {
	return s.merger.Merge()
}

// ValidateConfig validates a configuration
func (s *ConfigService) ValidateConfig(config *entities.Config) error {
	if config == nil {
		return ErrNilConfig
	}
	return config.Validate()
}

// CreateGlobalConfig writes the defaults to the global config path
func (s *ConfigService) CreateGlobalConfig(ctx context.Context) error {
	return s.loader.CreateDefaults(ctx, s.loader.GetGlobalPath())
}

var _ ports.ConfigService = (*ConfigService)(nil)
