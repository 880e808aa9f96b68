package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/fredcamaral/patterndeck/internal/domain/entities"
	"github.com/fredcamaral/patterndeck/internal/domain/ports"
)

// localNames are tried in order when looking for a config next to the deck
var localNames = []string{"patterndeck.toml", "patterndeck.yaml", "patterndeck.yml"}

// FileLoader implements the ConfigLoader interface for TOML and YAML files
type FileLoader struct {
	globalPath string
	localNames []string
}

// NewFileLoader creates a new configuration loader
func NewFileLoader() *FileLoader {
	homeDir, _ := os.UserHomeDir()
	return &FileLoader{
		globalPath: filepath.Join(homeDir, ".config", "patterndeck", "config.toml"),
		localNames: localNames,
	}
}

// LoadGlobal loads the global configuration file. A missing file is not an error.
func (l *FileLoader) LoadGlobal(ctx context.Context) (*entities.Config, error) {
	if _, err := os.Stat(l.globalPath); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return l.loadConfig(l.globalPath)
}

// LoadLocal loads the first local configuration file found in dir
func (l *FileLoader) LoadLocal(ctx context.Context, dir string) (*entities.Config, error) {
	for _, name := range l.localNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return l.loadConfig(path)
		}
	}
	return nil, nil // Local config is optional
}

// LoadFile loads an explicit configuration file, which must exist
func (l *FileLoader) LoadFile(ctx context.Context, path string) (*entities.Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}
	return l.loadConfig(path)
}

// CreateDefaults creates a default TOML configuration file at the specified path
func (l *FileLoader) CreateDefaults(ctx context.Context, path string) error {
	if err := l.ensureConfigDir(path); err != nil {
		return err
	}

	var buf bytes.Buffer
	encoder := toml.NewEncoder(&buf)
	encoder.Indent = "  "
	if err := encoder.Encode(GetDefaultConfig()); err != nil {
		return fmt.Errorf("encoding config to %s: %w", path, err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("writing config file %s: %w", path, err)
	}

	return nil
}

// GetGlobalPath returns the path to the global configuration file
func (l *FileLoader) GetGlobalPath() string {
	return l.globalPath
}

// loadConfig loads and validates a configuration file, decoding by extension
func (l *FileLoader) loadConfig(path string) (*entities.Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 - path is from controlled sources (global/local/flag)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var config entities.Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("parsing YAML from %s: %w", path, err)
		}
	default:
		if err := toml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("parsing TOML from %s: %w", path, err)
		}
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config in %s: %w", path, err)
	}

	return &config, nil
}

// ensureConfigDir ensures the configuration directory exists
func (l *FileLoader) ensureConfigDir(path string) error {
	dir := filepath.Dir(path)

	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	return nil
}

// Ensure FileLoader implements ports.ConfigLoader
var _ ports.ConfigLoader = (*FileLoader)(nil)
