package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/patterndeck/internal/domain/entities"
	"github.com/fredcamaral/patterndeck/internal/test/builders"
)

type MockConfigLoader struct {
	mock.Mock
}

func (m *MockConfigLoader) LoadGlobal(ctx context.Context) (*entities.Config, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Config), args.Error(1)
}

func (m *MockConfigLoader) LoadLocal(ctx context.Context, dir string) (*entities.Config, error) {
	args := m.Called(ctx, dir)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Config), args.Error(1)
}

func (m *MockConfigLoader) LoadFile(ctx context.Context, path string) (*entities.Config, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Config), args.Error(1)
}

func (m *MockConfigLoader) CreateDefaults(ctx context.Context, path string) error {
	args := m.Called(ctx, path)
	return args.Error(0)
}

func (m *MockConfigLoader) GetGlobalPath() string {
	args := m.Called()
	return args.String(0)
}

type MockConfigMerger struct {
	mock.Mock
}

func (m *MockConfigMerger) Merge(configs ...*entities.Config) *entities.Config {
	args := m.Called(configs)
	return args.Get(0).(*entities.Config)
}

func (m *MockConfigMerger) ApplyFlags(config *entities.Config, flags map[string]interface{}) *entities.Config {
	args := m.Called(config, flags)
	return args.Get(0).(*entities.Config)
}

func (m *MockConfigMerger) ApplyEnvVars(config *entities.Config) *entities.Config {
	args := m.Called(config)
	return args.Get(0).(*entities.Config)
}

func serverConfig(host string, port int) *entities.Config {
	return builders.NewConfigBuilder().WithHost(host).WithPort(port).Build()
}

func TestConfigService_LoadConfig(t *testing.T) {
	t.Run("loads and merges config hierarchy", func(t *testing.T) {
		loader := &MockConfigLoader{}
		merger := &MockConfigMerger{}

		defaultConfig := serverConfig("localhost", 8501)
		globalConfig := serverConfig("localhost", 4000)
		localConfig := serverConfig("", 5000)
		mergedConfig := serverConfig("localhost", 5000)
		envConfig := serverConfig("127.0.0.1", 5000)
		finalConfig := serverConfig("127.0.0.1", 6000)

		flags := map[string]interface{}{"port": 6000}

		merger.On("Merge", mock.MatchedBy(func(configs []*entities.Config) bool {
			return len(configs) == 0
		})).Return(defaultConfig).Once()
		loader.On("LoadGlobal", mock.Anything).Return(globalConfig, nil)
		loader.On("LoadLocal", mock.Anything, "/deck").Return(localConfig, nil)
		merger.On("Merge", mock.MatchedBy(func(configs []*entities.Config) bool {
			return len(configs) == 3
		})).Return(mergedConfig)
		merger.On("ApplyEnvVars", mergedConfig).Return(envConfig)
		merger.On("ApplyFlags", envConfig, flags).Return(finalConfig)

		service := NewConfigService(loader, merger)
		result, err := service.LoadConfig(context.Background(), "/deck", "", flags)

		require.NoError(t, err)
		assert.Equal(t, finalConfig, result)
		loader.AssertExpectations(t)
		merger.AssertExpectations(t)
	})

	t.Run("explicit path replaces local lookup", func(t *testing.T) {
		loader := &MockConfigLoader{}
		merger := &MockConfigMerger{}
		cfg := serverConfig("localhost", 8501)

		loader.On("LoadGlobal", mock.Anything).Return(nil, nil)
		loader.On("LoadFile", mock.Anything, "/etc/deck.yaml").Return(cfg, nil)
		merger.On("Merge", mock.Anything).Return(cfg)
		merger.On("ApplyEnvVars", cfg).Return(cfg)
		merger.On("ApplyFlags", cfg, map[string]interface{}(nil)).Return(cfg)

		service := NewConfigService(loader, merger)
		_, err := service.LoadConfig(context.Background(), "/deck", "/etc/deck.yaml", nil)

		require.NoError(t, err)
		loader.AssertNotCalled(t, "LoadLocal", mock.Anything, mock.Anything)
		loader.AssertCalled(t, "LoadFile", mock.Anything, "/etc/deck.yaml")
	})

	t.Run("handles global config load error", func(t *testing.T) {
		loader := &MockConfigLoader{}
		merger := &MockConfigMerger{}

		loader.On("LoadGlobal", mock.Anything).Return(nil, errors.New("global config error"))
		merger.On("Merge", mock.Anything).Return(&entities.Config{})

		_, err := NewConfigService(loader, merger).LoadConfig(context.Background(), "/deck", "", nil)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "loading global config")
	})

	t.Run("handles local config load error", func(t *testing.T) {
		loader := &MockConfigLoader{}
		merger := &MockConfigMerger{}

		loader.On("LoadGlobal", mock.Anything).Return(&entities.Config{}, nil)
		loader.On("LoadLocal", mock.Anything, "/deck").Return(nil, errors.New("local config error"))
		merger.On("Merge", mock.Anything).Return(&entities.Config{})

		_, err := NewConfigService(loader, merger).LoadConfig(context.Background(), "/deck", "", nil)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "loading local config")
	})

	t.Run("handles explicit file error", func(t *testing.T) {
		loader := &MockConfigLoader{}
		merger := &MockConfigMerger{}

		loader.On("LoadGlobal", mock.Anything).Return(nil, nil)
		loader.On("LoadFile", mock.Anything, "missing.toml").Return(nil, errors.New("no such file"))
		merger.On("Merge", mock.Anything).Return(&entities.Config{})

		_, err := NewConfigService(loader, merger).LoadConfig(context.Background(), "/deck", "missing.toml", nil)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "loading config file")
	})

	t.Run("names the explicit file in errors", func(t *testing.T) {
		loader := &MockConfigLoader{}
		merger := &MockConfigMerger{}

		loader.On("LoadGlobal", mock.Anything).Return(nil, nil)
		loader.On("LoadFile", mock.Anything, "/etc/deck.toml").Return(nil, errors.New("permission denied"))
		merger.On("Merge", mock.Anything).Return(&entities.Config{})

		_, err := NewConfigService(loader, merger).LoadConfig(context.Background(), "/deck", "/etc/deck.toml", nil)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "loading config file /etc/deck.toml: permission denied")
	})

	t.Run("stops on cancelled context", func(t *testing.T) {
		loader := &MockConfigLoader{}
		merger := &MockConfigMerger{}
		merger.On("Merge", mock.Anything).Return(&entities.Config{})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := NewConfigService(loader, merger).LoadConfig(ctx, "/deck", "", nil)

		assert.ErrorIs(t, err, context.Canceled)
		loader.AssertNotCalled(t, "LoadGlobal", mock.Anything)
	})

	t.Run("handles validation error", func(t *testing.T) {
		loader := &MockConfigLoader{}
		merger := &MockConfigMerger{}

		invalidConfig := &entities.Config{
			Server: entities.ServerConfig{Port: -1},
		}

		loader.On("LoadGlobal", mock.Anything).Return(nil, nil)
		loader.On("LoadLocal", mock.Anything, "/deck").Return(nil, nil)
		merger.On("Merge", mock.Anything).Return(&entities.Config{})
		merger.On("ApplyEnvVars", mock.Anything).Return(&entities.Config{})
		merger.On("ApplyFlags", mock.Anything, mock.Anything).Return(invalidConfig)

		_, err := NewConfigService(loader, merger).LoadConfig(context.Background(), "/deck", "", nil)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "final config validation")
	})
}

func TestConfigService_ValidateConfig(t *testing.T) {
	service := NewConfigService(&MockConfigLoader{}, &MockConfigMerger{})

	t.Run("validates valid config", func(t *testing.T) {
		assert.NoError(t, service.ValidateConfig(serverConfig("localhost", 8501)))
	})

	t.Run("rejects nil config", func(t *testing.T) {
		assert.ErrorIs(t, service.ValidateConfig(nil), ErrNilConfig)
	})

	t.Run("rejects invalid config", func(t *testing.T) {
		assert.Error(t, service.ValidateConfig(&entities.Config{Server: entities.ServerConfig{Port: 70000}}))
	})
}

func TestConfigService_CreateGlobalConfig(t *testing.T) {
	t.Run("creates global config", func(t *testing.T) {
		loader := &MockConfigLoader{}
		globalPath := "/home/user/.config/patterndeck/config.toml"

		loader.On("GetGlobalPath").Return(globalPath)
		loader.On("CreateDefaults", mock.Anything, globalPath).Return(nil)

		err := NewConfigService(loader, &MockConfigMerger{}).CreateGlobalConfig(context.Background())

		assert.NoError(t, err)
		loader.AssertExpectations(t)
	})

	t.Run("handles creation error", func(t *testing.T) {
		loader := &MockConfigLoader{}
		creationError := errors.New("permission denied")

		loader.On("GetGlobalPath").Return("/invalid/config.toml")
		loader.On("CreateDefaults", mock.Anything, "/invalid/config.toml").Return(creationError)

		err := NewConfigService(loader, &MockConfigMerger{}).CreateGlobalConfig(context.Background())

		assert.Equal(t, creationError, err)
	})
}
