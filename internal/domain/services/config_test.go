package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/vidwatch/internal/domain/entities"
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

func (m *MockConfigLoader) CreateDefaults(ctx context.Context, path string) error {
	args := m.Called(ctx, path)
	return args.Error(0)
}

func (m *MockConfigLoader) GetGlobalPath() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockConfigLoader) GetLocalPath(dir string) string {
	args := m.Called(dir)
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

func testConfig(port int, origin string) *entities.Config {
	return &entities.Config{
		Server:  entities.ServerConfig{Host: "127.0.0.1", Port: port},
		Player:  entities.PlayerConfig{EmbedOrigin: origin},
		YouTube: entities.YouTubeConfig{RegionCode: "US"},
		Logging: entities.LoggingConfig{Level: "info"},
	}
}

func TestConfigService_LoadConfig(t *testing.T) {
	t.Run("applies every layer in order", func(t *testing.T) {
		loader := &MockConfigLoader{}
		merger := &MockConfigMerger{}

		defaults := testConfig(8080, "https://www.youtube.com")
		global := testConfig(9000, "https://www.youtube.com")
		local := testConfig(9100, "https://www.youtube-nocookie.com")
		merged := testConfig(9100, "https://www.youtube-nocookie.com")
		fromEnv := testConfig(9200, "https://www.youtube-nocookie.com")
		final := testConfig(9300, "https://www.youtube-nocookie.com")
		flags := map[string]interface{}{"port": 9300}

		merger.On("Merge", mock.Anything).Return(defaults).Once()
		loader.On("LoadGlobal", mock.Anything).Return(global, nil)
		loader.On("LoadLocal", mock.Anything, "/srv/vidwatch").Return(local, nil)
		merger.On("Merge", mock.MatchedBy(func(configs []*entities.Config) bool {
			return len(configs) == 3
		})).Return(merged)
		merger.On("ApplyEnvVars", merged).Return(fromEnv)
		merger.On("ApplyFlags", fromEnv, flags).Return(final)

		service := NewConfigService(loader, merger)
		result, err := service.LoadConfig(context.Background(), "/srv/vidwatch", flags)

		require.NoError(t, err)
		assert.Equal(t, final, result)
		loader.AssertExpectations(t)
		merger.AssertExpectations(t)
	})

	t.Run("skips a missing local file", func(t *testing.T) {
		loader := &MockConfigLoader{}
		merger := &MockConfigMerger{}

		defaults := testConfig(8080, "")
		global := testConfig(9000, "")

		merger.On("Merge", mock.Anything).Return(defaults).Once()
		loader.On("LoadGlobal", mock.Anything).Return(global, nil)
		loader.On("LoadLocal", mock.Anything, "/srv").Return(nil, nil)
		merger.On("Merge", mock.MatchedBy(func(configs []*entities.Config) bool {
			return len(configs) == 2
		})).Return(global)
		merger.On("ApplyEnvVars", global).Return(global)
		merger.On("ApplyFlags", global, map[string]interface{}(nil)).Return(global)

		service := NewConfigService(loader, merger)
		result, err := service.LoadConfig(context.Background(), "/srv", nil)

		require.NoError(t, err)
		assert.Equal(t, 9000, result.Server.Port)
	})

	t.Run("global load error", func(t *testing.T) {
		loader := &MockConfigLoader{}
		merger := &MockConfigMerger{}

		merger.On("Merge", mock.Anything).Return(&entities.Config{})
		loader.On("LoadGlobal", mock.Anything).Return(nil, errors.New("disk on fire"))

		_, err := NewConfigService(loader, merger).LoadConfig(context.Background(), "/srv", nil)
		assert.ErrorContains(t, err, "loading global config")
	})

	t.Run("local load error", func(t *testing.T) {
		loader := &MockConfigLoader{}
		merger := &MockConfigMerger{}

		merger.On("Merge", mock.Anything).Return(&entities.Config{})
		loader.On("LoadGlobal", mock.Anything).Return(&entities.Config{}, nil)
		loader.On("LoadLocal", mock.Anything, "/srv").Return(nil, errors.New("bad toml"))

		_, err := NewConfigService(loader, merger).LoadConfig(context.Background(), "/srv", nil)
		assert.ErrorContains(t, err, "loading local config")
	})

	t.Run("rejects a wildcard embed origin", func(t *testing.T) {
		loader := &MockConfigLoader{}
		merger := &MockConfigMerger{}

		loader.On("LoadGlobal", mock.Anything).Return(nil, nil)
		loader.On("LoadLocal", mock.Anything, "/srv").Return(nil, nil)
		merger.On("Merge", mock.Anything).Return(&entities.Config{})
		merger.On("ApplyEnvVars", mock.Anything).Return(&entities.Config{})
		merger.On("ApplyFlags", mock.Anything, mock.Anything).Return(testConfig(8080, "*"))

		_, err := NewConfigService(loader, merger).LoadConfig(context.Background(), "/srv", nil)
		assert.ErrorContains(t, err, "final config validation")
	})
}

func TestConfigService_ValidateConfig(t *testing.T) {
	service := NewConfigService(&MockConfigLoader{}, &MockConfigMerger{})

	assert.NoError(t, service.ValidateConfig(testConfig(8080, "https://www.youtube.com")))
	assert.ErrorContains(t, service.ValidateConfig(nil), "config cannot be nil")
	assert.Error(t, service.ValidateConfig(testConfig(-1, "")))
	assert.Error(t, service.ValidateConfig(&entities.Config{Player: entities.PlayerConfig{DefaultVolume: 140}}))
	assert.Error(t, service.ValidateConfig(&entities.Config{YouTube: entities.YouTubeConfig{RegionCode: "USA"}}))
}

func TestConfigService_CreateGlobalConfig(t *testing.T) {
	t.Run("writes defaults to the global path", func(t *testing.T) {
		loader := &MockConfigLoader{}
		path := "/home/user/.config/vidwatch/config.toml"

		loader.On("GetGlobalPath").Return(path)
		loader.On("CreateDefaults", mock.Anything, path).Return(nil)

		err := NewConfigService(loader, &MockConfigMerger{}).CreateGlobalConfig(context.Background())
		assert.NoError(t, err)
		loader.AssertExpectations(t)
	})

	t.Run("passes creation errors through", func(t *testing.T) {
		loader := &MockConfigLoader{}
		failure := errors.New("permission denied")

		loader.On("GetGlobalPath").Return("/root/config.toml")
		loader.On("CreateDefaults", mock.Anything, "/root/config.toml").Return(failure)

		err := NewConfigService(loader, &MockConfigMerger{}).CreateGlobalConfig(context.Background())
		assert.Equal(t, failure, err)
	})
}
