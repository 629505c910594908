package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
app:
  name: "glowup"
store:
  backend: "local"
local:
  path: "data/test"
admin:
  token: "secret"
`
	require.NoError(t, os.WriteFile(configPath, []byte(yamlContent), 0o644))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "glowup", cfg.App.Name)
	assert.Equal(t, BackendLocal, cfg.Store.Backend)
	assert.Equal(t, "data/test", cfg.Local.Path)
	assert.Equal(t, "secret", cfg.Admin.Token)

	// defaults
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 2000, cfg.Local.PollIntervalMS)
	assert.Equal(t, 10, cfg.Admin.UpdateTimeoutSec)
	assert.Equal(t, "gemini-2.5-flash", cfg.Advice.Model)
	assert.NotEmpty(t, cfg.Advice.ApologyText)
}

func TestLoadConfigExpandsEnv(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	t.Setenv("TEST_ADMIN_TOKEN", "from-env")

	yamlContent := `
store:
  backend: "local"
local:
  path: "data/test"
admin:
  token: "${TEST_ADMIN_TOKEN}"
`
	require.NoError(t, os.WriteFile(configPath, []byte(yamlContent), 0o644))

	cfg, err := Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Admin.Token)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "valid local config",
			cfg: Config{
				Store: StoreConfig{Backend: BackendLocal},
				Local: LocalConfig{Path: "data"},
				Admin: AdminConfig{Token: "secret"},
			},
			wantErr: false,
		},
		{
			name: "redis backend without address",
			cfg: Config{
				Store: StoreConfig{Backend: BackendRedis},
				Local: LocalConfig{Path: "data"},
				Admin: AdminConfig{Token: "secret"},
			},
			wantErr: true,
		},
		{
			name: "unknown backend",
			cfg: Config{
				Store: StoreConfig{Backend: "cloud"},
				Local: LocalConfig{Path: "data"},
				Admin: AdminConfig{Token: "secret"},
			},
			wantErr: true,
		},
		{
			name: "missing admin token",
			cfg: Config{
				Store: StoreConfig{Backend: BackendLocal},
				Local: LocalConfig{Path: "data"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
