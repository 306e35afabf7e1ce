package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitConfig(t *testing.T) {
	home := isolate(t)

	path, err := InitConfig(false)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config", "tulip", "config.yaml"), path)
	assert.True(t, ConfigExists())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	for _, section := range []string{"# tulip configuration file", "logging:", "content:", "metadata:", "sidecar:", "metrics:"} {
		assert.Contains(t, string(data), section)
	}

	cfg, err := Load(path)
	require.NoError(t, err)
	want := GetDefaultConfig()
	assert.Equal(t, want.Logging, cfg.Logging)
	assert.Equal(t, want.Sidecar, cfg.Sidecar)
	assert.Equal(t, want.Content.Filesystem["path"], cfg.Content.Filesystem["path"])
	assert.Equal(t, want.Metadata.Filesystem["path"], cfg.Metadata.Filesystem["path"])
}

func TestInitConfig_AlreadyExists(t *testing.T) {
	isolate(t)

	_, err := InitConfig(false)
	require.NoError(t, err)

	_, err = InitConfig(false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = InitConfig(true)
	assert.NoError(t, err)
}

func TestInitConfigToPath(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "nested", "dir", "tulip.yaml")

	require.NoError(t, InitConfigToPath(path, false))
	_, err := os.Stat(path)
	require.NoError(t, err)
}

func TestGenerateSchema(t *testing.T) {
	out, err := GenerateSchema()
	require.NoError(t, err)

	var schema map[string]any
	require.NoError(t, json.Unmarshal(out, &schema))
	assert.Equal(t, "tulip configuration", schema["title"])

	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	for _, key := range []string{"logging", "content", "metadata", "sidecar", "metrics"} {
		assert.Contains(t, props, key)
	}
}
