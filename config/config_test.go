package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inbound_config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
  "port": "9000",
  "timezone": "America/Chicago",
  "store": {"backend": "sqlite"},
  "reportFolders": {"verification/daily": "Reports/Daily"}
}`), 0644))
	t.Setenv("INBOUND_PORT", "9100")

	c, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "9100", c.Port, "env overrides file")
	assert.Equal(t, "sqlite", c.Store.Backend)
	assert.Equal(t, "Receiving", c.ReceivingFolder, "default applied")
	assert.Equal(t, "Reports/Daily", c.ReportFolders["verification/daily"])
	assert.Equal(t, "America/Chicago", c.Location().String())
	assert.Equal(t, c, GetConfig())
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	c, err := LoadConfig(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.Equal(t, "xlsx", c.Store.Backend)
	assert.Equal(t, "local", c.Storage.Provider)
	assert.Equal(t, "image", c.Barcode.Provider)
}

func TestLoadConfig_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"store": {"backend": "postgres"}}`), 0644))
	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.backend")
}

func TestSaveConfig_KeepsSecrets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inbound_config.json")
	t.Setenv("INBOUND_MINIO_SECRET_KEY", "s3cret")
	_, err := LoadConfig(path)
	require.NoError(t, err)

	next := GetConfig()
	next.Storage.MinIOSecretKey = ""
	next.ReportsFolder = "Archive"
	require.NoError(t, SaveConfig(next))

	assert.Equal(t, "s3cret", GetConfig().Storage.MinIOSecretKey)
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"reportsFolder": "Archive"`)
	assert.NotContains(t, string(raw), "s3cret")
}
