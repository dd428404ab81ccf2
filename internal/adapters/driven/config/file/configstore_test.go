package file

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())

	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_ReadsValues(t *testing.T) {
	dir := t.TempDir()
	content := `server_url = "http://backend:9000"
poll_interval_seconds = 5
liveness_timeout_seconds = 30
drop_dir = "/srv/inbox"
preview_rows = 8
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "http://backend:9000", cfg.ServerURL)
	assert.Equal(t, 5*time.Second, cfg.PollInterval())
	assert.Equal(t, 30*time.Second, cfg.LivenessTimeout())
	assert.Equal(t, "/srv/inbox", cfg.DropDir)
	assert.Equal(t, 8, cfg.PreviewRows)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"),
		[]byte(`server_url = "http://backend:9000"`), 0600))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "http://backend:9000", cfg.ServerURL)
	assert.Equal(t, DefaultConfig().PollIntervalSeconds, cfg.PollIntervalSeconds)
	assert.Equal(t, DefaultConfig().LivenessTimeoutSeconds, cfg.LivenessTimeoutSeconds)
}

func TestLoad_GuardsZeroedValues(t *testing.T) {
	dir := t.TempDir()
	content := `poll_interval_seconds = 0
liveness_timeout_seconds = -5
preview_rows = 0
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, DefaultConfig().PollIntervalSeconds, cfg.PollIntervalSeconds)
	assert.Equal(t, DefaultConfig().LivenessTimeoutSeconds, cfg.LivenessTimeoutSeconds)
	assert.Equal(t, DefaultConfig().PreviewRows, cfg.PreviewRows)
}

func TestLoad_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"),
		[]byte("not = [valid"), 0600))

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	cfg := Config{
		ServerURL:              "http://backend:9000",
		PollIntervalSeconds:    3,
		LivenessTimeoutSeconds: 45,
		DropDir:                "/srv/inbox",
		PreviewRows:            4,
	}

	require.NoError(t, Save(dir, cfg))

	info, err := os.Stat(filepath.Join(dir, "config.toml"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
