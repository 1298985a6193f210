package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWritesDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, resolved, err := Load(nil, path)
	require.NoError(t, err)
	assert.Equal(t, path, resolved)
	assert.FileExists(t, path)

	def := Default()
	assert.Equal(t, def.Addr, cfg.Addr)
	assert.Equal(t, def.ServerName, cfg.ServerName)
	assert.Equal(t, def.WriteTimeout, cfg.WriteTimeout)
	require.Len(t, cfg.Channels, 2)
	assert.Equal(t, "#rust", cfg.Channels[0].Name)
	assert.Equal(t, "A place to talk about Java", cfg.Channels[1].Description)
}

func TestLoadReadsFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `addr: ":7000"
server_name: irc.example.org
write_timeout: 3s
channels:
  - name: "#go"
    description: Gophers
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("WIRECHAT_LOG_LEVEL", "debug")

	cfg, _, err := Load(nil, path)
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Addr)
	assert.Equal(t, "irc.example.org", cfg.ServerName)
	assert.Equal(t, 3*time.Second, cfg.WriteTimeout)
	assert.Equal(t, "debug", cfg.LogLevel)
	require.Len(t, cfg.Channels, 1)
	assert.Equal(t, ChannelConfig{Name: "#go", Description: "Gophers"}, cfg.Channels[0])
	assert.Equal(t, Default().MaxLineLength, cfg.MaxLineLength)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("channels:\n  - name: rust\n"), 0o600))

	_, _, err := Load(nil, path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must start with #")
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	dup := Default()
	dup.Channels = append(dup.Channels, ChannelConfig{Name: "#RUST"})
	assert.ErrorContains(t, dup.Validate(), "duplicate channel")

	short := Default()
	short.MaxLineLength = 100
	assert.ErrorContains(t, short.Validate(), "max_line_length")

	noName := Default()
	noName.ServerName = "bad name"
	assert.ErrorContains(t, noName.Validate(), "server_name")
}

func TestUpdateFrom(t *testing.T) {
	cfg := Default()
	cfg.UpdateFrom(Config{Addr: ":1", LogLevel: "error"})
	assert.Equal(t, ":1", cfg.Addr)
	assert.Equal(t, "error", cfg.LogLevel)
	assert.Equal(t, Default().HTTPAddr, cfg.HTTPAddr)
}
