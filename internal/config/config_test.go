package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()
	assert.Equal(t, "localhost", c.Server.Name)
	assert.Equal(t, "6667", c.Server.Port)
	assert.Equal(t, 10, c.Limits.ChannelsPerClient)
	assert.Equal(t, 15, c.Limits.ClientTimeoutMinutes)
	assert.False(t, c.Redis.Enabled)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `server:
  name: irc.example.net
  port: "6697"
  password: hunter2
limits:
  channels_per_client: 3
redis:
  enabled: true
  url: redis://localhost:6379
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "irc.example.net", c.Server.Name)
	assert.Equal(t, "6697", c.Server.Port)
	assert.Equal(t, "hunter2", c.Server.Password)
	assert.Equal(t, 3, c.Limits.ChannelsPerClient)
	assert.Equal(t, 15, c.Limits.ClientTimeoutMinutes, "unset limit falls back to default")
	assert.True(t, c.Redis.Enabled)
	assert.Equal(t, "localhost", c.Server.Host, "unset host keeps default")
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a map"), 0o600))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadNormalizesNonPositiveLimits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `limits:
  channels_per_client: -1
  client_timeout_minutes: 0
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 10, c.Limits.ChannelsPerClient)
	assert.Equal(t, 15, c.Limits.ClientTimeoutMinutes)
}
