package server

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkdd/ircd/internal/config"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("secret")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$2a$"))

	_, err = HashPassword(strings.Repeat("x", 73))
	assert.Error(t, err)
}

func TestCheckServerPasswordHashPrecedence(t *testing.T) {
	hash, err := HashPassword("hashed")
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Server.Name = "irc.test"
	cfg.Server.Password = "plain"
	cfg.Server.PasswordHash = hash
	s, err := New(cfg)
	require.NoError(t, err)

	assert.True(t, s.checkServerPassword("hashed"))
	assert.False(t, s.checkServerPassword("plain"), "plaintext setting is ignored when a hash is configured")
}

func TestCheckServerPasswordPlaintext(t *testing.T) {
	s := newTestServer(t)
	assert.True(t, s.checkServerPassword("secret"))
	assert.False(t, s.checkServerPassword("wrong"))
}
