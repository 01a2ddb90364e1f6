package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumericString(t *testing.T) {
	assert.Equal(t, "001", RplWelcome.String())
	assert.Equal(t, "353", RplNamReply.String())
	assert.Equal(t, "482", ErrChanOPrivsNeeded.String())
}

func TestValidateCatalog(t *testing.T) {
	require.NoError(t, validateCatalog())
}

func TestFillPlaceholders(t *testing.T) {
	got := fillPlaceholders("<client> <channel> :No such channel", map[string]string{
		"client":  "alice",
		"channel": "#x",
	})
	assert.Equal(t, "alice #x :No such channel", got)
}

func TestFillPlaceholdersMissingKeyBlanks(t *testing.T) {
	got := fillPlaceholders("<client> <nick> :Nickname is already in use", map[string]string{
		"nick": "alice",
	})
	assert.Equal(t, " alice :Nickname is already in use", got)
}

func TestFillPlaceholdersNoTokens(t *testing.T) {
	assert.Equal(t, "plain text", fillPlaceholders("plain text", nil))
}

// Every catalog template must render against an empty info map without
// leaving literal angle bracket tokens behind.
func TestCatalogRendersWithEmptyInfo(t *testing.T) {
	for code, template := range replyText {
		got := fillPlaceholders(template, nil)
		assert.NotContains(t, got, "<", "reply %s", code)
		assert.NotContains(t, got, ">", "reply %s", code)
	}
}

func TestSendNumeric(t *testing.T) {
	s := newTestServer(t)
	c, buf := newTestClient(s)
	s.sendNumeric(c, ErrNoSuchChannel, map[string]string{"client": "alice", "channel": "#x"})
	assert.Equal(t, ":irc.test 403 alice #x :No such channel\r\n", buf.String())
}
