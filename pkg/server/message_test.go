package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Message
	}{
		{
			name: "command only",
			line: "QUIT",
			want: Message{Command: "QUIT"},
		},
		{
			name: "command with params",
			line: "KICK #chan bob",
			want: Message{Command: "KICK", Params: []string{"#chan", "bob"}},
		},
		{
			name: "trailing swallows rest",
			line: "PRIVMSG #chan :hello there world",
			want: Message{Command: "PRIVMSG", Params: []string{"#chan", "hello there world"}},
		},
		{
			name: "trailing keeps colons",
			line: "TOPIC #chan :a:b:c",
			want: Message{Command: "TOPIC", Params: []string{"#chan", "a:b:c"}},
		},
		{
			name: "empty trailing preserved",
			line: "PRIVMSG #chan :",
			want: Message{Command: "PRIVMSG", Params: []string{"#chan", ""}},
		},
		{
			name: "prefix extracted",
			line: ":alice JOIN #chan",
			want: Message{Prefix: "alice", Command: "JOIN", Params: []string{"#chan"}},
		},
		{
			name: "prefix only",
			line: ":alice",
			want: Message{Prefix: "alice"},
		},
		{
			name: "space runs tolerated",
			line: "MODE   #chan   +i",
			want: Message{Command: "MODE", Params: []string{"#chan", "+i"}},
		},
		{
			name: "prefix with space runs",
			line: ":alice   PRIVMSG  bob :hi",
			want: Message{Prefix: "alice", Command: "PRIVMSG", Params: []string{"bob", "hi"}},
		},
		{
			name: "empty line",
			line: "",
			want: Message{},
		},
		{
			name: "trailing with leading spaces inside",
			line: "PRIVMSG bob :  indented",
			want: Message{Command: "PRIVMSG", Params: []string{"bob", "  indented"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseLine(tt.line)
			assert.Equal(t, tt.want.Prefix, got.Prefix)
			assert.Equal(t, tt.want.Command, got.Command)
			assert.Equal(t, tt.want.Params, got.Params)
		})
	}
}

func TestParseLineEmptyPrefixIsMalformed(t *testing.T) {
	assert.Nil(t, parseLine(": JOIN #x"))
	assert.Nil(t, parseLine(":"))
}

func TestCreateMessage(t *testing.T) {
	assert.Equal(t, ":irc.test PONG irc.test :abc", createMessage("irc.test", "PONG", "irc.test :abc"))
	assert.Equal(t, ":alice!alice@irc.test JOIN #x", createMessage("alice!alice@irc.test", "JOIN", "#x"))
	assert.Equal(t, ":irc.test QUIT", createMessage("irc.test", "QUIT", ""))
}
