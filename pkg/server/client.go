package server

import (
	"io"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	nickMaxLen = 9
	userMaxLen = 12
)

// Client represents one connected, not yet closed connection. The connection
// layer owns the transport; everything else refers to the client by id.
// Field access is serialized by the server mutex.
type Client struct {
	identifier uuid.UUID
	conn       io.Writer

	hasValidPass bool
	username     string
	nickname     string
	registered   bool

	// nickname!username@servername, computed once at registration and used
	// as the prefix on every message this client originates.
	fullID string

	// Names of channels the client currently belongs to.
	channels map[string]bool

	// Set by QUIT; tells the read loop to close the transport.
	quitting bool
}

func newClient(conn io.Writer) *Client {
	return &Client{
		identifier: uuid.Must(uuid.NewRandom()),
		conn:       conn,
		channels:   make(map[string]bool),
	}
}

// displayName is the token used for the <client> placeholder: the full
// identity once registered, the bare nickname (possibly empty) before.
func (c *Client) displayName() string {
	if c.registered {
		return c.fullID
	}
	return c.nickname
}

// sendLine delivers one wire line to the client's transport, appending the
// CRLF terminator. Sending is fire and forget; a dead transport is noticed
// by the read loop, not here.
func (c *Client) sendLine(line string) {
	if c.conn == nil {
		return
	}
	if _, err := c.conn.Write([]byte(line + "\r\n")); err != nil {
		log.Debugf("send to %s failed: %v", c.identifier, err)
	}
}

// isValidNick reports whether nickname satisfies the grammar:
//
//	<nick>    ::= <letter> { <letter> | <number> | <special> }
//	<special> ::= '-' | '[' | ']' | '\' | '`' | '^' | '{' | '}'
//
// with a maximum length of nine characters.
func isValidNick(nickname string) bool {
	const special = "-[]\\`^{}"

	if nickname == "" || len(nickname) > nickMaxLen {
		return false
	}
	if !isLetter(nickname[0]) {
		return false
	}
	for i := 0; i < len(nickname); i++ {
		ch := nickname[i]
		if isLetter(ch) || isDigit(ch) {
			continue
		}
		if !containsByte(special, ch) {
			return false
		}
	}
	return true
}

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func containsByte(s string, ch byte) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == ch {
			return true
		}
	}
	return false
}
