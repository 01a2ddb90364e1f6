package server

import (
	log "github.com/sirupsen/logrus"
)

type handlerFunc func(c *Client, params []string)

type command struct {
	name    string
	handler handlerFunc
}

// registerCommands builds the ordered (name, handler) registry. Names are
// stored uppercase; the read loop uppercases the command token to match.
func (s *Server) registerCommands() {
	s.commands = []command{
		{PassCmd, s.handlePass},
		{NickCmd, s.handleNick},
		{UserCmd, s.handleUser},
		{JoinCmd, s.handleJoin},
		{PartCmd, s.handlePart},
		{PrivmsgCmd, s.handlePrivmsg},
		{KickCmd, s.handleKick},
		{InviteCmd, s.handleInvite},
		{TopicCmd, s.handleTopic},
		{ModeCmd, s.handleMode},
		{PingCmd, s.handlePing},
		{QuitCmd, s.handleQuit},
	}
}

// dispatchMessage routes a parsed message to its handler. A message carrying
// a prefix is accepted only when the sender is registered and the prefix is
// exactly the sender's nickname; anything else drops the line silently.
// Unknown commands get ERR_UNKNOWNCOMMAND.
func (s *Server) dispatchMessage(c *Client, msg *Message) {
	if msg.Prefix != "" && (!c.registered || msg.Prefix != c.nickname) {
		log.Debugf("dropping line with invalid prefix %q from %s", msg.Prefix, c.identifier)
		return
	}
	for _, cmd := range s.commands {
		if cmd.name == msg.Command {
			cmd.handler(c, msg.Params)
			return
		}
	}
	s.sendNumeric(c, ErrUnknownCommand, map[string]string{
		"client":  c.displayName(),
		"command": msg.Command,
	})
}
