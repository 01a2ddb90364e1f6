package server

import (
	"strings"

	log "github.com/sirupsen/logrus"
)

// Command handlers. All of them run with the server mutex held and resolve
// every failure into either a numeric reply or a silent no-op; none of them
// block.

// handlePass stores password validity. A wrong password on a second PASS
// also revokes a previously validated one.
func (s *Server) handlePass(c *Client, params []string) {
	info := map[string]string{"client": c.displayName(), "command": PassCmd}
	if c.registered {
		s.sendNumeric(c, ErrAlreadyRegistered, info)
		return
	}
	if len(params) == 0 {
		s.sendNumeric(c, ErrNeedMoreParams, info)
		return
	}
	if !s.checkServerPassword(params[0]) {
		c.hasValidPass = false
		s.sendNumeric(c, ErrPasswdMismatch, info)
		return
	}
	c.hasValidPass = true
}

func (s *Server) handleNick(c *Client, params []string) {
	info := map[string]string{"client": c.nickname}
	if !c.hasValidPass {
		s.sendNumeric(c, ErrPasswdMismatch, info)
		return
	}
	if len(params) == 0 {
		s.sendNumeric(c, ErrNoNicknameGiven, info)
		return
	}
	nick := params[0]
	info["nick"] = nick
	if !isValidNick(nick) {
		s.sendNumeric(c, ErrErroneusNickname, info)
		return
	}
	if other := s.findClientByNickAny(nick); other != nil && other.identifier != c.identifier {
		s.sendNumeric(c, ErrNicknameInUse, info)
		return
	}
	if !s.reserveNick(c, nick) {
		s.sendNumeric(c, ErrNicknameInUse, info)
		return
	}
	c.nickname = nick
	if c.registered {
		c.fullID = nick + "!" + c.username + "@" + s.name
		return
	}
	if c.username != "" {
		s.completeRegistration(c)
	}
}

// handleUser stores the username, truncated to twelve bytes. A username
// containing a space is silently ignored: no reply, no mutation.
func (s *Server) handleUser(c *Client, params []string) {
	info := map[string]string{"client": c.nickname, "command": UserCmd}
	if c.registered {
		s.sendNumeric(c, ErrAlreadyRegistered, info)
		return
	}
	if !c.hasValidPass {
		s.sendNumeric(c, ErrPasswdMismatch, info)
		return
	}
	if len(params) == 0 {
		s.sendNumeric(c, ErrNeedMoreParams, info)
		return
	}
	username := params[0]
	if strings.Contains(username, " ") {
		return
	}
	if len(username) > userMaxLen {
		username = username[:userMaxLen]
	}
	c.username = username
	if c.username != "" && c.nickname != "" && !c.registered {
		s.completeRegistration(c)
	}
}

func (s *Server) handleJoin(c *Client, params []string) {
	if !c.registered {
		return
	}
	info := map[string]string{"client": c.displayName(), "command": JoinCmd}
	if len(params) == 0 {
		s.sendNumeric(c, ErrNeedMoreParams, info)
		return
	}
	name := params[0]
	if len(name) > channelNameMaxLen {
		name = name[:channelNameMaxLen]
	}
	info["channel"] = name

	if len(c.channels) >= s.channelLimit {
		s.sendNumeric(c, ErrTooManyChannels, info)
		return
	}

	ch := s.channels[name]
	if ch != nil {
		if ch.isMember(c.identifier) {
			return
		}
		if ch.isInMode(modeInviteOnly) && !ch.isInvited(c.identifier) {
			s.sendNumeric(c, ErrInviteOnlyChan, info)
			return
		}
		if ch.isFull() {
			s.sendNumeric(c, ErrChannelIsFull, info)
			return
		}
		if ch.isInMode(modeKey) {
			if len(params) < 2 {
				s.sendNumeric(c, ErrNeedMoreParams, info)
				return
			}
			if !ch.isMatchingKey(params[1]) {
				s.sendNumeric(c, ErrBadChannelKey, info)
				return
			}
		}
		ch.addMember(c.identifier)
		delete(ch.invited, c.identifier)
	} else {
		if !isValidChannelName(name) {
			s.sendNumeric(c, ErrBadChanMask, info)
			return
		}
		ch = newChannel(name, c.identifier)
		s.channels[name] = ch
		log.Infof("[JOIN] %s created channel %s", c.nickname, name)
	}
	c.channels[name] = true

	s.broadcast(ch, createMessage(c.fullID, JoinCmd, ch.name))
	if ch.topic != "" {
		info["topic"] = ch.topic
		s.sendNumeric(c, RplTopic, info)
	}
	info["symbol"] = "="
	info["nicks"] = s.channelNicks(ch)
	s.sendNumeric(c, RplNamReply, info)
}

func (s *Server) handlePart(c *Client, params []string) {
	if !c.registered {
		return
	}
	info := map[string]string{"client": c.displayName(), "command": PartCmd}
	if len(params) == 0 {
		s.sendNumeric(c, ErrNeedMoreParams, info)
		return
	}
	name := params[0]
	info["channel"] = name
	ch := s.channels[name]
	if ch == nil {
		s.sendNumeric(c, ErrNoSuchChannel, info)
		return
	}
	if !ch.isMember(c.identifier) {
		s.sendNumeric(c, ErrNotOnChannel, info)
		return
	}

	wire := ch.name
	if len(params) > 1 {
		wire += " :" + params[1]
	}
	s.broadcast(ch, createMessage(c.fullID, PartCmd, wire))
	ch.removeMember(c.identifier)
	delete(c.channels, name)
	s.dropChannelIfEmpty(ch)
}

func (s *Server) handlePrivmsg(c *Client, params []string) {
	if !c.registered {
		return
	}
	info := map[string]string{"client": c.displayName(), "command": PrivmsgCmd}
	if len(params) == 0 {
		s.sendNumeric(c, ErrNoRecipient, info)
		return
	}
	if len(params) < 2 {
		s.sendNumeric(c, ErrNoTextToSend, info)
		return
	}

	targets, ok := splitTargets(params[0])
	if !ok {
		info["target"] = params[0]
		s.sendNumeric(c, ErrTooManyTargets, info)
		return
	}

	// Each target resolves and replies independently; one bad target does
	// not stop delivery to the rest.
	for _, target := range targets {
		if recipient := s.findClientByNick(target); recipient != nil {
			s.privmsgClient(c, recipient, params[1])
			continue
		}
		ch := s.channels[target]
		switch {
		case ch != nil && ch.isMember(c.identifier):
			s.broadcastExcept(ch, createMessage(c.fullID, PrivmsgCmd, ch.name+" :"+params[1]), c.identifier)
		case ch != nil:
			s.sendNumeric(c, ErrNotOnChannel, map[string]string{"client": c.displayName(), "channel": target})
		default:
			s.sendNumeric(c, ErrNoSuchNick, map[string]string{"client": c.displayName(), "nick": target})
		}
	}
}

// splitTargets splits a comma separated target list, discarding empty items.
// A list containing a duplicate rejects the whole command.
func splitTargets(targetStr string) ([]string, bool) {
	var targets []string
	for _, t := range strings.Split(targetStr, ",") {
		if t == "" {
			continue
		}
		for _, seen := range targets {
			if seen == t {
				return nil, false
			}
		}
		targets = append(targets, t)
	}
	return targets, true
}

// privmsgClient delivers one direct message. A message a client addresses to
// its own nickname is suppressed.
func (s *Server) privmsgClient(from, to *Client, text string) {
	if from.identifier == to.identifier {
		return
	}
	to.sendLine(createMessage(from.fullID, PrivmsgCmd, to.nickname+" :"+text))
}

func (s *Server) handleKick(c *Client, params []string) {
	if !c.registered {
		return
	}
	info := map[string]string{"client": c.displayName(), "command": KickCmd}
	if len(params) < 2 {
		s.sendNumeric(c, ErrNeedMoreParams, info)
		return
	}
	info["channel"] = params[0]
	info["user"] = params[1]
	info["nick"] = params[1]

	ch := s.channels[params[0]]
	if ch == nil {
		s.sendNumeric(c, ErrNoSuchChannel, info)
		return
	}
	if !ch.isMember(c.identifier) {
		s.sendNumeric(c, ErrNotOnChannel, info)
		return
	}
	if !ch.isOperator(c.identifier) {
		s.sendNumeric(c, ErrChanOPrivsNeeded, info)
		return
	}
	target := s.findClientByNick(params[1])
	if target == nil {
		s.sendNumeric(c, ErrNoSuchNick, info)
		return
	}
	if !ch.isMember(target.identifier) {
		s.sendNumeric(c, ErrUserNotInChannel, info)
		return
	}

	// The target still sees the KICK naming it; broadcast before removal.
	wire := ch.name + " " + target.nickname
	if len(params) > 2 {
		wire += " :" + params[2]
	}
	s.broadcast(ch, createMessage(c.fullID, KickCmd, wire))
	ch.removeMember(target.identifier)
	delete(target.channels, ch.name)
	s.dropChannelIfEmpty(ch)
	log.Infof("[KICK] %s kicked %s from %s", c.nickname, target.nickname, ch.name)
}

func (s *Server) handleInvite(c *Client, params []string) {
	if !c.registered {
		return
	}
	info := map[string]string{"client": c.displayName(), "command": InviteCmd}
	if len(params) < 2 {
		s.sendNumeric(c, ErrNeedMoreParams, info)
		return
	}
	info["nick"] = params[0]
	info["user"] = params[0]
	info["channel"] = params[1]

	recipient := s.findClientByNick(params[0])
	if recipient == nil {
		s.sendNumeric(c, ErrNoSuchNick, info)
		return
	}
	ch := s.channels[params[1]]
	if ch == nil {
		s.sendNumeric(c, ErrNoSuchChannel, info)
		return
	}
	if !ch.isMember(c.identifier) {
		s.sendNumeric(c, ErrNotOnChannel, info)
		return
	}
	if ch.isInMode(modeInviteOnly) && !ch.isOperator(c.identifier) {
		s.sendNumeric(c, ErrChanOPrivsNeeded, info)
		return
	}
	if ch.isMember(recipient.identifier) {
		s.sendNumeric(c, ErrUserOnChannel, info)
		return
	}

	ch.invited[recipient.identifier] = true
	recipient.sendLine(createMessage(c.fullID, InviteCmd, recipient.nickname+" "+ch.name))
	s.sendNumeric(c, RplInviting, info)
	log.Infof("[INVITE] %s invited %s to %s", c.nickname, recipient.nickname, ch.name)
}

func (s *Server) handleTopic(c *Client, params []string) {
	if !c.registered {
		return
	}
	info := map[string]string{"client": c.displayName(), "command": TopicCmd}
	if len(params) == 0 {
		s.sendNumeric(c, ErrNeedMoreParams, info)
		return
	}
	info["channel"] = params[0]
	ch := s.channels[params[0]]
	if ch == nil {
		s.sendNumeric(c, ErrNoSuchChannel, info)
		return
	}
	if !ch.isMember(c.identifier) {
		s.sendNumeric(c, ErrNotOnChannel, info)
		return
	}

	if len(params) == 1 {
		if ch.topic == "" {
			s.sendNumeric(c, RplNoTopic, info)
			return
		}
		info["topic"] = ch.topic
		s.sendNumeric(c, RplTopic, info)
		return
	}

	if ch.isInMode(modeTopicLock) && !ch.isOperator(c.identifier) {
		s.sendNumeric(c, ErrChanOPrivsNeeded, info)
		return
	}
	ch.topic = params[1]
	s.broadcast(ch, createMessage(c.fullID, TopicCmd, ch.name+" :"+ch.topic))
}

func (s *Server) handleMode(c *Client, params []string) {
	if !c.registered {
		return
	}
	info := map[string]string{"client": c.displayName(), "command": ModeCmd}
	if len(params) == 0 {
		s.sendNumeric(c, ErrNeedMoreParams, info)
		return
	}
	// User modes are out of scope; MODE on one's own nick is a no-op.
	if params[0] == c.nickname {
		return
	}
	info["channel"] = params[0]
	ch := s.channels[params[0]]
	if ch == nil {
		s.sendNumeric(c, ErrNoSuchChannel, info)
		return
	}
	if !ch.isMember(c.identifier) {
		s.sendNumeric(c, ErrNotOnChannel, info)
		return
	}

	if len(params) < 2 {
		mode, modeParams := ch.modeWithParams(ch.isOperator(c.identifier))
		info["mode"] = mode
		info["mode params"] = modeParams
		s.sendNumeric(c, RplChannelModeIs, info)
		return
	}

	if !ch.isOperator(c.identifier) {
		s.sendNumeric(c, ErrChanOPrivsNeeded, info)
		return
	}
	// Letters before the first sign are unknown mode characters; the rest
	// of the string is still processed.
	modeStr := params[1]
	if start := strings.IndexAny(modeStr, "+-"); start != 0 {
		end := len(modeStr)
		if start > 0 {
			end = start
		}
		for i := 0; i < end; i++ {
			info["char"] = string(modeStr[i])
			s.sendNumeric(c, ErrUnknownMode, info)
		}
		if start == -1 {
			return
		}
		modeStr = modeStr[start:]
	}
	if !modeStrHasEnoughParams(modeStr, len(params)-2) {
		s.sendNumeric(c, ErrNeedMoreParams, info)
		return
	}

	proposed := s.parseModeString(c, ch, modeStr, params[2:])
	confirmation := s.applyModeChange(ch, proposed)
	if confirmation != "" {
		s.broadcast(ch, createMessage(c.fullID, ModeCmd, ch.name+" "+confirmation))
	}
}

// handlePing answers with a PONG carrying the token back, empty or not.
func (s *Server) handlePing(c *Client, params []string) {
	if !c.registered {
		return
	}
	token := ""
	if len(params) > 0 {
		token = params[0]
	}
	c.sendLine(createMessage(s.name, PongCmd, s.name+" :"+token))
}

func (s *Server) handleQuit(c *Client, params []string) {
	reason := "Client quit"
	if len(params) > 0 && params[0] != "" {
		reason = params[0]
	}
	s.departAllChannels(c, reason)
	c.quitting = true
}
