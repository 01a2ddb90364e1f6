package server

import (
	"fmt"
	"strings"
)

// Numeric is a three digit IRC reply code.
type Numeric int

// Reply codes used by this server, RFC 1459/2812 numbering.
const (
	RplWelcome       Numeric = 1
	RplYourHost      Numeric = 2
	RplCreated       Numeric = 3
	RplChannelModeIs Numeric = 324
	RplNoTopic       Numeric = 331
	RplTopic         Numeric = 332
	RplInviting      Numeric = 341
	RplNamReply      Numeric = 353

	ErrNoSuchNick        Numeric = 401
	ErrNoSuchChannel     Numeric = 403
	ErrCannotSendToChan  Numeric = 404
	ErrTooManyChannels   Numeric = 405
	ErrTooManyTargets    Numeric = 407
	ErrNoRecipient       Numeric = 411
	ErrNoTextToSend      Numeric = 412
	ErrUnknownCommand    Numeric = 421
	ErrNoNicknameGiven   Numeric = 431
	ErrErroneusNickname  Numeric = 432
	ErrNicknameInUse     Numeric = 433
	ErrUserNotInChannel  Numeric = 441
	ErrNotOnChannel      Numeric = 442
	ErrUserOnChannel     Numeric = 443
	ErrNeedMoreParams    Numeric = 461
	ErrAlreadyRegistered Numeric = 462
	ErrPasswdMismatch    Numeric = 464
	ErrKeySet            Numeric = 467
	ErrChannelIsFull     Numeric = 471
	ErrUnknownMode       Numeric = 472
	ErrInviteOnlyChan    Numeric = 473
	ErrBadChannelKey     Numeric = 475
	ErrBadChanMask       Numeric = 476
	ErrChanOPrivsNeeded  Numeric = 482
)

// replyText maps each reply code to its template. Placeholders are named
// <key> tokens substituted from the per-reply info map; a key with no value
// is substituted with the empty string.
var replyText = map[Numeric]string{
	RplWelcome:       "<nick> :*** Welcome to <network>, <nick>! ***",
	RplYourHost:      "<client> :Your host is <servername>, running version <version>",
	RplCreated:       "<client> :This server was created <datetime>",
	RplChannelModeIs: "<client> <channel> <mode> <mode params>",
	RplNoTopic:       "<client> <channel> :No topic is set",
	RplTopic:         "<client> <channel> :<topic>",
	RplInviting:      "<client> <nick> <channel>",
	RplNamReply:      "<client> <symbol> <channel> :<nicks>",

	ErrNoSuchNick:        "<client> <nick> :No such nick/channel",
	ErrNoSuchChannel:     "<client> <channel> :No such channel",
	ErrCannotSendToChan:  "<client> <channel> :Cannot send to channel",
	ErrTooManyChannels:   "<client> <channel> :You have joined too many channels",
	ErrTooManyTargets:    "<client> <target> :Duplicate recipients. No message delivered",
	ErrNoRecipient:       "<client> :No recipient given (<command>)",
	ErrNoTextToSend:      "<client> :No text to send",
	ErrUnknownCommand:    "<client> <command> :Unknown command",
	ErrNoNicknameGiven:   "<client> :No nickname given",
	ErrErroneusNickname:  "<client> <nick> :Erroneous nickname",
	ErrNicknameInUse:     "<client> <nick> :Nickname is already in use",
	ErrUserNotInChannel:  "<client> <user> <channel> :They are not on that channel",
	ErrNotOnChannel:      "<client> <channel> :You're not on that channel",
	ErrUserOnChannel:     "<client> <user> <channel> :is already on channel",
	ErrNeedMoreParams:    "<client> <command> :Not enough parameters",
	ErrAlreadyRegistered: "<client> :You may not reregister",
	ErrPasswdMismatch:    "<client> :Password incorrect",
	ErrKeySet:            "<client> <channel> :Channel key already set",
	ErrChannelIsFull:     "<client> <channel> :Cannot join channel (channel is full)",
	ErrUnknownMode:       "<client> <char> :is unknown mode char to me for <channel>",
	ErrInviteOnlyChan:    "<client> <channel> :Cannot join channel (invite only)",
	ErrBadChannelKey:     "<client> <channel> :Cannot join channel (incorrect channel key)",
	ErrBadChanMask:       "<channel> :Bad Channel Mask",
	ErrChanOPrivsNeeded:  "<client> <channel> :You're not channel operator",
}

// String formats the code as the three digit token used on the wire.
func (n Numeric) String() string {
	return fmt.Sprintf("%03d", int(n))
}

// fillPlaceholders substitutes every <key> token in template with info[key].
// Unknown keys are blanked rather than left literal, so templates can grow
// fields before all call sites supply them.
func fillPlaceholders(template string, info map[string]string) string {
	var b strings.Builder
	rest := template
	for {
		start := strings.IndexByte(rest, '<')
		if start == -1 {
			b.WriteString(rest)
			return b.String()
		}
		end := strings.IndexByte(rest[start:], '>')
		if end == -1 {
			b.WriteString(rest)
			return b.String()
		}
		end += start
		b.WriteString(rest[:start])
		b.WriteString(info[rest[start+1:end]])
		rest = rest[end+1:]
	}
}

// validateCatalog checks every template for balanced placeholder brackets.
// Run once at server construction so a bad template fails fast.
func validateCatalog() error {
	for code, template := range replyText {
		depth := 0
		for _, r := range template {
			switch r {
			case '<':
				depth++
				if depth > 1 {
					return fmt.Errorf("reply %s: nested placeholder in %q", code, template)
				}
			case '>':
				depth--
				if depth < 0 {
					return fmt.Errorf("reply %s: unbalanced placeholder in %q", code, template)
				}
			}
		}
		if depth != 0 {
			return fmt.Errorf("reply %s: unterminated placeholder in %q", code, template)
		}
	}
	return nil
}

// sendNumeric formats one numeric reply and delivers it to a single client.
// Reply lines always originate from the server name.
func (s *Server) sendNumeric(c *Client, code Numeric, info map[string]string) {
	text := fillPlaceholders(replyText[code], info)
	c.sendLine(createMessage(s.name, code.String(), text))
}
