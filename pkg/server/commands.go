package server

const (
	// Registration commands
	// PassCmd `PASS secretpass` [Password message](https://tools.ietf.org/html/rfc2812#section-3.1.1)
	PassCmd = "PASS"
	// NickCmd `NICK alice` [Nick message](https://tools.ietf.org/html/rfc2812#section-3.1.2)
	NickCmd = "NICK"
	// UserCmd `USER <user>` [User message](https://tools.ietf.org/html/rfc2812#section-3.1.3)
	UserCmd = "USER"
	// QuitCmd `QUIT [<Quit message>]` [Quit](https://tools.ietf.org/html/rfc2812#section-3.1.7)
	QuitCmd = "QUIT"
	// !Registration commands

	// Channel commands
	JoinCmd   = "JOIN"
	PartCmd   = "PART"
	KickCmd   = "KICK"
	InviteCmd = "INVITE"
	TopicCmd  = "TOPIC"
	ModeCmd   = "MODE"
	// !Channel commands

	// Client commands
	PrivmsgCmd = "PRIVMSG"
	PingCmd    = "PING"
	// !Client commands

	// Server responses
	PongCmd = "PONG"
	// !Server responses
)
