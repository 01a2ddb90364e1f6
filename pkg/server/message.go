package server

import "strings"

// Message is one parsed protocol line.
type Message struct {
	Prefix  string
	Command string
	Params  []string
}

// parseLine splits a protocol line (terminator already stripped) into prefix,
// command and parameters. Runs of spaces between tokens are tolerated. A
// parameter starting with ':' is the trailing parameter: it swallows the rest
// of the line, may be empty, and ends parameter scanning. A line whose prefix
// token is empty (a bare ':') is malformed and returns nil; every other line
// parses to some Message, and prefix validity is the dispatcher's concern.
func parseLine(line string) *Message {
	msg := &Message{}
	rest := line

	if strings.HasPrefix(rest, ":") {
		sp := strings.IndexByte(rest, ' ')
		if sp == -1 {
			if rest == ":" {
				return nil
			}
			msg.Prefix = rest[1:]
			return msg
		}
		if sp == 1 {
			return nil
		}
		msg.Prefix = rest[1:sp]
		rest = rest[sp+1:]
	}

	rest = strings.TrimLeft(rest, " ")
	if sp := strings.IndexByte(rest, ' '); sp != -1 {
		msg.Command = rest[:sp]
		rest = rest[sp+1:]
	} else {
		msg.Command = rest
		rest = ""
	}

	for {
		rest = strings.TrimLeft(rest, " ")
		if rest == "" {
			return msg
		}
		if rest[0] == ':' {
			msg.Params = append(msg.Params, rest[1:])
			return msg
		}
		if sp := strings.IndexByte(rest, ' '); sp != -1 {
			msg.Params = append(msg.Params, rest[:sp])
			rest = rest[sp+1:]
		} else {
			msg.Params = append(msg.Params, rest)
			return msg
		}
	}
}

// createMessage assembles one outbound wire line without its CRLF terminator:
// `:<source> <command> <params>`.
func createMessage(source, command, params string) string {
	if params == "" {
		return ":" + source + " " + command
	}
	return ":" + source + " " + command + " " + params
}
