package server

import (
	"strings"

	"github.com/google/uuid"
)

const channelNameMaxLen = 200

// Channel holds the membership and mode state for one channel name. Channels
// are created lazily on first JOIN and deleted as soon as the last member
// leaves; the name is immutable after creation. Access is serialized by the
// server mutex.
type Channel struct {
	name  string
	topic string

	mode      chanMode
	key       string
	userLimit int

	// Join order; kept as a slice so name-list replies are deterministic.
	members   []uuid.UUID
	operators map[uuid.UUID]bool
	invited   map[uuid.UUID]bool
}

func newChannel(name string, founder uuid.UUID) *Channel {
	ch := &Channel{
		name:      name,
		operators: make(map[uuid.UUID]bool),
		invited:   make(map[uuid.UUID]bool),
	}
	ch.members = append(ch.members, founder)
	ch.operators[founder] = true
	return ch
}

func (ch *Channel) isMember(id uuid.UUID) bool {
	for _, m := range ch.members {
		if m == id {
			return true
		}
	}
	return false
}

func (ch *Channel) addMember(id uuid.UUID) {
	if !ch.isMember(id) {
		ch.members = append(ch.members, id)
	}
}

// removeMember drops the client from the member list and from the operator
// set. Invitations are left alone; they are consumed on join only.
func (ch *Channel) removeMember(id uuid.UUID) {
	for i, m := range ch.members {
		if m == id {
			ch.members = append(ch.members[:i], ch.members[i+1:]...)
			break
		}
	}
	delete(ch.operators, id)
}

func (ch *Channel) isOperator(id uuid.UUID) bool {
	return ch.operators[id]
}

func (ch *Channel) isInvited(id uuid.UUID) bool {
	return ch.invited[id]
}

func (ch *Channel) isFull() bool {
	return ch.mode.has(modeLimit) && len(ch.members) >= ch.userLimit
}

func (ch *Channel) isInMode(m chanMode) bool {
	return ch.mode.has(m)
}

func (ch *Channel) isMatchingKey(key string) bool {
	return ch.key == key
}

// isValidChannelName checks the RFC 1459 channel name grammar: a '&' or '#'
// sigil, at most 200 characters, and none of space, comma or ^G (ASCII 7).
func isValidChannelName(name string) bool {
	if len(name) < 2 || len(name) > channelNameMaxLen {
		return false
	}
	if name[0] != '&' && name[0] != '#' {
		return false
	}
	return !strings.ContainsAny(name, " ,\x07")
}
