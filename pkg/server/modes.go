package server

import (
	"strconv"
	"strings"
)

// chanMode is the channel mode bitmask.
type chanMode uint8

const (
	modeInviteOnly chanMode = 1 << iota // i
	modeTopicLock                       // t
	modeKey                             // k
	modeLimit                           // l
)

func (m chanMode) has(flag chanMode) bool {
	return m&flag != 0
}

// Channel modes fall into three parameter shapes:
//
//	type B: parameter always required, multi valued (o)
//	type C: parameter required on set, forbidden on unset (k, l)
//	type D: never takes a parameter (i, t)
type modeSpec struct {
	letter byte
	bit    chanMode
	typ    byte
}

var supportedModes = []modeSpec{
	{'i', modeInviteOnly, 'D'},
	{'t', modeTopicLock, 'D'},
	{'k', modeKey, 'C'},
	{'l', modeLimit, 'C'},
	{'o', 0, 'B'},
}

func lookupMode(letter byte) (modeSpec, bool) {
	for _, m := range supportedModes {
		if m.letter == letter {
			return m, true
		}
	}
	return modeSpec{}, false
}

// modeChange is the proposed full mode state built while parsing one MODE
// command: the current state plus the requested deltas. It is diffed against
// the live channel afterwards and never outlives the invocation.
type modeChange struct {
	bits  chanMode
	key   string
	limit int

	// Pending operator changes, nickname -> '+' or '-'. A later opposite
	// sign for the same nickname replaces the earlier one. opOrder keeps
	// first-seen order so the confirmation string is deterministic.
	opSigns map[string]byte
	opOrder []string
}

func (mc *modeChange) setOpSign(nick string, sign byte) {
	if _, seen := mc.opSigns[nick]; !seen {
		mc.opOrder = append(mc.opOrder, nick)
	}
	mc.opSigns[nick] = sign
}

// modeRequiresParam reports whether letter consumes one of the trailing
// parameters under the given sign.
func modeRequiresParam(letter, sign byte) bool {
	m, ok := lookupMode(letter)
	if !ok {
		return false
	}
	switch m.typ {
	case 'B':
		return true
	case 'C':
		return sign == '+'
	}
	return false
}

// modeStrHasEnoughParams counts the parameters the mode string will consume
// and checks paramCount covers them.
func modeStrHasEnoughParams(modeStr string, paramCount int) bool {
	need := 0
	sign := byte('+')
	for i := 0; i < len(modeStr); i++ {
		ch := modeStr[i]
		if ch == '+' || ch == '-' {
			sign = ch
			continue
		}
		if modeRequiresParam(ch, sign) {
			need++
		}
	}
	return need <= paramCount
}

// parseModeString walks the mode string left to right and builds the proposed
// state. Per-character failures (unknown mode, key already set, unknown nick,
// nick not on channel) report their own numeric reply and do not stop the
// walk. params holds only the trailing mode parameters.
func (s *Server) parseModeString(c *Client, ch *Channel, modeStr string, params []string) *modeChange {
	proposed := &modeChange{
		bits:    ch.mode,
		key:     ch.key,
		limit:   ch.userLimit,
		opSigns: make(map[string]byte),
	}

	sign := byte('+')
	paramIdx := 0
	nextParam := func() string {
		if paramIdx < len(params) {
			p := params[paramIdx]
			paramIdx++
			return p
		}
		return ""
	}

	for i := 0; i < len(modeStr); i++ {
		letter := modeStr[i]
		if letter == '+' || letter == '-' {
			sign = letter
			continue
		}

		m, known := lookupMode(letter)
		if !known {
			s.sendNumeric(c, ErrUnknownMode, map[string]string{
				"client":  c.displayName(),
				"char":    string(letter),
				"channel": ch.name,
			})
			continue
		}

		switch m.typ {
		case 'D':
			if sign == '+' {
				proposed.bits |= m.bit
			} else {
				proposed.bits &^= m.bit
			}

		case 'C':
			if letter == 'k' {
				if sign == '-' {
					proposed.bits &^= modeKey
					proposed.key = ""
					break
				}
				param := nextParam()
				if proposed.bits.has(modeKey) {
					// Existing key is preserved; the parameter was
					// still consumed above.
					s.sendNumeric(c, ErrKeySet, map[string]string{
						"client":  c.displayName(),
						"channel": ch.name,
					})
					break
				}
				proposed.bits |= modeKey
				proposed.key = param
			} else { // 'l'
				if sign == '-' {
					proposed.bits &^= modeLimit
					proposed.limit = 0
					break
				}
				param := nextParam()
				if n, err := strconv.Atoi(param); err == nil && n > 0 {
					proposed.bits |= modeLimit
					proposed.limit = n
				}
			}

		case 'B': // 'o'
			nick := nextParam()
			target := s.findClientByNick(nick)
			if target == nil {
				s.sendNumeric(c, ErrNoSuchNick, map[string]string{
					"client": c.displayName(),
					"nick":   nick,
				})
				break
			}
			if !ch.isMember(target.identifier) {
				s.sendNumeric(c, ErrNotOnChannel, map[string]string{
					"client":  c.displayName(),
					"channel": ch.name,
				})
				break
			}
			proposed.setOpSign(nick, sign)
		}
	}

	return proposed
}

// applyModeChange diffs the proposed state against the live channel, mutates
// the channel for every effective difference and returns the canonical
// confirmation token (`+xyz-abc params...`). Letters whose effective state
// did not change produce no output. The key value is never echoed; the user
// limit and operator nicknames are.
func (s *Server) applyModeChange(ch *Channel, proposed *modeChange) string {
	var plus, minus []byte
	var args []string

	for _, m := range supportedModes {
		if m.typ == 'B' {
			continue
		}
		was := ch.mode.has(m.bit)
		now := proposed.bits.has(m.bit)
		switch {
		case now && !was:
			plus = append(plus, m.letter)
			if m.letter == 'l' {
				args = append(args, strconv.Itoa(proposed.limit))
			}
		case now && was && m.letter == 'k' && proposed.key != ch.key:
			plus = append(plus, m.letter)
		case now && was && m.letter == 'l' && proposed.limit != ch.userLimit:
			plus = append(plus, m.letter)
			args = append(args, strconv.Itoa(proposed.limit))
		case !now && was:
			minus = append(minus, m.letter)
		}
	}

	ch.mode = proposed.bits
	ch.key = proposed.key
	ch.userLimit = proposed.limit

	for _, nick := range proposed.opOrder {
		target := s.findClientByNick(nick)
		if target == nil || !ch.isMember(target.identifier) {
			continue
		}
		isOp := ch.isOperator(target.identifier)
		switch proposed.opSigns[nick] {
		case '+':
			if !isOp {
				ch.operators[target.identifier] = true
				plus = append(plus, 'o')
				args = append(args, nick)
			}
		case '-':
			if isOp {
				delete(ch.operators, target.identifier)
				minus = append(minus, 'o')
				args = append(args, nick)
			}
		}
	}

	var b strings.Builder
	if len(plus) > 0 {
		b.WriteByte('+')
		b.Write(plus)
	}
	if len(minus) > 0 {
		b.WriteByte('-')
		b.Write(minus)
	}
	if b.Len() > 0 && len(args) > 0 {
		b.WriteByte(' ')
		b.WriteString(strings.Join(args, " "))
	}
	return b.String()
}

// modeWithParams renders the current channel mode for RPL_CHANNELMODEIS.
// The key value is disclosed to channel operators only.
func (ch *Channel) modeWithParams(requesterIsOp bool) (string, string) {
	letters := []byte{'+'}
	var params []string
	for _, m := range supportedModes {
		if m.typ == 'B' || !ch.mode.has(m.bit) {
			continue
		}
		letters = append(letters, m.letter)
		switch m.letter {
		case 'k':
			if requesterIsOp {
				params = append(params, ch.key)
			}
		case 'l':
			params = append(params, strconv.Itoa(ch.userLimit))
		}
	}
	return string(letters), strings.Join(params, " ")
}
