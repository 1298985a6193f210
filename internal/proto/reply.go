package proto

import (
	"fmt"
	"strings"
)

// Numeric reply codes used by the server.
const (
	RplWelcome    = 1
	RplTopic      = 332
	RplNamReply   = 353
	RplEndOfNames = 366
)

const lineEnd = "\r\n"

// Formatter builds CRLF terminated protocol lines on behalf of one server name.
type Formatter struct {
	Server string
}

// NewFormatter returns a formatter for the given server name.
func NewFormatter(server string) Formatter {
	return Formatter{Server: server}
}

func (f Formatter) numeric(code int, nick string, params ...string) string {
	var b strings.Builder
	fmt.Fprintf(&b, ":%s %03d %s", f.Server, code, nick)
	for i, p := range params {
		if i == len(params)-1 {
			b.WriteString(" :")
		} else {
			b.WriteByte(' ')
		}
		b.WriteString(p)
	}
	b.WriteString(lineEnd)
	return b.String()
}

// Welcome is the 001 line sent right after registration.
func (f Formatter) Welcome(nick, text string) string {
	return f.numeric(RplWelcome, nick, Sanitize(text))
}

// Topic is the 332 line carrying a channel description.
func (f Formatter) Topic(nick, channel, description string) string {
	return f.numeric(RplTopic, nick, channel, Sanitize(description))
}

// Names is the 353 member list line.
func (f Formatter) Names(nick, channel string, members []string) string {
	return f.numeric(RplNamReply, nick, "=", channel, strings.Join(members, " "))
}

// EndOfNames is the 366 marker closing a member list.
func (f Formatter) EndOfNames(nick, channel string) string {
	return f.numeric(RplEndOfNames, nick, channel, "End of NAMES list")
}

// Join announces that nick joined channel.
func (f Formatter) Join(nick, host, channel string) string {
	return fmt.Sprintf(":%s JOIN %s%s", source(nick, host), channel, lineEnd)
}

// Part announces that nick left channel with the given reason.
func (f Formatter) Part(nick, host, channel, reason string) string {
	return fmt.Sprintf(":%s PART %s :%s%s", source(nick, host), channel, Sanitize(reason), lineEnd)
}

// PrivMsg relays a channel message.
func (f Formatter) PrivMsg(nick, host, channel, body string) string {
	return fmt.Sprintf(":%s PRIVMSG %s :%s%s", source(nick, host), channel, Sanitize(body), lineEnd)
}

// Pong answers a PING token.
func (f Formatter) Pong(token string) string {
	return fmt.Sprintf("PONG %s :%s%s", f.Server, Sanitize(token), lineEnd)
}

func source(nick, host string) string {
	return nick + "!" + nick + "@" + host
}

// Sanitize strips CR and LF so user text cannot inject extra lines.
func Sanitize(s string) string {
	return strings.NewReplacer("\r", "", "\n", "").Replace(s)
}
