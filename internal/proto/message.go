package proto

import (
	"errors"
	"strings"
)

// Command words understood by the session layer.
const (
	CommandNick    = "NICK"
	CommandPass    = "PASS"
	CommandJoin    = "JOIN"
	CommandPart    = "PART"
	CommandPrivmsg = "PRIVMSG"
	CommandPing    = "PING"
	CommandQuit    = "QUIT"
)

var (
	// ErrEmptyLine is returned for lines with no command word.
	ErrEmptyLine = errors.New("empty line")
	// ErrMissingParam is returned when a command lacks a required argument.
	ErrMissingParam = errors.New("missing parameter")
)

// Message is one parsed inbound protocol line.
type Message struct {
	Command string
	// Params holds the space separated words between the command and the trailing body.
	Params []string
	// Trailing is the text following the first ':' delimiter.
	Trailing    string
	HasTrailing bool
}

// Parse splits a raw line into its command word, parameters and trailing body.
// A leading ":prefix" word sent by some clients is skipped.
func Parse(line string) (Message, error) {
	line = strings.TrimRight(line, "\r\n")
	line = strings.TrimLeft(line, " ")

	if strings.HasPrefix(line, ":") {
		_, rest, _ := strings.Cut(line, " ")
		line = strings.TrimLeft(rest, " ")
	}

	head, trailing, hasTrailing := strings.Cut(line, ":")
	words := strings.Fields(head)
	if len(words) == 0 {
		return Message{}, ErrEmptyLine
	}

	return Message{
		Command:     strings.ToUpper(words[0]),
		Params:      words[1:],
		Trailing:    trailing,
		HasTrailing: hasTrailing,
	}, nil
}

// Param returns the i-th parameter or ErrMissingParam.
func (m Message) Param(i int) (string, error) {
	if i < 0 || i >= len(m.Params) {
		return "", ErrMissingParam
	}
	return m.Params[i], nil
}

// Arg returns the first parameter, falling back to the trailing body.
// NICK and PING are often sent either way.
func (m Message) Arg() (string, error) {
	if len(m.Params) > 0 {
		return m.Params[0], nil
	}
	if m.HasTrailing && m.Trailing != "" {
		return m.Trailing, nil
	}
	return "", ErrMissingParam
}

// SplitTargets splits a comma separated target list, dropping empty entries.
func SplitTargets(s string) []string {
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
