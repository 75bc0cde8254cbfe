// Package events turns device event bus notifications into MQTT messages.
//
// Events arrive as text lines in the format printed by lipc-wait-event:
//
//	battLevelChanged 75
//	cmConnected
//	someEvent "quoted text"
//
// A Translator maps events to messages and a Bridge publishes them.
package events

import (
	"errors"
	"strconv"
	"strings"
)

// ErrEmptyLine is returned by ParseLine for a blank line.
var ErrEmptyLine = errors.New("empty event line")

// Event is a named notification from an event source, with at most one
// parameter that is either an integer or a string.
type Event struct {
	Source string
	Name   string
	Int    *int32
	Str    *string
}

// String returns the event in its line format, prefixed by the source.
func (e Event) String() string {
	var b strings.Builder
	if e.Source != "" {
		b.WriteString("[" + e.Source + "] ")
	}
	b.WriteString(e.Name)
	switch {
	case e.Int != nil:
		b.WriteString(" " + strconv.FormatInt(int64(*e.Int), 10))
	case e.Str != nil:
		b.WriteString(" " + strconv.Quote(*e.Str))
	}
	return b.String()
}

// Param returns the parameter as text, or "" when the event has none.
func (e Event) Param() string {
	switch {
	case e.Int != nil:
		return strconv.FormatInt(int64(*e.Int), 10)
	case e.Str != nil:
		return *e.Str
	default:
		return ""
	}
}

// ParseLine parses one line of event output. A bare token after the name is
// an integer when it fits in 32 bits and a string otherwise; a quoted
// parameter is always a string.
func ParseLine(source, line string) (Event, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Event{}, ErrEmptyLine
	}

	name, rest, _ := strings.Cut(line, " ")
	ev := Event{Source: source, Name: name}

	rest = strings.TrimSpace(rest)
	if rest == "" {
		return ev, nil
	}

	if strings.HasPrefix(rest, `"`) {
		s, err := strconv.Unquote(rest)
		if err != nil {
			s = strings.Trim(rest, `"`)
		}
		ev.Str = &s
		return ev, nil
	}

	if n, err := strconv.ParseInt(rest, 10, 32); err == nil {
		v := int32(n)
		ev.Int = &v
		return ev, nil
	}

	ev.Str = &rest
	return ev, nil
}
