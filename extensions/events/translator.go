package events

import (
	"regexp"
	"strconv"
	"sync"

	"github.com/vitalvas/mqttpub"
)

// Message is an MQTT message produced from an event.
type Message struct {
	Topic   string
	Payload []byte
	Retain  bool
	QoS     mqttpub.QoS
}

// Mapper builds a message from an event. Returning false drops the event.
type Mapper func(ev Event) (Message, bool)

// Condition defines which events a rule applies to.
type Condition struct {
	source      *string
	name        *string
	namePattern *regexp.Regexp
}

// ConditionOption configures a Condition.
type ConditionOption func(*Condition)

// WithSource matches events from one source, e.g. "com.lab126.powerd".
func WithSource(source string) ConditionOption {
	return func(c *Condition) {
		c.source = &source
	}
}

// WithName matches events with exactly this name.
func WithName(name string) ConditionOption {
	return func(c *Condition) {
		c.name = &name
	}
}

// WithNamePattern matches event names against a regexp.
func WithNamePattern(pattern *regexp.Regexp) ConditionOption {
	return func(c *Condition) {
		c.namePattern = pattern
	}
}

func (c *Condition) matches(ev Event) bool {
	if c.source != nil && *c.source != ev.Source {
		return false
	}
	if c.name != nil && *c.name != ev.Name {
		return false
	}
	if c.namePattern != nil && !c.namePattern.MatchString(ev.Name) {
		return false
	}
	return true
}

type rule struct {
	mapper    Mapper
	condition Condition
}

// Translator maps events to messages through an ordered list of rules.
// Every matching rule contributes a message.
type Translator struct {
	mu    sync.RWMutex
	rules []rule
}

// NewTranslator creates a translator without rules.
func NewTranslator() *Translator {
	return &Translator{}
}

// Handle appends a rule. Without options the rule matches every event.
//
//	t.Handle(Static("home/door", "open", false), WithName("doorOpened"))
func (t *Translator) Handle(mapper Mapper, opts ...ConditionOption) {
	var cond Condition
	for _, opt := range opts {
		opt(&cond)
	}

	t.mu.Lock()
	t.rules = append(t.rules, rule{mapper: mapper, condition: cond})
	t.mu.Unlock()
}

// Translate returns the messages for ev in rule order.
func (t *Translator) Translate(ev Event) []Message {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var out []Message
	for _, r := range t.rules {
		if !r.condition.matches(ev) {
			continue
		}
		if msg, ok := r.mapper(ev); ok {
			out = append(out, msg)
		}
	}
	return out
}

// Len returns the number of rules.
func (t *Translator) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rules)
}

// Static returns a mapper that always yields the same message.
func Static(topic, payload string, retain bool) Mapper {
	return func(Event) (Message, bool) {
		return Message{Topic: topic, Payload: []byte(payload), Retain: retain}, true
	}
}

// IntParam returns a mapper that publishes the event's integer parameter as
// decimal text. A missing or non-integer parameter publishes fallback.
func IntParam(topic string, retain bool, fallback int32) Mapper {
	return func(ev Event) (Message, bool) {
		v := fallback
		switch {
		case ev.Int != nil:
			v = *ev.Int
		case ev.Str != nil:
			if n, err := strconv.ParseInt(*ev.Str, 10, 32); err == nil {
				v = int32(n)
			}
		}
		return Message{
			Topic:   topic,
			Payload: strconv.AppendInt(nil, int64(v), 10),
			Retain:  retain,
		}, true
	}
}

// Event sources and names understood by DefaultTranslator.
const (
	SourcePowerd = "com.lab126.powerd"
	SourceWifid  = "com.lab126.wifid"

	EventConnected          = "cmConnected"
	EventGoingToScreenSaver = "goingToScreenSaver"
	EventOutOfScreenSaver   = "outOfScreenSaver"
	EventBattLevelChanged   = "battLevelChanged"
)

// Topics published by DefaultTranslator.
const (
	TopicConnected   = "KINDLE/CONNECTED"
	TopicScreenState = "KINDLE/SCREEN_STATE"
	TopicBattery     = "KINDLE/BATTERY"
)

// DefaultTranslator maps the e-reader power and wifi events. Screen state and
// battery level are retained so new subscribers see the current value.
// An unreadable battery level is published as -1.
func DefaultTranslator() *Translator {
	t := NewTranslator()
	t.Handle(Static(TopicConnected, "", false), WithName(EventConnected))
	t.Handle(Static(TopicScreenState, "OFF", true), WithName(EventGoingToScreenSaver))
	t.Handle(Static(TopicScreenState, "ON", true), WithName(EventOutOfScreenSaver))
	t.Handle(IntParam(TopicBattery, true, -1), WithName(EventBattLevelChanged))
	return t
}

// DefaultSubscriptions lists the events DefaultTranslator handles, by source.
func DefaultSubscriptions() map[string][]string {
	return map[string][]string{
		SourcePowerd: {EventGoingToScreenSaver, EventOutOfScreenSaver, EventBattLevelChanged},
		SourceWifid:  {EventConnected},
	}
}
