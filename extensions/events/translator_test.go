package events

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitalvas/mqttpub"
)

func TestDefaultTranslator(t *testing.T) {
	tests := []struct {
		name        string
		event       Event
		wantTopic   string
		wantPayload string
		wantRetain  bool
	}{
		{
			name:      "wifi connected",
			event:     Event{Source: SourceWifid, Name: EventConnected},
			wantTopic: TopicConnected,
		},
		{
			name:        "screen off",
			event:       Event{Source: SourcePowerd, Name: EventGoingToScreenSaver},
			wantTopic:   TopicScreenState,
			wantPayload: "OFF",
			wantRetain:  true,
		},
		{
			name:        "screen on",
			event:       Event{Source: SourcePowerd, Name: EventOutOfScreenSaver},
			wantTopic:   TopicScreenState,
			wantPayload: "ON",
			wantRetain:  true,
		},
		{
			name:        "battery level",
			event:       Event{Source: SourcePowerd, Name: EventBattLevelChanged, Int: ptr(int32(75))},
			wantTopic:   TopicBattery,
			wantPayload: "75",
			wantRetain:  true,
		},
		{
			name:        "battery level missing",
			event:       Event{Source: SourcePowerd, Name: EventBattLevelChanged},
			wantTopic:   TopicBattery,
			wantPayload: "-1",
			wantRetain:  true,
		},
		{
			name:        "battery level unparsable",
			event:       Event{Source: SourcePowerd, Name: EventBattLevelChanged, Str: ptr("full")},
			wantTopic:   TopicBattery,
			wantPayload: "-1",
			wantRetain:  true,
		},
	}

	tr := DefaultTranslator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msgs := tr.Translate(tt.event)
			require.Len(t, msgs, 1)
			assert.Equal(t, tt.wantTopic, msgs[0].Topic)
			assert.Equal(t, tt.wantPayload, string(msgs[0].Payload))
			assert.Equal(t, tt.wantRetain, msgs[0].Retain)
			assert.Equal(t, mqttpub.AtMostOnce, msgs[0].QoS)
		})
	}
}

func TestDefaultTranslatorIgnoresUnknown(t *testing.T) {
	assert.Empty(t, DefaultTranslator().Translate(Event{Name: "somethingElse"}))
}

func TestTranslatorConditions(t *testing.T) {
	tr := NewTranslator()
	tr.Handle(Static("by/source", "", false), WithSource("a"))
	tr.Handle(Static("by/name", "", false), WithName("ping"))
	tr.Handle(Static("by/pattern", "", false), WithNamePattern(regexp.MustCompile(`^batt`)))
	tr.Handle(Static("by/both", "", false), WithSource("b"), WithName("ping"))

	topics := func(ev Event) []string {
		var out []string
		for _, m := range tr.Translate(ev) {
			out = append(out, m.Topic)
		}
		return out
	}

	assert.Equal(t, []string{"by/source", "by/name"}, topics(Event{Source: "a", Name: "ping"}))
	assert.Equal(t, []string{"by/name", "by/both"}, topics(Event{Source: "b", Name: "ping"}))
	assert.Equal(t, []string{"by/pattern"}, topics(Event{Source: "c", Name: "battLevelChanged"}))
	assert.Empty(t, topics(Event{Source: "c", Name: "other"}))
	assert.Equal(t, 4, tr.Len())
}

func TestTranslatorMapperCanDrop(t *testing.T) {
	tr := NewTranslator()
	tr.Handle(func(ev Event) (Message, bool) {
		if ev.Int == nil {
			return Message{}, false
		}
		return Message{Topic: "level", QoS: mqttpub.AtLeastOnce}, true
	})

	assert.Empty(t, tr.Translate(Event{Name: "x"}))

	msgs := tr.Translate(Event{Name: "x", Int: ptr(int32(1))})
	require.Len(t, msgs, 1)
	assert.Equal(t, mqttpub.AtLeastOnce, msgs[0].QoS)
}

func TestDefaultSubscriptionsCoverTranslator(t *testing.T) {
	tr := DefaultTranslator()
	for source, names := range DefaultSubscriptions() {
		for _, name := range names {
			assert.NotEmpty(t, tr.Translate(Event{Source: source, Name: name}), "%s/%s", source, name)
		}
	}
}
