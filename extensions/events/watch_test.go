package events

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatch(t *testing.T) {
	input := "battLevelChanged 80\n\ngoingToScreenSaver\noutOfScreenSaver\n"

	var got []Event
	err := Watch(context.Background(), SourcePowerd, strings.NewReader(input), func(ev Event) {
		got = append(got, ev)
	})
	require.NoError(t, err)

	require.Len(t, got, 3)
	assert.Equal(t, EventBattLevelChanged, got[0].Name)
	require.NotNil(t, got[0].Int)
	assert.Equal(t, int32(80), *got[0].Int)
	assert.Equal(t, SourcePowerd, got[1].Source)
	assert.Equal(t, EventOutOfScreenSaver, got[2].Name)
}

func TestWatchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := Watch(ctx, "src", strings.NewReader("a\nb\n"), func(Event) { called = true })
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestWatchIntoBridge(t *testing.T) {
	pub := &mockPublisher{}
	b := NewBridge(pub, nil)

	err := Watch(context.Background(), SourceWifid, strings.NewReader("cmConnected\n"), func(ev Event) {
		b.Handle(ev)
	})
	require.NoError(t, err)

	msgs := pub.received()
	require.Len(t, msgs, 1)
	assert.Equal(t, TopicConnected, msgs[0].topic)
}

func TestCommand(t *testing.T) {
	cmd := Command(context.Background(), SourcePowerd, EventGoingToScreenSaver, EventBattLevelChanged)
	assert.Equal(t, []string{WatchCommand, "-m", SourcePowerd, "goingToScreenSaver,battLevelChanged"}, cmd.Args)
}
