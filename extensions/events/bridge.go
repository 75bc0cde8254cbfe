package events

import (
	"context"

	"github.com/vitalvas/mqttpub"
)

// Publisher sends one message. *mqttpub.Connection implements it.
type Publisher interface {
	Publish(topic string, payload []byte, retain bool, qos mqttpub.QoS) error
}

// Bridge publishes the messages a Translator produces for incoming events.
type Bridge struct {
	publisher  Publisher
	translator *Translator
	logger     mqttpub.Logger
}

// BridgeOption configures a Bridge.
type BridgeOption func(*Bridge)

// WithLogger sets the bridge logger. Default: no-op.
func WithLogger(logger mqttpub.Logger) BridgeOption {
	return func(b *Bridge) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewBridge creates a bridge. A nil translator means DefaultTranslator.
func NewBridge(publisher Publisher, translator *Translator, opts ...BridgeOption) *Bridge {
	if translator == nil {
		translator = DefaultTranslator()
	}

	b := &Bridge{
		publisher:  publisher,
		translator: translator,
		logger:     mqttpub.NewNoOpLogger(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Handle translates ev and publishes the result. Publish failures are logged
// and skipped. Returns the number of messages published.
func (b *Bridge) Handle(ev Event) int {
	msgs := b.translator.Translate(ev)
	if len(msgs) == 0 {
		b.logger.Debug("event ignored", mqttpub.LogFields{"event": ev.String()})
		return 0
	}

	published := 0
	for _, msg := range msgs {
		fields := mqttpub.LogFields{
			"event":               ev.String(),
			mqttpub.LogFieldTopic: msg.Topic,
			mqttpub.LogFieldQoS:   msg.QoS.String(),
		}

		if err := mqttpub.ValidateTopicName(msg.Topic); err != nil {
			fields[mqttpub.LogFieldError] = err.Error()
			b.logger.Error("event mapped to invalid topic", fields)
			continue
		}

		if err := b.publisher.Publish(msg.Topic, msg.Payload, msg.Retain, msg.QoS); err != nil {
			fields[mqttpub.LogFieldError] = err.Error()
			b.logger.Error("event publish failed", fields)
			continue
		}

		published++
		b.logger.Info("event published", fields)
	}
	return published
}

// Run handles events from ch until ch is closed or ctx is done.
func (b *Bridge) Run(ctx context.Context, ch <-chan Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-ch:
			if !ok {
				return nil
			}
			b.Handle(ev)
		}
	}
}
