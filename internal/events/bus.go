// Package events is the in-process notification channel for composition
// state transitions. Consumers subscribe instead of polling; an event fires
// only when something actually changed.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// TopicComposer carries all composition lifecycle events.
const TopicComposer = "composer_events"

// Composition event types.
const (
	EventProgress = "composition.progress"
	EventComplete = "composition.complete"
	EventError    = "composition.error"
)

// ComposerEvent is the payload published on TopicComposer.
type ComposerEvent struct {
	Type       string                 `json:"type"`
	Data       map[string]interface{} `json:"data,omitempty"`
	OccurredAt time.Time              `json:"occurred_at"`
}

// Bus wraps an in-memory pub/sub. Subscribers each get their own copy of
// every published event.
type Bus struct {
	pubsub *gochannel.GoChannel
}

func NewBus() *Bus {
	return &Bus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: 64,
		}, watermill.NopLogger{}),
	}
}

// Publish emits one composer event. Marshal failures cannot happen for the
// map payloads used here; the error is still propagated for completeness.
func (b *Bus) Publish(eventType string, data map[string]interface{}) error {
	ev := ComposerEvent{
		Type:       eventType,
		Data:       data,
		OccurredAt: time.Now(),
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return b.pubsub.Publish(TopicComposer, message.NewMessage(watermill.NewUUID(), payload))
}

// Subscribe returns the composer event stream for the given context.
func (b *Bus) Subscribe(ctx context.Context) (<-chan *message.Message, error) {
	return b.pubsub.Subscribe(ctx, TopicComposer)
}

// Close shuts the bus down, closing all subscriber channels.
func (b *Bus) Close() error {
	return b.pubsub.Close()
}
