// Filmatlas - Film Photography Catalogue Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmatlas

// Package eventbus provides the in-process publish/subscribe fabric
// connecting the photo store, the renderer hub and the refresh service.
// It wraps Watermill's GoChannel Pub/Sub so subscribers are decoupled
// from publishers without an external broker.
package eventbus

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// Topics carried on the bus.
const (
	// TopicPhotosUpdated announces that the photo store replaced its
	// set. Payload: none; subscribers re-read the store.
	TopicPhotosUpdated = "photos.updated"

	// TopicViewportChanged carries a renderer-reported viewport change.
	// Payload: JSON-encoded models.Viewport.
	TopicViewportChanged = "viewport.changed"
)

// Bus is a thin wrapper over a GoChannel Pub/Sub.
type Bus struct {
	pubsub *gochannel.GoChannel
}

// New creates a bus. A nil logger falls back to a no-op adapter.
func New(logger watermill.LoggerAdapter) *Bus {
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	pubsub := gochannel.NewGoChannel(
		gochannel.Config{
			OutputChannelBuffer: 64,
			// Slow subscribers must not stall publishers; the photo set
			// is re-read from the store on receipt anyway.
			BlockPublishUntilSubscriberAck: false,
		},
		logger,
	)
	return &Bus{pubsub: pubsub}
}

// Publish emits payload on topic. An empty payload is allowed for
// notification-only topics.
func (b *Bus) Publish(topic string, payload []byte) error {
	msg := message.NewMessage(uuid.NewString(), payload)
	if err := b.pubsub.Publish(topic, msg); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// Subscribe returns a channel of messages for topic. The subscription
// ends when ctx is cancelled. Consumers must Ack every message.
func (b *Bus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	ch, err := b.pubsub.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", topic, err)
	}
	return ch, nil
}

// Close shuts the Pub/Sub down, closing all subscriber channels.
func (b *Bus) Close() error {
	return b.pubsub.Close()
}
