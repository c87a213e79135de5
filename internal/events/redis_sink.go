package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisSink publishes events as JSON on a Redis pub/sub channel.
type RedisSink struct {
	client  redis.UniversalClient
	channel string
}

// NewRedisSink returns a sink for channel. A nil client yields a nil sink.
func NewRedisSink(client redis.UniversalClient, channel string) *RedisSink {
	if client == nil {
		return nil
	}
	return &RedisSink{client: client, channel: channel}
}

// Channel returns the pub/sub channel name.
func (s *RedisSink) Channel() string {
	return s.channel
}

// Send publishes the event.
func (s *RedisSink) Send(ctx context.Context, event Event) error {
	payload, err := Encode(event)
	if err != nil {
		return err
	}
	if err := s.client.Publish(ctx, s.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish %s to %s: %w", event.Type, s.channel, err)
	}
	return nil
}

// Encode renders the wire form of an event.
func Encode(event Event) ([]byte, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("encode event %s: %w", event.ID, err)
	}
	return payload, nil
}
