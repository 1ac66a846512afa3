package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// TopicLogin is an exported constant or variable used by the session engine.
const TopicLogin = "email.login"

// LoginNotice defines a public type used by authsessions APIs.
//
// LoginNotice instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type LoginNotice struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	IP       string `json:"ip"`
}

// Publisher delivers serialized notices to a topic. Implementations must be
// safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) error
}

// NoOpPublisher discards every notice.
type NoOpPublisher struct{}

// Publish describes the publish operation and its observable behavior.
func (NoOpPublisher) Publish(context.Context, string, []byte) error { return nil }

// ChannelPublisher forwards notices to a buffered channel, dropping when the
// buffer is full. Intended for tests and in-process consumers.
type ChannelPublisher struct {
	ch chan PublishedMessage
}

// PublishedMessage defines a public type used by authsessions APIs.
type PublishedMessage struct {
	Topic   string
	Payload []byte
}

// NewChannelPublisher creates a [ChannelPublisher] with the given buffer size.
func NewChannelPublisher(buffer int) *ChannelPublisher {
	if buffer <= 0 {
		buffer = 64
	}
	return &ChannelPublisher{ch: make(chan PublishedMessage, buffer)}
}

// Publish describes the publish operation and its observable behavior.
func (p *ChannelPublisher) Publish(_ context.Context, topic string, payload []byte) error {
	select {
	case p.ch <- PublishedMessage{Topic: topic, Payload: payload}:
	default:
	}
	return nil
}

// Messages returns the receive side of the publisher's buffer.
func (p *ChannelPublisher) Messages() <-chan PublishedMessage { return p.ch }

// RedisPublisher delivers notices over Redis pub/sub.
type RedisPublisher struct {
	redis redis.UniversalClient
}

// NewRedisPublisher creates a [RedisPublisher] backed by the given client.
func NewRedisPublisher(redisClient redis.UniversalClient) *RedisPublisher {
	return &RedisPublisher{redis: redisClient}
}

// Publish describes the publish operation and its observable behavior.
//
// Publish may return an error when the Redis PUBLISH fails; callers on the
// login path treat that as non-fatal.
func (p *RedisPublisher) Publish(ctx context.Context, topic string, payload []byte) error {
	if err := p.redis.Publish(ctx, topic, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// EncodeLoginNotice serializes a [LoginNotice] to its wire form.
func EncodeLoginNotice(n LoginNotice) ([]byte, error) {
	return json.Marshal(n)
}
