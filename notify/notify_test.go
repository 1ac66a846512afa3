package notify

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestChannelPublisherDeliversAndDropsWhenFull(t *testing.T) {
	p := NewChannelPublisher(1)
	ctx := context.Background()

	if err := p.Publish(ctx, TopicLogin, []byte("one")); err != nil {
		t.Fatalf("publish: %v", err)
	}
	// Buffer full; must drop without blocking or erroring.
	if err := p.Publish(ctx, TopicLogin, []byte("two")); err != nil {
		t.Fatalf("publish on full buffer: %v", err)
	}

	select {
	case msg := <-p.Messages():
		if msg.Topic != TopicLogin || string(msg.Payload) != "one" {
			t.Fatalf("unexpected message: %+v", msg)
		}
	default:
		t.Fatal("expected one buffered message")
	}

	select {
	case msg := <-p.Messages():
		t.Fatalf("expected second message to be dropped, got %+v", msg)
	default:
	}
}

func TestRedisPublisherDeliversNotice(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	ctx := context.Background()

	sub := rdb.Subscribe(ctx, TopicLogin)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	payload, err := EncodeLoginNotice(LoginNotice{Username: "testuser", Email: "test@test.com", IP: "1.2.3.4"})
	if err != nil {
		t.Fatalf("encode notice: %v", err)
	}

	if err := NewRedisPublisher(rdb).Publish(ctx, TopicLogin, payload); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case msg := <-sub.Channel():
		var notice LoginNotice
		if err := json.Unmarshal([]byte(msg.Payload), &notice); err != nil {
			t.Fatalf("decode notice: %v", err)
		}
		if notice.Email != "test@test.com" || notice.IP != "1.2.3.4" {
			t.Fatalf("unexpected notice: %+v", notice)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for published notice")
	}
}
