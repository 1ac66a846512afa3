//go:build integration
// +build integration

package test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// After any sequence of rotations, the marker must point at a token whose
// refresh record exists, and the superseded record must be gone.
func TestRotationKeepsMarkerAndRecordConsistent(t *testing.T) {
	mr, store, cleanup := newIntegrationStore(t)
	defer cleanup()

	ctx := context.Background()
	const ip = "1.2.3.4"

	token := "token-0"
	if err := store.Rotate(ctx, "", makeRecord("alice", "alice@example.com", token), ip, time.Hour); err != nil {
		t.Fatalf("initial rotate failed: %v", err)
	}

	for i := 1; i <= 10; i++ {
		next := makeRecord("alice", "alice@example.com", tokenName(i))
		if err := store.Rotate(ctx, token, next, ip, time.Hour); err != nil {
			t.Fatalf("rotate %d failed: %v", i, err)
		}

		if mr.Exists("refresh:" + token) {
			t.Fatalf("rotation %d left the prior record behind", i)
		}
		token = next.RefreshToken

		marker, err := mr.Get("loggedUser:alice@example.com:" + ip)
		if err != nil {
			t.Fatalf("marker missing after rotation %d: %v", i, err)
		}
		if marker != token {
			t.Fatalf("marker %q does not match current token %q", marker, token)
		}

		rec, err := store.GetSession(ctx, token)
		if err != nil {
			t.Fatalf("record missing after rotation %d: %v", i, err)
		}
		if rec.RefreshToken != token {
			t.Fatalf("record token %q, want %q", rec.RefreshToken, token)
		}
	}
}

func TestMassRevokeLeavesNoOrphanedRecords(t *testing.T) {
	mr, store, cleanup := newIntegrationStore(t)
	defer cleanup()

	ctx := context.Background()

	for i, ip := range []string{"1.2.3.4", "5.6.7.8", "9.9.9.9"} {
		if err := store.Rotate(ctx, "", makeRecord("alice", "alice@example.com", tokenName(i)), ip, time.Hour); err != nil {
			t.Fatalf("seed rotate failed: %v", err)
		}
	}
	if err := store.Rotate(ctx, "", makeRecord("bob", "bob@example.com", "bob-token"), "1.2.3.4", time.Hour); err != nil {
		t.Fatalf("seed bob failed: %v", err)
	}

	if err := store.MassRevoke(ctx, "alice@example.com", ""); err != nil {
		t.Fatalf("MassRevoke failed: %v", err)
	}

	for _, key := range mr.Keys() {
		if key == "refresh:bob-token" || key == "loggedUser:bob@example.com:1.2.3.4" {
			continue
		}
		t.Fatalf("unexpected surviving key %q", key)
	}

	if _, err := store.GetSession(ctx, "bob-token"); err != nil {
		t.Fatalf("bob's record must survive: %v", err)
	}
}

func TestExpiredRecordBehavesAsAbsent(t *testing.T) {
	mr, store, cleanup := newIntegrationStore(t)
	defer cleanup()

	ctx := context.Background()

	if err := store.Rotate(ctx, "", makeRecord("alice", "alice@example.com", "short-lived"), "1.2.3.4", time.Minute); err != nil {
		t.Fatalf("rotate failed: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	if _, err := store.GetSession(ctx, "short-lived"); !errors.Is(err, redis.Nil) {
		t.Fatalf("expected redis.Nil for expired record, got %v", err)
	}
}

func tokenName(i int) string {
	return "token-" + string(rune('a'+i))
}
