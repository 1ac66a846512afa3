//go:build integration
// +build integration

package test

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/joaofns/authsessions/session"
)

func newIntegrationStore(t *testing.T) (*miniredis.Miniredis, *session.Store, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := session.NewStore(rdb, "", 100)

	return mr, store, func() {
		_ = rdb.Close()
		mr.Close()
	}
}

func makeRecord(username, email, token string) *session.Record {
	return &session.Record{
		Username:     username,
		Email:        email,
		RefreshToken: token,
	}
}
