package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newSessionStoreTest(t *testing.T, prefix string) (*Store, *miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		rdb.Close()
		mr.Close()
	})
	return NewStore(rdb, prefix, 0), mr, rdb
}

func testRecord(token string) *Record {
	return &Record{
		Username:     "testuser",
		Email:        "test@test.com",
		RefreshToken: token,
	}
}

func TestRotateWritesRecordAndMarkerWithSharedTTL(t *testing.T) {
	store, mr, rdb := newSessionStoreTest(t, "")
	ctx := context.Background()
	rec := testRecord("token-1")

	if err := store.Rotate(ctx, "", rec, "1.2.3.4", 8*time.Hour); err != nil {
		t.Fatalf("rotate: %v", err)
	}

	got, err := store.GetSession(ctx, "token-1")
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if *got != *rec {
		t.Fatalf("unexpected record: %+v", got)
	}

	marker, err := rdb.Get(ctx, MarkerKey("test@test.com", "1.2.3.4")).Result()
	if err != nil {
		t.Fatalf("get marker: %v", err)
	}
	if marker != "token-1" {
		t.Fatalf("marker holds %q, want token-1", marker)
	}

	recTTL := mr.TTL(RefreshKey("token-1"))
	markerTTL := mr.TTL(MarkerKey("test@test.com", "1.2.3.4"))
	if recTTL != 8*time.Hour || markerTTL != 8*time.Hour {
		t.Fatalf("expected matching 8h TTLs, got record=%v marker=%v", recTTL, markerTTL)
	}
}

func TestRotateDeletesPriorRefreshRecord(t *testing.T) {
	store, _, _ := newSessionStoreTest(t, "")
	ctx := context.Background()

	if err := store.Rotate(ctx, "", testRecord("old-token"), "1.2.3.4", time.Hour); err != nil {
		t.Fatalf("first rotate: %v", err)
	}
	if err := store.Rotate(ctx, "old-token", testRecord("new-token"), "1.2.3.4", time.Hour); err != nil {
		t.Fatalf("second rotate: %v", err)
	}

	if _, err := store.GetSession(ctx, "old-token"); !errors.Is(err, redis.Nil) {
		t.Fatalf("expected old refresh record to be gone, got %v", err)
	}
	if _, err := store.GetSession(ctx, "new-token"); err != nil {
		t.Fatalf("expected new refresh record to exist: %v", err)
	}

	marker, err := store.Get(ctx, MarkerKey("test@test.com", "1.2.3.4"))
	if err != nil {
		t.Fatalf("get marker: %v", err)
	}
	if string(marker) != "new-token" {
		t.Fatalf("marker holds %q, want new-token", marker)
	}
}

func TestGetSessionCorruptBlobFailsClosed(t *testing.T) {
	store, _, rdb := newSessionStoreTest(t, "")
	ctx := context.Background()

	if err := rdb.Set(ctx, RefreshKey("bad"), "{not json", time.Hour).Err(); err != nil {
		t.Fatalf("seed corrupt blob: %v", err)
	}
	if _, err := store.GetSession(ctx, "bad"); !errors.Is(err, ErrRecordCorrupt) {
		t.Fatalf("expected corrupt sentinel, got %v", err)
	}

	if err := rdb.Set(ctx, RefreshKey("empty"), `{"username":"u","email":"e"}`, time.Hour).Err(); err != nil {
		t.Fatalf("seed tokenless blob: %v", err)
	}
	if _, err := store.GetSession(ctx, "empty"); !errors.Is(err, ErrRecordCorrupt) {
		t.Fatalf("expected corrupt sentinel for tokenless blob, got %v", err)
	}
}

func TestDeleteSessionIdempotent(t *testing.T) {
	store, _, _ := newSessionStoreTest(t, "")
	ctx := context.Background()

	if err := store.Rotate(ctx, "", testRecord("token-1"), "1.2.3.4", time.Hour); err != nil {
		t.Fatalf("rotate: %v", err)
	}

	if err := store.DeleteSession(ctx, "token-1", "test@test.com", "1.2.3.4"); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := store.DeleteSession(ctx, "token-1", "test@test.com", "1.2.3.4"); err != nil {
		t.Fatalf("second delete: %v", err)
	}

	if _, err := store.GetSession(ctx, "token-1"); !errors.Is(err, redis.Nil) {
		t.Fatalf("expected refresh record gone, got %v", err)
	}
	if _, err := store.Get(ctx, MarkerKey("test@test.com", "1.2.3.4")); !errors.Is(err, redis.Nil) {
		t.Fatalf("expected marker gone, got %v", err)
	}
}

func TestMassRevokeRemovesRefreshRecordsAndMarkers(t *testing.T) {
	store, _, rdb := newSessionStoreTest(t, "")
	ctx := context.Background()

	markerKey := MarkerKey("test@test.com", "1.2.3.4") + ":session1"
	if err := rdb.Set(ctx, markerKey, "token123", time.Hour).Err(); err != nil {
		t.Fatalf("seed marker: %v", err)
	}
	if err := store.Rotate(ctx, "", testRecord("token123"), "9.9.9.9", time.Hour); err != nil {
		t.Fatalf("seed refresh record: %v", err)
	}

	// A different user's session must survive the revoke.
	other := &Record{Username: "other", Email: "other@test.com", RefreshToken: "other-token"}
	if err := store.Rotate(ctx, "", other, "1.2.3.4", time.Hour); err != nil {
		t.Fatalf("seed other session: %v", err)
	}

	if err := store.MassRevoke(ctx, "test@test.com", "1.2.3.4"); err != nil {
		t.Fatalf("mass revoke: %v", err)
	}

	if _, err := store.GetSession(ctx, "token123"); !errors.Is(err, redis.Nil) {
		t.Fatalf("expected refresh:token123 gone, got %v", err)
	}
	if _, err := store.Get(ctx, markerKey); !errors.Is(err, redis.Nil) {
		t.Fatalf("expected marker gone, got %v", err)
	}
	if _, err := store.GetSession(ctx, "other-token"); err != nil {
		t.Fatalf("expected other user's session to survive: %v", err)
	}
}

func TestMassRevokeNoMatchesIsANoOp(t *testing.T) {
	store, _, _ := newSessionStoreTest(t, "")
	ctx := context.Background()

	if err := store.MassRevoke(ctx, "nobody@test.com", "8.8.8.8"); err != nil {
		t.Fatalf("mass revoke with no matches: %v", err)
	}
}

func TestNamespacePrefixIsStrippedDuringEnumeration(t *testing.T) {
	store, _, rdb := newSessionStoreTest(t, "AuthenticationApp:")
	ctx := context.Background()

	if err := store.Rotate(ctx, "", testRecord("token-1"), "1.2.3.4", time.Hour); err != nil {
		t.Fatalf("rotate: %v", err)
	}

	// Physical keys carry the namespace.
	if err := rdb.Get(ctx, "AuthenticationApp:"+RefreshKey("token-1")).Err(); err != nil {
		t.Fatalf("expected namespaced physical key: %v", err)
	}

	var seen []string
	err := store.ForEachKey(ctx, MarkerKey("test@test.com", "1.2.3.4")+"*", func(key string) error {
		seen = append(seen, key)
		return nil
	})
	if err != nil {
		t.Fatalf("enumerate: %v", err)
	}
	if len(seen) != 1 || seen[0] != MarkerKey("test@test.com", "1.2.3.4") {
		t.Fatalf("expected logical marker key without namespace, got %v", seen)
	}

	// MassRevoke must pair the stripped marker with its refresh record.
	if err := store.MassRevoke(ctx, "test@test.com", "1.2.3.4"); err != nil {
		t.Fatalf("mass revoke: %v", err)
	}
	if _, err := store.GetSession(ctx, "token-1"); !errors.Is(err, redis.Nil) {
		t.Fatalf("expected refresh record gone after revoke, got %v", err)
	}
}

func TestForEachKeyStopsOnCallbackError(t *testing.T) {
	store, _, rdb := newSessionStoreTest(t, "")
	ctx := context.Background()

	for _, key := range []string{"loggedUser:a@test.com:1", "loggedUser:a@test.com:2"} {
		if err := rdb.Set(ctx, key, "x", time.Hour).Err(); err != nil {
			t.Fatalf("seed marker: %v", err)
		}
	}

	boom := errors.New("boom")
	calls := 0
	err := store.ForEachKey(ctx, "loggedUser:a@test.com:*", func(string) error {
		calls++
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected callback error to propagate, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected enumeration to stop after first error, got %d calls", calls)
	}
}
