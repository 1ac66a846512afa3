package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheUnavailable is an exported constant or variable used by the session engine.
var ErrCacheUnavailable = errors.New("session cache unavailable")

// ErrRecordCorrupt is returned when a stored session blob cannot be decoded.
var ErrRecordCorrupt = errors.New("session record corrupt")

const defaultScanCount = 100

// RefreshKey returns the logical cache key of the refresh record for token.
func RefreshKey(token string) string {
	return "refresh:" + token
}

// MarkerKey returns the logical cache key of the logged-session marker for an
// email+IP pair.
func MarkerKey(email, ip string) string {
	return "loggedUser:" + email + ":" + ip
}

// Store is a Redis-backed session store that handles refresh-record
// persistence, marker bookkeeping, atomic rotation, and pattern-based bulk
// revocation.
type Store struct {
	redis     redis.UniversalClient
	prefix    string
	scanCount int64
}

// NewStore creates a session [Store] backed by the given Redis client.
// prefix sets the cache namespace prepended to every physical key; it may be
// empty. scanCount tunes the SCAN batch size used during enumeration.
func NewStore(redisClient redis.UniversalClient, prefix string, scanCount int64) *Store {
	if scanCount <= 0 {
		scanCount = defaultScanCount
	}
	return &Store{
		redis:     redisClient,
		prefix:    prefix,
		scanCount: scanCount,
	}
}

func (s *Store) physical(key string) string {
	return s.prefix + key
}

// Set writes value under the logical key with the given TTL.
func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.redis.Set(ctx, s.physical(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}
	return nil
}

// Get reads the value stored under the logical key. Absence is reported as
// redis.Nil; every other failure wraps [ErrCacheUnavailable].
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.redis.Get(ctx, s.physical(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}
	return data, nil
}

// Remove deletes the logical key. Removing an absent key is not an error.
func (s *Store) Remove(ctx context.Context, key string) error {
	if err := s.redis.Del(ctx, s.physical(key)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}
	return nil
}

// ForEachKey lazily enumerates logical keys matching pattern and invokes fn
// for each one. The namespace prefix is applied before the SCAN and stripped
// from every returned key, so fn always sees logical keys. The scan is
// restartable and tolerates zero matches; fn returning an error stops the
// enumeration.
func (s *Store) ForEachKey(ctx context.Context, pattern string, fn func(key string) error) error {
	var cursor uint64
	match := s.physical(pattern)

	for {
		keys, next, err := s.redis.Scan(ctx, cursor, match, s.scanCount).Result()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
		}

		for _, key := range keys {
			if err := fn(strings.TrimPrefix(key, s.prefix)); err != nil {
				return err
			}
		}

		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// GetSession fetches and decodes the refresh record stored for refreshToken.
// Absence is reported as redis.Nil; an undecodable blob returns
// [ErrRecordCorrupt].
func (s *Store) GetSession(ctx context.Context, refreshToken string) (*Record, error) {
	data, err := s.Get(ctx, RefreshKey(refreshToken))
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// Rotate installs rec as the current session for its email+IP pair: the prior
// refresh record (if any) is deleted, the new refresh record is written, and
// the logged-session marker is repointed at the new token. All three commands
// run in one pipeline and both writes share the same TTL so the entries
// expire together.
func (s *Store) Rotate(ctx context.Context, priorToken string, rec *Record, ip string, ttl time.Duration) error {
	data, err := Encode(rec)
	if err != nil {
		return err
	}

	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if priorToken != "" && priorToken != rec.RefreshToken {
			pipe.Del(ctx, s.physical(RefreshKey(priorToken)))
		}
		pipe.Set(ctx, s.physical(RefreshKey(rec.RefreshToken)), data, ttl)
		pipe.Set(ctx, s.physical(MarkerKey(rec.Email, ip)), rec.RefreshToken, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}

	return nil
}

// DeleteSession removes the refresh record for refreshToken and the marker
// for its email+IP pair. Deleting already-absent entries is not an error.
func (s *Store) DeleteSession(ctx context.Context, refreshToken, email, ip string) error {
	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.physical(RefreshKey(refreshToken)))
		pipe.Del(ctx, s.physical(MarkerKey(email, ip)))
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}
	return nil
}

// MassRevoke removes every session of the email+IP pair. It enumerates
// markers matching loggedUser:{email}:{ip}*, and for each one deletes the
// backing refresh record first and the marker second: a crash mid-loop can
// leave a stale marker, which only weakens a later scan, but never an
// orphaned refresh record that still grants access.
func (s *Store) MassRevoke(ctx context.Context, email, ip string) error {
	return s.ForEachKey(ctx, MarkerKey(email, ip)+"*", func(key string) error {
		token, err := s.Get(ctx, key)
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}

		if len(token) > 0 {
			if err := s.Remove(ctx, RefreshKey(string(token))); err != nil {
				return err
			}
		}

		return s.Remove(ctx, key)
	})
}

// Ping returns a point-in-time Redis availability check and latency.
func (s *Store) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return time.Since(start), fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}
	return time.Since(start), nil
}
