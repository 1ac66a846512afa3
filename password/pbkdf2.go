package password

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	minIterations = 100_000
	minSaltLength = 16
	minKeyLength  = 16
	encodingParts = 3
)

// Config defines a public type used by authsessions APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Iterations int
	SaltLength int
	KeyLength  int
}

// Hasher defines a public type used by authsessions APIs.
//
// Hasher instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Hasher struct {
	config Config
}

type parsedEncoding struct {
	iterations int
	salt       []byte
	key        []byte
}

// NewHasher describes the newhasher operation and its observable behavior.
//
// NewHasher may return an error when input validation fails.
// NewHasher does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewHasher(cfg Config) (*Hasher, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return &Hasher{config: cfg}, nil
}

// Hash derives a key from password with a freshly random salt and returns the
// dot-delimited encoding "<iterations>.<base64(salt)>.<base64(key)>". Two
// calls with the same password never produce the same encoding.
func (h *Hasher) Hash(password string) (string, error) {
	salt := make([]byte, h.config.SaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", err
	}

	key := pbkdf2.Key([]byte(password), salt, h.config.Iterations, h.config.KeyLength, sha256.New)

	return fmt.Sprintf(
		"%d.%s.%s",
		h.config.Iterations,
		base64.StdEncoding.EncodeToString(salt),
		base64.StdEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether password matches encodedHash. Malformed encodings
// (wrong segment count, non-numeric iteration count, invalid base64) fail
// closed to false; Verify never returns an error or panics. The comparison
// of the derived key is constant-time.
func (h *Hasher) Verify(password, encodedHash string) bool {
	parsed, err := parseEncoding(encodedHash)
	if err != nil {
		return false
	}

	computed := pbkdf2.Key([]byte(password), parsed.salt, parsed.iterations, len(parsed.key), sha256.New)

	return subtle.ConstantTimeCompare(computed, parsed.key) == 1
}

// NeedsUpgrade reports whether encodedHash was produced with weaker
// parameters than the current config, so the caller can re-hash on the next
// successful login. Malformed encodings report false; they can never verify,
// so there is nothing to upgrade.
func (h *Hasher) NeedsUpgrade(encodedHash string) bool {
	parsed, err := parseEncoding(encodedHash)
	if err != nil {
		return false
	}

	if parsed.iterations < h.config.Iterations {
		return true
	}
	if len(parsed.key) != h.config.KeyLength {
		return true
	}

	return false
}

func parseEncoding(encodedHash string) (*parsedEncoding, error) {
	parts := strings.Split(encodedHash, ".")
	if len(parts) != encodingParts {
		return nil, errors.New("invalid encoding format")
	}

	iterations, err := strconv.Atoi(parts[0])
	if err != nil || iterations < 1 {
		return nil, errors.New("invalid iteration count")
	}

	salt, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, errors.New("invalid salt encoding")
	}
	if len(salt) == 0 {
		return nil, errors.New("invalid salt length")
	}

	key, err := base64.StdEncoding.DecodeString(parts[2])
	if err != nil {
		return nil, errors.New("invalid key encoding")
	}
	if len(key) == 0 {
		return nil, errors.New("invalid key length")
	}

	return &parsedEncoding{
		iterations: iterations,
		salt:       salt,
		key:        key,
	}, nil
}

func validateConfig(cfg Config) error {
	if cfg.Iterations < minIterations {
		return errors.New("password iterations must be >= 100000")
	}
	if cfg.SaltLength < minSaltLength {
		return errors.New("password salt length must be >= 16")
	}
	if cfg.KeyLength < minKeyLength {
		return errors.New("password key length must be >= 16")
	}

	return nil
}
