package password

import (
	"strings"
	"testing"
)

func secureConfig() Config {
	return Config{
		Iterations: 100_000,
		SaltLength: 16,
		KeyLength:  32,
	}
}

func TestHashAndVerify(t *testing.T) {
	hasher, err := NewHasher(secureConfig())
	if err != nil {
		t.Fatalf("NewHasher error: %v", err)
	}

	hash, err := hasher.Hash("P@ssw0rd-Ascii")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	if !strings.HasPrefix(hash, "100000.") {
		t.Fatalf("unexpected encoding prefix: %s", hash)
	}
	if parts := strings.Split(hash, "."); len(parts) != 3 {
		t.Fatalf("expected 3 dot-delimited segments, got %d", len(parts))
	}

	if !hasher.Verify("P@ssw0rd-Ascii", hash) {
		t.Fatal("expected password verification to succeed")
	}
}

func TestHashSaltIsFresh(t *testing.T) {
	hasher, err := NewHasher(secureConfig())
	if err != nil {
		t.Fatalf("NewHasher error: %v", err)
	}

	first, err := hasher.Hash("same-password")
	if err != nil {
		t.Fatalf("first Hash error: %v", err)
	}
	second, err := hasher.Hash("same-password")
	if err != nil {
		t.Fatalf("second Hash error: %v", err)
	}

	if first == second {
		t.Fatal("two hashes of the same password must differ (random salt)")
	}
	if !hasher.Verify("same-password", first) || !hasher.Verify("same-password", second) {
		t.Fatal("both encodings must still verify")
	}
}

func TestVerifyWrongPassword(t *testing.T) {
	hasher, err := NewHasher(secureConfig())
	if err != nil {
		t.Fatalf("NewHasher error: %v", err)
	}

	hash, err := hasher.Hash("correct-password")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	if hasher.Verify("wrong-password", hash) {
		t.Fatal("expected wrong password verification to fail")
	}
}

func TestVerifyMalformedEncodingFailsClosed(t *testing.T) {
	hasher, err := NewHasher(secureConfig())
	if err != nil {
		t.Fatalf("NewHasher error: %v", err)
	}

	malformed := []string{
		"",
		"a$b",
		"1000invalid$%!",
		"one.two",
		"one.two.three.four",
		"abc.c2FsdA==.a2V5a2V5a2V5a2V5",
		"-5.c2FsdA==.a2V5a2V5a2V5a2V5",
		"100000.!!!.a2V5a2V5a2V5a2V5",
		"100000.c2FsdA==.!!!",
		"100000..a2V5a2V5a2V5a2V5",
		"100000.c2FsdA==.",
	}

	for _, enc := range malformed {
		if hasher.Verify("anything", enc) {
			t.Fatalf("expected Verify to fail closed for %q", enc)
		}
	}
}

func TestNeedsUpgrade(t *testing.T) {
	weak, err := NewHasher(Config{
		Iterations: 100_000,
		SaltLength: 16,
		KeyLength:  32,
	})
	if err != nil {
		t.Fatalf("NewHasher error: %v", err)
	}

	strong, err := NewHasher(Config{
		Iterations: 200_000,
		SaltLength: 16,
		KeyLength:  32,
	})
	if err != nil {
		t.Fatalf("NewHasher error: %v", err)
	}

	hash, err := weak.Hash("upgrade-me")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	if weak.NeedsUpgrade(hash) {
		t.Fatal("hash at current parameters should not need upgrade")
	}
	if !strong.NeedsUpgrade(hash) {
		t.Fatal("hash below current iteration count should need upgrade")
	}
	if strong.NeedsUpgrade("not-an-encoding") {
		t.Fatal("malformed encoding should not report an upgrade")
	}
}

func TestNewHasherRejectsWeakConfig(t *testing.T) {
	cases := []Config{
		{Iterations: 50_000, SaltLength: 16, KeyLength: 32},
		{Iterations: 100_000, SaltLength: 8, KeyLength: 32},
		{Iterations: 100_000, SaltLength: 16, KeyLength: 8},
	}

	for i, cfg := range cases {
		if _, err := NewHasher(cfg); err == nil {
			t.Fatalf("case %d: expected config validation error", i)
		}
	}
}
