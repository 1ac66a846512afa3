package password

import "testing"

// FuzzVerify exercises the hash-encoding parser with arbitrary inputs.
// Goal: no panics, fail-closed behavior for everything malformed.
func FuzzVerify(f *testing.F) {
	hasher, err := NewHasher(secureConfig())
	if err != nil {
		f.Fatalf("NewHasher error: %v", err)
	}

	valid, err := hasher.Hash("seed-password")
	if err != nil {
		f.Fatalf("Hash error: %v", err)
	}

	f.Add(valid)
	f.Add("")
	f.Add(".")
	f.Add("..")
	f.Add("100000.c2FsdA==.a2V5")
	f.Add("99999999999999999999.c2FsdA==.a2V5")
	if len(valid) > 10 {
		f.Add(valid[:10])
	}

	f.Fuzz(func(t *testing.T, encoded string) {
		// Must not panic; a false result is always acceptable.
		_ = hasher.Verify("seed-password", encoded)
		_ = hasher.NeedsUpgrade(encoded)
	})
}
