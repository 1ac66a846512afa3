package jwt

import (
	"testing"
	"time"

	gjwt "github.com/golang-jwt/jwt/v5"
)

func testSecret() []byte {
	return []byte("0123456789abcdef0123456789abcdef")
}

func TestNewManagerValidation(t *testing.T) {
	if _, err := NewManager(Config{Secret: []byte("short"), AccessTTL: time.Minute}); err == nil {
		t.Fatal("expected short secret to be rejected")
	}
	if _, err := NewManager(Config{Secret: testSecret(), AccessTTL: 0}); err == nil {
		t.Fatal("expected zero TTL to be rejected")
	}
	if _, err := NewManager(Config{Secret: testSecret(), AccessTTL: time.Minute, Leeway: 5 * time.Minute}); err == nil {
		t.Fatal("expected oversized leeway to be rejected")
	}
}

func TestCreateAndParseAccess(t *testing.T) {
	m, err := NewManager(Config{
		Secret:    testSecret(),
		AccessTTL: 8 * time.Hour,
		Issuer:    "authsessions",
		Audience:  "api",
	})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	access, err := m.CreateAccess("jdoe", "jdoe@example.com", "Admin")
	if err != nil {
		t.Fatalf("create access: %v", err)
	}

	claims, err := m.ParseAccess(access)
	if err != nil {
		t.Fatalf("parse access: %v", err)
	}
	if claims.Subject != "jdoe" {
		t.Fatalf("unexpected subject: %q", claims.Subject)
	}
	if claims.Email != "jdoe@example.com" {
		t.Fatalf("unexpected email: %q", claims.Email)
	}
	if claims.Role != "Admin" {
		t.Fatalf("unexpected role: %q", claims.Role)
	}
	if claims.ExpiresAt == nil || claims.IssuedAt == nil {
		t.Fatal("expected exp and iat claims to be set")
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt.Time); got != 8*time.Hour {
		t.Fatalf("unexpected token lifetime: %v", got)
	}
}

func TestParseAccessRejectsWrongAlgorithm(t *testing.T) {
	m, err := NewManager(Config{Secret: testSecret(), AccessTTL: time.Minute})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	claims := AccessClaims{RegisteredClaims: gjwt.RegisteredClaims{
		Subject:   "jdoe",
		ExpiresAt: gjwt.NewNumericDate(time.Now().Add(time.Minute)),
	}}
	tok := gjwt.NewWithClaims(gjwt.SigningMethodHS512, claims)
	token, err := tok.SignedString(testSecret())
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	if _, err := m.ParseAccess(token); err == nil {
		t.Fatal("expected wrong algorithm to be rejected")
	}
}

func TestParseAccessIssuerAudienceAndLeeway(t *testing.T) {
	m, err := NewManager(Config{
		Secret:    testSecret(),
		AccessTTL: time.Minute,
		Issuer:    "authsessions",
		Audience:  "api",
		Leeway:    30 * time.Second,
	})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	sign := func(c AccessClaims) string {
		tok := gjwt.NewWithClaims(gjwt.SigningMethodHS256, c)
		signed, err := tok.SignedString(testSecret())
		if err != nil {
			t.Fatalf("sign token: %v", err)
		}
		return signed
	}

	badIssuer := sign(AccessClaims{RegisteredClaims: gjwt.RegisteredClaims{
		Issuer:    "other",
		Audience:  gjwt.ClaimStrings{"api"},
		ExpiresAt: gjwt.NewNumericDate(time.Now().Add(time.Minute)),
		IssuedAt:  gjwt.NewNumericDate(time.Now()),
	}})
	if _, err := m.ParseAccess(badIssuer); err == nil {
		t.Fatal("expected wrong issuer to fail")
	}

	badAudience := sign(AccessClaims{RegisteredClaims: gjwt.RegisteredClaims{
		Issuer:    "authsessions",
		Audience:  gjwt.ClaimStrings{"other-api"},
		ExpiresAt: gjwt.NewNumericDate(time.Now().Add(time.Minute)),
		IssuedAt:  gjwt.NewNumericDate(time.Now()),
	}})
	if _, err := m.ParseAccess(badAudience); err == nil {
		t.Fatal("expected wrong audience to fail")
	}

	withinLeeway := sign(AccessClaims{RegisteredClaims: gjwt.RegisteredClaims{
		Issuer:    "authsessions",
		Audience:  gjwt.ClaimStrings{"api"},
		ExpiresAt: gjwt.NewNumericDate(time.Now().Add(-15 * time.Second)),
		IssuedAt:  gjwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}})
	if _, err := m.ParseAccess(withinLeeway); err != nil {
		t.Fatalf("expected token within leeway to pass: %v", err)
	}

	expired := sign(AccessClaims{RegisteredClaims: gjwt.RegisteredClaims{
		Issuer:    "authsessions",
		Audience:  gjwt.ClaimStrings{"api"},
		ExpiresAt: gjwt.NewNumericDate(time.Now().Add(-2 * time.Minute)),
		IssuedAt:  gjwt.NewNumericDate(time.Now().Add(-3 * time.Minute)),
	}})
	if _, err := m.ParseAccess(expired); err == nil {
		t.Fatal("expected expired token to fail")
	}
}

func TestValidateNeverSurfacesErrors(t *testing.T) {
	m, err := NewManager(Config{Secret: testSecret(), AccessTTL: time.Minute, Issuer: "authsessions"})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	access, err := m.CreateAccess("jdoe", "jdoe@example.com", "Admin")
	if err != nil {
		t.Fatalf("create access: %v", err)
	}
	if !m.Validate(access) {
		t.Fatal("expected freshly issued token to validate")
	}

	for _, garbage := range []string{"", "not.a.jwt", access + "x", "a.b"} {
		if m.Validate(garbage) {
			t.Fatalf("expected Validate(%q) to be false", garbage)
		}
	}

	other, err := NewManager(Config{Secret: []byte("ffffffffffffffffffffffffffffffff"), AccessTTL: time.Minute})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	if other.Validate(access) {
		t.Fatal("expected token signed with a different secret to fail validation")
	}
}
