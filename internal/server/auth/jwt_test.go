package auth

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophtodo/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

var issueTime = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestCodec(t *testing.T, secret string, ttl time.Duration) *TokenCodec {
	t.Helper()
	c, err := NewTokenCodec([]byte(secret), ttl)
	if err != nil {
		t.Fatalf("NewTokenCodec error: %v", err)
	}
	c.now = func() time.Time { return issueTime }
	return c
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	t.Parallel()

	c := newTestCodec(t, "super-secret", 0)
	tok, err := c.Encode(42, "alice")
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}

	claims, err := c.Decode(tok)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if claims.ID != 42 || claims.Username != "alice" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if want := issueTime.Add(DefaultTokenTTL); !claims.ExpiresAt().Equal(want) {
		t.Fatalf("expire = %s, want %s", claims.ExpiresAt(), want)
	}
}

func TestEncodeTTL_UsesExplicitTTL(t *testing.T) {
	t.Parallel()

	c := newTestCodec(t, "k", 0)
	tok, err := c.EncodeTTL(1, "bob", 5*time.Minute)
	if err != nil {
		t.Fatalf("EncodeTTL error: %v", err)
	}
	claims, err := c.Decode(tok)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if want := issueTime.Add(5 * time.Minute); !claims.ExpiresAt().Equal(want) {
		t.Fatalf("expire = %s, want %s", claims.ExpiresAt(), want)
	}
}

func TestNewTokenCodec_Defaults(t *testing.T) {
	t.Parallel()

	if _, err := NewTokenCodec(nil, time.Minute); err == nil {
		t.Fatal("expected error for empty secret")
	}
	c, err := NewTokenCodec([]byte("k"), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.TTL() != 30*time.Minute {
		t.Fatalf("default ttl = %s, want 30m", c.TTL())
	}
}

func TestEncode_PayloadShape(t *testing.T) {
	t.Parallel()

	c := newTestCodec(t, "k", 0)
	tok, err := c.Encode(7, "carol")
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}

	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		t.Fatalf("want 3 segments, got %d", len(parts))
	}

	header, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		t.Fatalf("header decode: %v", err)
	}
	if !strings.Contains(string(header), `"alg":"HS256"`) {
		t.Fatalf("header is not HS256: %s", header)
	}

	raw, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		t.Fatalf("payload decode: %v", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("payload json: %v", err)
	}
	if len(payload) != 3 {
		t.Fatalf("payload must have exactly id, username, expire: %v", payload)
	}
	if payload["id"] != float64(7) || payload["username"] != "carol" {
		t.Fatalf("unexpected payload: %v", payload)
	}
	if payload["expire"] != "2024-03-10T12:30:00Z" {
		t.Fatalf("unexpected expire: %v", payload["expire"])
	}
}

func TestDecode_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := newTestCodec(t, "secret-a", 0).Encode(1, "alice")
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	_, err = newTestCodec(t, "secret-b", 0).Decode(tok)
	if !errors.Is(err, common.ErrInvalidSignature) {
		t.Fatalf("want ErrInvalidSignature, got %v", err)
	}
	if !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("signature errors must also match ErrInvalidToken, got %v", err)
	}
}

func TestDecode_TamperedSignature(t *testing.T) {
	t.Parallel()

	c := newTestCodec(t, "k", 0)
	tok, _ := c.Encode(1, "alice")

	i := strings.LastIndex(tok, ".") + 3
	flipped := byte('A')
	if tok[i] == 'A' {
		flipped = 'B'
	}
	tampered := tok[:i] + string(flipped) + tok[i+1:]

	claims, err := c.Decode(tampered)
	if claims != nil {
		t.Fatalf("tampered token must not yield claims: %+v", claims)
	}
	if !errors.Is(err, common.ErrInvalidSignature) && !errors.Is(err, common.ErrMalformedToken) {
		t.Fatalf("want signature/malformed error, got %v", err)
	}
}

func TestDecode_TamperedPayload(t *testing.T) {
	t.Parallel()

	c := newTestCodec(t, "k", 0)
	tok, _ := c.Encode(1, "alice")
	parts := strings.Split(tok, ".")

	forged := base64.RawURLEncoding.EncodeToString([]byte(`{"id":2,"username":"mallory","expire":"2099-01-01T00:00:00Z"}`))
	_, err := c.Decode(parts[0] + "." + forged + "." + parts[2])
	if !errors.Is(err, common.ErrInvalidSignature) {
		t.Fatalf("want ErrInvalidSignature, got %v", err)
	}
}

func TestDecode_Malformed(t *testing.T) {
	t.Parallel()

	c := newTestCodec(t, "k", 0)
	sign := func(claims jwt.Claims) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("k"))
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		return s
	}

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-jwt"},
		{"two segments", "a.b"},
		{"missing expire", sign(jwt.MapClaims{"id": 1, "username": "alice"})},
		{"bad expire", sign(jwt.MapClaims{"id": 1, "username": "alice", "expire": "tomorrow"})},
		{"missing id", sign(jwt.MapClaims{"username": "alice", "expire": "2099-01-01T00:00:00Z"})},
		{"string id", sign(jwt.MapClaims{"id": "1", "username": "alice", "expire": "2099-01-01T00:00:00Z"})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Decode(tt.token)
			if !errors.Is(err, common.ErrMalformedToken) {
				t.Fatalf("want ErrMalformedToken, got %v", err)
			}
		})
	}
}

func TestDecode_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	c := newTestCodec(t, "k", 0)
	claims := jwt.MapClaims{"id": 1, "username": "alice", "expire": "2099-01-01T00:00:00Z"}

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("k"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}

	for name, tok := range map[string]string{"HS512": hs512, "none": none} {
		if _, err := c.Decode(tok); !errors.Is(err, common.ErrInvalidSignature) {
			t.Fatalf("%s: want ErrInvalidSignature, got %v", name, err)
		}
	}
}

func TestDecode_AcceptsNaiveISOExpire(t *testing.T) {
	t.Parallel()

	c := newTestCodec(t, "k", 0)
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id": 3, "username": "dave", "expire": "2024-03-10T12:30:00.000001",
	}).SignedString([]byte("k"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	claims, err := c.Decode(tok)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	want := time.Date(2024, 3, 10, 12, 30, 0, 1000, time.UTC)
	if !claims.ExpiresAt().Equal(want) {
		t.Fatalf("expire = %s, want %s", claims.ExpiresAt(), want)
	}
}

func TestDecode_DoesNotEnforceExpiry(t *testing.T) {
	t.Parallel()

	c := newTestCodec(t, "k", time.Minute)
	tok, _ := c.Encode(5, "erin")

	c.now = func() time.Time { return issueTime.Add(time.Hour) }

	claims, err := c.Decode(tok)
	if err != nil {
		t.Fatalf("expired token must still decode, got %v", err)
	}
	if !c.IsExpired(claims) {
		t.Fatal("token should be reported expired")
	}
}

func TestIsExpired_Boundary(t *testing.T) {
	t.Parallel()

	c := newTestCodec(t, "k", 0)
	claims := &Claims{ID: 1, Username: "alice"}
	claims.Expire.Time = issueTime

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"one second before", issueTime.Add(-time.Second), false},
		{"exactly at expiry", issueTime, false},
		{"one second after", issueTime.Add(time.Second), true},
	}
	for _, tt := range tests {
		c.now = func() time.Time { return tt.at }
		if got := c.IsExpired(claims); got != tt.want {
			t.Fatalf("%s: IsExpired = %v, want %v", tt.name, got, tt.want)
		}
	}
}
