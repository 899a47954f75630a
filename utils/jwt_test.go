package utils

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func newTestJWT(t *testing.T, secret string) *JWT {
	t.Helper()
	j, err := NewJWT(secret, time.Hour)
	if err != nil {
		t.Fatalf("NewJWT: %v", err)
	}
	return j
}

func TestNewJWT_RequiresSecret(t *testing.T) {
	if _, err := NewJWT("", time.Hour); err == nil {
		t.Fatal("expected error for empty secret")
	}
}

func TestNewJWT_DefaultTTL(t *testing.T) {
	j, err := NewJWT("s", 0)
	if err != nil {
		t.Fatalf("NewJWT: %v", err)
	}
	if j.ttl != DefaultTokenTTL {
		t.Errorf("ttl = %v, want %v", j.ttl, DefaultTokenTTL)
	}
}

func TestGenerateAndValidateJwt(t *testing.T) {
	j := newTestJWT(t, "test-secret")
	token, err := j.GenerateJwt("64b7f0c2a1b2c3d4e5f60718")
	if err != nil {
		t.Fatalf("GenerateJwt: %v", err)
	}
	userID, err := j.ValidateJwt(token)
	if err != nil {
		t.Fatalf("ValidateJwt: %v", err)
	}
	if userID != "64b7f0c2a1b2c3d4e5f60718" {
		t.Errorf("userID = %q", userID)
	}
}

func TestValidateJwt_Expired(t *testing.T) {
	j := newTestJWT(t, "test-secret")
	j.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := j.GenerateJwt("u1")
	if err != nil {
		t.Fatalf("GenerateJwt: %v", err)
	}
	j.now = time.Now
	if _, err := j.ValidateJwt(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestValidateJwt_WrongSecret(t *testing.T) {
	token, err := newTestJWT(t, "correct-secret").GenerateJwt("u1")
	if err != nil {
		t.Fatalf("GenerateJwt: %v", err)
	}
	if _, err := newTestJWT(t, "wrong-secret").ValidateJwt(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestValidateJwt_Malformed(t *testing.T) {
	j := newTestJWT(t, "test-secret")
	for _, token := range []string{"", "abc", "a.b.c"} {
		if _, err := j.ValidateJwt(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("ValidateJwt(%q) = %v, want ErrInvalidToken", token, err)
		}
	}
}

func TestValidateJwt_RejectsNoneAlgorithm(t *testing.T) {
	claims := Claims{
		UserID:           "u1",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := newTestJWT(t, "test-secret").ValidateJwt(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestValidateJwt_RequiresExpiry(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: "u1"}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := newTestJWT(t, "test-secret").ValidateJwt(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestResponseWithError(t *testing.T) {
	rr := httptest.NewRecorder()
	ResponseWithError(rr, 404, "Task not found")
	if rr.Code != 404 {
		t.Errorf("code = %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}
	if got := rr.Body.String(); got != "{\"message\":\"Task not found\"}\n" {
		t.Errorf("body = %q", got)
	}
}
