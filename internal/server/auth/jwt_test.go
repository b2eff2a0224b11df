package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/gotodo/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

func TestGenerateAndParse_Success(t *testing.T) {
	t.Parallel()

	secret := []byte("super-secret")
	now := time.Now()

	tok, issued, err := GenerateToken("alice", TokenTypeAccess, secret, now, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	claims, err := ParseToken(tok, secret, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("ParseToken error: %v", err)
	}
	if claims.Subject != "alice" {
		t.Fatalf("subject mismatch: got %q", claims.Subject)
	}
	if claims.Type != TokenTypeAccess {
		t.Fatalf("type mismatch: got %q", claims.Type)
	}
	if claims.ID == "" || claims.ID != issued.ID {
		t.Fatalf("jti mismatch: got %q want %q", claims.ID, issued.ID)
	}
	if !claims.ExpiresAt.Time.Equal(issued.ExpiresAt.Time) {
		t.Fatalf("exp mismatch")
	}
}

func TestGenerateToken_FreshJTI(t *testing.T) {
	t.Parallel()

	now := time.Now()
	_, a, _ := GenerateToken("alice", TokenTypeAccess, []byte("k"), now, time.Hour)
	_, b, _ := GenerateToken("alice", TokenTypeAccess, []byte("k"), now, time.Hour)
	if a.ID == b.ID {
		t.Fatalf("expected distinct jti, both %q", a.ID)
	}
}

func TestParseToken_Expired(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	now := time.Now()

	tok, _, err := GenerateToken("u1", TokenTypeAccess, secret, now, time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	_, err = ParseToken(tok, secret, now.Add(2*time.Minute))
	if !errors.Is(err, common.ErrTokenExpired) {
		t.Fatalf("expected common.ErrTokenExpired, got %v", err)
	}
	if !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("expired token must be unauthorized, got %v", err)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	t.Parallel()

	now := time.Now()
	tok, _, err := GenerateToken("u2", TokenTypeRefresh, []byte("right-secret"), now, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	_, err = ParseToken(tok, []byte("wrong-secret"), now)
	if !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParseToken_MalformedString(t *testing.T) {
	t.Parallel()

	_, err := ParseToken("not.a.jwt", []byte("k"), time.Now())
	if !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParseToken_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "j",
			Subject:   "u",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
		Type: TokenTypeAccess,
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}

	if _, err := ParseToken(tok, []byte("k"), now); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParseToken_MissingClaims(t *testing.T) {
	t.Parallel()

	now := time.Now()
	secret := []byte("k")

	noExp, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{ID: "j", Subject: "u"},
	}).SignedString(secret)
	if _, err := ParseToken(noExp, secret, now); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("missing exp: expected ErrInvalidToken, got %v", err)
	}

	noJTI, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u", ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))},
	}).SignedString(secret)
	if _, err := ParseToken(noJTI, secret, now); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("missing jti: expected ErrInvalidToken, got %v", err)
	}
}
