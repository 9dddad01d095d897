package service

import (
	"errors"
	"testing"
	"time"

	"doc-chat/internal/domain"
)

func testUser() domain.User {
	return domain.User{
		ID:           "user-1",
		Email:        "ana@example.com",
		DisplayName:  "Ana",
		AuthProvider: "google",
	}
}

func TestGeneratePairAndParseAccessToken(t *testing.T) {
	svc := NewJWTService("secret", 15*time.Minute, time.Hour)

	pair, err := svc.GeneratePair(testUser())
	if err != nil {
		t.Fatalf("GeneratePair returned error: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("expected both tokens, got %+v", pair)
	}
	if pair.ExpiresIn != int64((15 * time.Minute).Seconds()) {
		t.Fatalf("unexpected expires_in %d", pair.ExpiresIn)
	}

	claims, err := svc.ParseAccessToken(pair.AccessToken)
	if err != nil {
		t.Fatalf("ParseAccessToken returned error: %v", err)
	}
	if claims.UserID != "user-1" || claims.Email != "ana@example.com" {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if claims.TokenType != "access" {
		t.Fatalf("expected access token type, got %q", claims.TokenType)
	}
}

func TestParseAccessTokenRejectsRefreshToken(t *testing.T) {
	svc := NewJWTService("secret", 15*time.Minute, time.Hour)
	pair, err := svc.GeneratePair(testUser())
	if err != nil {
		t.Fatalf("GeneratePair returned error: %v", err)
	}

	if _, err := svc.ParseAccessToken(pair.RefreshToken); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected ErrJWTInvalid for refresh token, got %v", err)
	}
}

func TestParseAccessTokenRejectsWrongSecret(t *testing.T) {
	issuer := NewJWTService("secret-a", 15*time.Minute, time.Hour)
	verifier := NewJWTService("secret-b", 15*time.Minute, time.Hour)

	pair, err := issuer.GeneratePair(testUser())
	if err != nil {
		t.Fatalf("GeneratePair returned error: %v", err)
	}
	if _, err := verifier.ParseAccessToken(pair.AccessToken); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected ErrJWTInvalid for wrong secret, got %v", err)
	}
}

func TestParseAccessTokenRejectsExpired(t *testing.T) {
	svc := NewJWTService("secret", time.Minute, time.Hour)
	user := testUser()

	signed, err := svc.signToken(user, time.Now().UTC().Add(-2*time.Hour), time.Minute, "access")
	if err != nil {
		t.Fatalf("signToken returned error: %v", err)
	}
	if _, err := svc.ParseAccessToken(signed); !errors.Is(err, ErrJWTExpired) {
		t.Fatalf("expected ErrJWTExpired, got %v", err)
	}
}

func TestRefreshPairRotatesToken(t *testing.T) {
	svc := NewJWTService("secret", 15*time.Minute, time.Hour)
	pair, err := svc.GeneratePair(testUser())
	if err != nil {
		t.Fatalf("GeneratePair returned error: %v", err)
	}

	fresh, err := svc.RefreshPair(pair.RefreshToken)
	if err != nil {
		t.Fatalf("RefreshPair returned error: %v", err)
	}
	if fresh.AccessToken == "" || fresh.RefreshToken == "" {
		t.Fatalf("expected fresh pair, got %+v", fresh)
	}

	// El refresh usado quedó revocado.
	if _, err := svc.RefreshPair(pair.RefreshToken); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected reused refresh token rejected, got %v", err)
	}

	// El nuevo sigue vigente.
	if _, err := svc.RefreshPair(fresh.RefreshToken); err != nil {
		t.Fatalf("expected rotated refresh token accepted, got %v", err)
	}
}

func TestRevokeRefreshInvalidatesToken(t *testing.T) {
	svc := NewJWTService("secret", 15*time.Minute, time.Hour)
	pair, err := svc.GeneratePair(testUser())
	if err != nil {
		t.Fatalf("GeneratePair returned error: %v", err)
	}

	if err := svc.RevokeRefresh(pair.RefreshToken); err != nil {
		t.Fatalf("RevokeRefresh returned error: %v", err)
	}
	if _, err := svc.RefreshPair(pair.RefreshToken); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected revoked refresh token rejected, got %v", err)
	}
}

func TestJWTServiceRequiresSecret(t *testing.T) {
	svc := NewJWTService("", 15*time.Minute, time.Hour)

	if _, err := svc.GeneratePair(testUser()); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected ErrJWTInvalid without secret, got %v", err)
	}
	if _, err := svc.ParseAccessToken("whatever"); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected ErrJWTInvalid without secret, got %v", err)
	}
}

func TestMemoryRefreshTokenStore(t *testing.T) {
	store := NewMemoryRefreshTokenStore()

	if err := store.Store("jti-1", "user-1", time.Minute); err != nil {
		t.Fatalf("Store returned error: %v", err)
	}
	ok, err := store.Exists("jti-1")
	if err != nil || !ok {
		t.Fatalf("expected stored jti to exist, ok=%v err=%v", ok, err)
	}

	if err := store.Revoke("jti-1"); err != nil {
		t.Fatalf("Revoke returned error: %v", err)
	}
	ok, err = store.Exists("jti-1")
	if err != nil || ok {
		t.Fatalf("expected revoked jti gone, ok=%v err=%v", ok, err)
	}
}

func TestMemoryRefreshTokenStoreExpiry(t *testing.T) {
	store := NewMemoryRefreshTokenStore()

	if err := store.Store("jti-1", "user-1", -time.Second); err != nil {
		t.Fatalf("Store returned error: %v", err)
	}
	ok, err := store.Exists("jti-1")
	if err != nil || ok {
		t.Fatalf("expected expired jti rejected, ok=%v err=%v", ok, err)
	}
}
