package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestIssueAndVerifyAccess(t *testing.T) {
	issuer := NewTokenIssuer("access-secret", "refresh-secret", time.Hour, 24*time.Hour)
	userID := uuid.New()

	token, err := issuer.IssueAccess(userID)
	if err != nil {
		t.Fatalf("failed to issue access token: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	claims, err := issuer.VerifyAccess(token)
	if err != nil {
		t.Fatalf("failed to verify freshly issued token: %v", err)
	}
	if claims.UserID != userID.String() {
		t.Errorf("expected subject %s, got %s", userID, claims.UserID)
	}

	window := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
	if window != time.Hour {
		t.Errorf("expected expiry = issuedAt + 1h, got window %v", window)
	}
}

func TestAccessAndRefreshSecretsAreIndependent(t *testing.T) {
	issuer := NewTokenIssuer("access-secret", "refresh-secret", time.Hour, 24*time.Hour)
	userID := uuid.New()

	refresh, err := issuer.IssueRefresh(userID)
	if err != nil {
		t.Fatalf("failed to issue refresh token: %v", err)
	}

	// A refresh token must never be accepted where an access token is
	// expected, and vice versa.
	if _, err := issuer.VerifyAccess(refresh); err == nil {
		t.Error("refresh token accepted as access token")
	}

	access, err := issuer.IssueAccess(userID)
	if err != nil {
		t.Fatalf("failed to issue access token: %v", err)
	}
	if _, err := issuer.VerifyRefresh(access); err == nil {
		t.Error("access token accepted as refresh token")
	}

	if _, err := issuer.VerifyRefresh(refresh); err != nil {
		t.Errorf("refresh token rejected by its own verifier: %v", err)
	}
}

func TestIssuedTokensAreUnique(t *testing.T) {
	issuer := NewTokenIssuer("access-secret", "refresh-secret", time.Hour, 24*time.Hour)
	userID := uuid.New()

	// Issued back-to-back, well inside one second. iat/exp truncate to
	// second precision, so uniqueness must come from the jti claim;
	// identical tokens would make revoking one session revoke the other.
	first, err := issuer.IssueAccess(userID)
	if err != nil {
		t.Fatalf("failed to issue first token: %v", err)
	}
	second, err := issuer.IssueAccess(userID)
	if err != nil {
		t.Fatalf("failed to issue second token: %v", err)
	}

	if first == second {
		t.Fatal("two tokens issued to the same user are byte-identical")
	}

	a, err := issuer.VerifyAccess(first)
	if err != nil {
		t.Fatalf("failed to verify first token: %v", err)
	}
	b, err := issuer.VerifyAccess(second)
	if err != nil {
		t.Fatalf("failed to verify second token: %v", err)
	}
	if a.ID == "" || a.ID == b.ID {
		t.Errorf("expected distinct non-empty token IDs, got %q and %q", a.ID, b.ID)
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	issuer := NewTokenIssuer("access-secret", "refresh-secret", time.Millisecond, 24*time.Hour)

	token, err := issuer.IssueAccess(uuid.New())
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	time.Sleep(10 * time.Millisecond)

	if _, err := issuer.VerifyAccess(token); err != ErrTokenExpired {
		t.Errorf("expected ErrTokenExpired, got %v", err)
	}
}

func TestVerifyRejectsForgeries(t *testing.T) {
	issuer := NewTokenIssuer("access-secret", "refresh-secret", time.Hour, 24*time.Hour)
	other := NewTokenIssuer("different-secret", "refresh-secret", time.Hour, 24*time.Hour)

	forged, err := other.IssueAccess(uuid.New())
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	if _, err := issuer.VerifyAccess(forged); err != ErrInvalidToken {
		t.Errorf("expected ErrInvalidToken for wrong secret, got %v", err)
	}
}

func TestVerifyRejectsCorruptTokens(t *testing.T) {
	issuer := NewTokenIssuer("access-secret", "refresh-secret", time.Hour, 24*time.Hour)

	token, err := issuer.IssueAccess(uuid.New())
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.jwt"},
		{"truncated", token[:len(token)/2]},
		{"tampered signature", token[:len(token)-4] + "AAAA"},
		{"missing segments", strings.SplitN(token, ".", 2)[0]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := issuer.VerifyAccess(tt.token); err != ErrInvalidToken {
				t.Errorf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestDefaultWindows(t *testing.T) {
	issuer := NewTokenIssuer("a", "r", 0, 0)
	if issuer.AccessTTL() != DefaultAccessTokenTTL {
		t.Errorf("expected default access TTL, got %v", issuer.AccessTTL())
	}
	if issuer.RefreshTTL() != DefaultRefreshTokenTTL {
		t.Errorf("expected default refresh TTL, got %v", issuer.RefreshTTL())
	}
}
