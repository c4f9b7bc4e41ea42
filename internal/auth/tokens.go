package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	DefaultAccessTokenTTL  = 30 * time.Minute
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
	BcryptCost             = 12
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenRevoked       = errors.New("token revoked")
)

type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// TokenIssuer mints and verifies the two bearer credentials. Access and
// refresh tokens are signed with independent secrets, so holding one kind
// never helps forging the other.
type TokenIssuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewTokenIssuer(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTokenTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = DefaultRefreshTokenTTL
	}
	return &TokenIssuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (t *TokenIssuer) AccessTTL() time.Duration  { return t.accessTTL }
func (t *TokenIssuer) RefreshTTL() time.Duration { return t.refreshTTL }

// IssueAccess creates a short-lived access token for the user.
func (t *TokenIssuer) IssueAccess(userID uuid.UUID) (string, error) {
	return t.issue(userID, t.accessSecret, t.accessTTL)
}

// IssueRefresh creates a longer-lived refresh token for the user.
func (t *TokenIssuer) IssueRefresh(userID uuid.UUID) (string, error) {
	return t.issue(userID, t.refreshSecret, t.refreshTTL)
}

func (t *TokenIssuer) issue(userID uuid.UUID, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			// jti makes every token unique even when two are minted for
			// the same user within the same second (NumericDate truncates
			// to seconds). Revocation keys on the raw token string, so
			// without it a logout could revoke a sibling session.
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    "leadvault",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// VerifyAccess checks an access token's signature, structure and expiry.
func (t *TokenIssuer) VerifyAccess(tokenString string) (*Claims, error) {
	return t.verify(tokenString, t.accessSecret)
}

// VerifyRefresh checks a refresh token's signature, structure and expiry.
func (t *TokenIssuer) VerifyRefresh(tokenString string) (*Claims, error) {
	return t.verify(tokenString, t.refreshSecret)
}

func (t *TokenIssuer) verify(tokenString string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
