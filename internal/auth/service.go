package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/leadvault/backend/internal/db"
	"github.com/leadvault/backend/internal/validation"
	"golang.org/x/crypto/bcrypt"
)

// UserStore is the credential-store surface the session flows need.
type UserStore interface {
	Create(ctx context.Context, user *db.User) error
	GetByEmail(ctx context.Context, email string) (*db.User, error)
}

// TokenPair is the result of a successful login.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Service orchestrates signup, login and logout over the credential
// store, the token issuer and the revocation blacklist.
type Service struct {
	users     UserStore
	issuer    *TokenIssuer
	blacklist *Blacklist
}

func NewService(users UserStore, issuer *TokenIssuer, blacklist *Blacklist) *Service {
	return &Service{
		users:     users,
		issuer:    issuer,
		blacklist: blacklist,
	}
}

func (s *Service) Issuer() *TokenIssuer {
	return s.issuer
}

// Signup hashes the password and creates the user. Duplicate emails
// surface as db.ErrEmailExists via the store's uniqueness constraint.
func (s *Service) Signup(ctx context.Context, email, password string) error {
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return err
	}

	user := &db.User{
		ID:           uuid.New(),
		Email:        validation.NormalizeEmail(email),
		PasswordHash: string(passwordHash),
		CreatedAt:    time.Now(),
	}

	return s.users.Create(ctx, user)
}

// Login verifies credentials and issues both tokens. An unknown email and
// a wrong password both come back as ErrInvalidCredentials; the caller
// must not be able to tell which accounts exist.
func (s *Service) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, validation.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, db.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	accessToken, err := s.issuer.IssueAccess(user.ID)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.issuer.IssueRefresh(user.ID)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Logout blacklists the presented access token for the remainder of its
// lifetime. Revocation is per token: other tokens issued to the same
// user, from concurrent logins, stay valid.
func (s *Service) Logout(ctx context.Context, token string, expiresAt time.Time) error {
	return s.blacklist.Revoke(ctx, token, time.Until(expiresAt))
}

// Authenticate is the gate every protected request passes through:
// revocation lookup first, then signature and expiry verification. A
// store failure denies; it never falls through to acceptance.
func (s *Service) Authenticate(ctx context.Context, token string) (*UserContext, error) {
	revoked, err := s.blacklist.IsRevoked(ctx, token)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrTokenRevoked
	}

	claims, err := s.issuer.VerifyAccess(token)
	if err != nil {
		return nil, err
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, ErrInvalidToken
	}

	return &UserContext{
		UserID:    userID,
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
