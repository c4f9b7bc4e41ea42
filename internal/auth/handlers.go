package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/leadvault/backend/internal/db"
	apperrors "github.com/leadvault/backend/internal/errors"
	"github.com/leadvault/backend/internal/logger"
	"github.com/leadvault/backend/internal/metrics"
	"github.com/leadvault/backend/internal/validation"
)

// RefreshTokenCookie is the name of the HTTP-only cookie carrying the
// refresh token.
const RefreshTokenCookie = "refreshToken"

// Request fields are pointers so validation can tell a missing field from
// an empty one.

type SignupRequest struct {
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

type LoginRequest struct {
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type LoginResponse struct {
	Message     string `json:"message"`
	AccessToken string `json:"accessToken"`
}

type Handlers struct {
	authService  *Service
	cookieSecure bool
	log          *logger.Logger
}

func NewHandlers(authService *Service, cookieSecure bool) *Handlers {
	return &Handlers{
		authService:  authService,
		cookieSecure: cookieSecure,
		log:          logger.Default().WithComponent("auth"),
	}
}

func (h *Handlers) Signup(w http.ResponseWriter, r *http.Request) {
	requestID := apperrors.GetRequestID(r.Context())

	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperrors.WriteError(w, requestID, apperrors.BadRequest("invalid request body"))
		return
	}

	failures := validation.SignupRules().Validate(map[string]validation.Value{
		"email":    validation.String(req.Email),
		"password": validation.String(req.Password),
	})
	if len(failures) > 0 {
		apperrors.WriteError(w, requestID,
			apperrors.ValidationError("validation failed").WithDetails(validation.Details(failures)))
		return
	}

	if err := h.authService.Signup(r.Context(), *req.Email, *req.Password); err != nil {
		if errors.Is(err, db.ErrEmailExists) {
			apperrors.WriteError(w, requestID, apperrors.EmailExists())
			return
		}
		h.log.Error(r.Context(), "signup failed", err)
		apperrors.WriteError(w, requestID, apperrors.InternalError("failed to create user"))
		return
	}

	metrics.Default().IncSignups()
	apperrors.WriteJSON(w, requestID, http.StatusCreated, MessageResponse{Message: "Signup successful"})
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	requestID := apperrors.GetRequestID(r.Context())

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperrors.WriteError(w, requestID, apperrors.BadRequest("invalid request body"))
		return
	}

	failures := validation.LoginRules().Validate(map[string]validation.Value{
		"email":    validation.String(req.Email),
		"password": validation.String(req.Password),
	})
	if len(failures) > 0 {
		apperrors.WriteError(w, requestID,
			apperrors.ValidationError("validation failed").WithDetails(validation.Details(failures)))
		return
	}

	pair, err := h.authService.Login(r.Context(), *req.Email, *req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			apperrors.WriteError(w, requestID, apperrors.InvalidCredentials())
			return
		}
		h.log.Error(r.Context(), "login failed", err)
		apperrors.WriteError(w, requestID, apperrors.InternalError("login failed"))
		return
	}

	h.setRefreshCookie(w, pair.RefreshToken)
	metrics.Default().IncLogins()

	apperrors.WriteJSON(w, requestID, http.StatusOK, LoginResponse{
		Message:     "Login successful",
		AccessToken: pair.AccessToken,
	})
}

func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	requestID := apperrors.GetRequestID(r.Context())

	userCtx := GetUserFromContext(r.Context())
	if userCtx == nil {
		apperrors.WriteError(w, requestID, apperrors.Unauthorized("unauthorized"))
		return
	}

	if err := h.authService.Logout(r.Context(), userCtx.Token, userCtx.ExpiresAt); err != nil {
		h.log.Error(r.Context(), "logout failed", err)
		apperrors.WriteError(w, requestID, apperrors.InternalError("logout failed"))
		return
	}

	metrics.Default().IncTokensRevoked()
	h.clearRefreshCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// setRefreshCookie delivers the refresh token on a restricted channel:
// unreadable by scripts, never sent cross-site, path-scoped to the auth
// routes.
func (h *Handlers) setRefreshCookie(w http.ResponseWriter, refreshToken string) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshTokenCookie,
		Value:    refreshToken,
		Path:     "/api/v1/auth",
		MaxAge:   int(h.authService.Issuer().RefreshTTL().Seconds()),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *Handlers) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshTokenCookie,
		Value:    "",
		Path:     "/api/v1/auth",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
}
