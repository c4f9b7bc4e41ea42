package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "github.com/leadvault/backend/internal/errors"
)

func newTestHandlers() (*Handlers, *Service) {
	svc := newTestService(newFakeTokenStore(), newFakeUserStore())
	return NewHandlers(svc, false), svc
}

func postJSON(handler http.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func TestSignupHandler(t *testing.T) {
	h, _ := newTestHandlers()

	w := postJSON(h.Signup, "/api/v1/auth/signup", `{"email":"a@b.com","password":"Passw0rd"}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp MessageResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Message != "Signup successful" {
		t.Errorf("unexpected message %q", resp.Message)
	}
	if strings.Contains(w.Body.String(), "Passw0rd") {
		t.Error("response must not echo the password")
	}
}

func TestSignupHandlerCollectsAllValidationFailures(t *testing.T) {
	h, _ := newTestHandlers()

	w := postJSON(h.Signup, "/api/v1/auth/signup", `{"password":"weak"}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}

	var resp apperrors.ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Error.Code != apperrors.CodeValidationError {
		t.Errorf("expected code %s, got %s", apperrors.CodeValidationError, resp.Error.Code)
	}
	// Both fields report, and the weak password reports every failed
	// check, not just the first.
	if _, ok := resp.Error.Details["email"]; !ok {
		t.Error("expected email failures in details")
	}
	pwFailures, ok := resp.Error.Details["password"].([]interface{})
	if !ok || len(pwFailures) != 3 {
		t.Errorf("expected 3 password failures, got %v", resp.Error.Details["password"])
	}
}

func TestSignupHandlerDuplicateEmail(t *testing.T) {
	h, _ := newTestHandlers()

	if w := postJSON(h.Signup, "/api/v1/auth/signup", `{"email":"a@b.com","password":"Passw0rd"}`); w.Code != http.StatusCreated {
		t.Fatalf("first signup failed: %d", w.Code)
	}

	w := postJSON(h.Signup, "/api/v1/auth/signup", `{"email":"a@b.com","password":"Passw0rd"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate email, got %d", w.Code)
	}

	var resp apperrors.ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Error.Code != apperrors.CodeEmailExists {
		t.Errorf("expected code %s, got %s", apperrors.CodeEmailExists, resp.Error.Code)
	}
}

func TestSignupHandlerBadBody(t *testing.T) {
	h, _ := newTestHandlers()
	w := postJSON(h.Signup, "/api/v1/auth/signup", `{not json`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestLoginHandlerSetsRefreshCookie(t *testing.T) {
	h, _ := newTestHandlers()
	postJSON(h.Signup, "/api/v1/auth/signup", `{"email":"a@b.com","password":"Passw0rd"}`)

	w := postJSON(h.Login, "/api/v1/auth/login", `{"email":"a@b.com","password":"Passw0rd"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp LoginResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.AccessToken == "" {
		t.Error("expected access token in body")
	}

	cookies := w.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected exactly one cookie, got %d", len(cookies))
	}
	cookie := cookies[0]
	if cookie.Name != RefreshTokenCookie {
		t.Errorf("expected cookie %q, got %q", RefreshTokenCookie, cookie.Name)
	}
	if cookie.Value == "" || cookie.Value == resp.AccessToken {
		t.Error("refresh cookie must carry the refresh token, not the access token")
	}
	if !cookie.HttpOnly {
		t.Error("refresh cookie must be HttpOnly")
	}
	if cookie.SameSite != http.SameSiteStrictMode {
		t.Error("refresh cookie must be SameSite=Strict")
	}
}

func TestLoginHandlerInvalidCredentialsIndistinguishable(t *testing.T) {
	h, _ := newTestHandlers()
	postJSON(h.Signup, "/api/v1/auth/signup", `{"email":"a@b.com","password":"Passw0rd"}`)

	wrongPassword := postJSON(h.Login, "/api/v1/auth/login", `{"email":"a@b.com","password":"WrongPass1"}`)
	unknownEmail := postJSON(h.Login, "/api/v1/auth/login", `{"email":"nobody@b.com","password":"Passw0rd"}`)

	if wrongPassword.Code != http.StatusUnauthorized || unknownEmail.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401/401, got %d/%d", wrongPassword.Code, unknownEmail.Code)
	}

	var a, b apperrors.ErrorResponse
	if err := json.NewDecoder(wrongPassword.Body).Decode(&a); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if err := json.NewDecoder(unknownEmail.Body).Decode(&b); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if a.Error.Code != b.Error.Code || a.Error.Message != b.Error.Message {
		t.Errorf("wrong-password and unknown-email responses differ: %+v vs %+v", a.Error, b.Error)
	}
}

func TestLoginHandlerValidation(t *testing.T) {
	h, _ := newTestHandlers()
	w := postJSON(h.Login, "/api/v1/auth/login", `{"email":"not-an-email","password":""}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestLogoutFlow(t *testing.T) {
	h, svc := newTestHandlers()
	postJSON(h.Signup, "/api/v1/auth/signup", `{"email":"a@b.com","password":"Passw0rd"}`)

	w := postJSON(h.Login, "/api/v1/auth/login", `{"email":"a@b.com","password":"Passw0rd"}`)
	var login LoginResponse
	if err := json.NewDecoder(w.Body).Decode(&login); err != nil {
		t.Fatalf("failed to decode login response: %v", err)
	}

	gate := Middleware(svc)
	logout := gate(http.HandlerFunc(h.Logout))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+login.AccessToken)
	rec := httptest.NewRecorder()
	logout.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Body.Len() != 0 {
		t.Error("logout response must have no body")
	}

	// The token that performed the logout is now dead everywhere.
	req = httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+login.AccessToken)
	rec = httptest.NewRecorder()
	logout.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 after logout, got %d", rec.Code)
	}
}
