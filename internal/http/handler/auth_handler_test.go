package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/sandeepkv93/workout-auth-service/internal/apperr"
	"github.com/sandeepkv93/workout-auth-service/internal/service"
	"github.com/sandeepkv93/workout-auth-service/internal/validation"
)

const validRegistrationBody = `{
	"userName": "alice",
	"email": "alice@example.com",
	"password": "Secret1!",
	"phoneNumber": "+375291112233",
	"firstName": "Alice",
	"lastName": "Liddell",
	"dateOfBirth": "1995-04-12T00:00:00Z",
	"residencePlace": "Minsk, Nezavisimosti 4",
	"sex": "Female",
	"height": 168,
	"sportsActivity": "Active"
}`

func newAuthHandlerForTest(svc *stubAuthSvc) *AuthHandler {
	return NewAuthHandler(svc, nil, validation.New())
}

func TestLoginSuccess(t *testing.T) {
	expires := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	h := newAuthHandlerForTest(&stubAuthSvc{loginFn: func(_ context.Context, userName, password string) (*service.LoginResult, error) {
		if userName != "alice" || password != "Secret1!" {
			t.Fatalf("unexpected credentials %q/%q", userName, password)
		}
		return &service.LoginResult{AccessToken: "a.b.c", RefreshToken: "r", RefreshTokenExpirationTime: expires}, nil
	}})

	rr := serve(t, http.MethodPost, "/login", "/login", `{"userName":"alice","password":"Secret1!"}`, h.Login)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var got map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got["accessToken"] != "a.b.c" || got["refreshToken"] != "r" || got["refreshTokenExpirationTime"] != "2026-11-01T00:00:00Z" {
		t.Fatalf("unexpected login body %v", got)
	}
}

func TestLoginFailuresShareOneBody(t *testing.T) {
	h := newAuthHandlerForTest(&stubAuthSvc{loginFn: func(context.Context, string, string) (*service.LoginResult, error) {
		return nil, fmt.Errorf("login: %w", apperr.ErrUnauthorized)
	}})

	bodies := map[string]string{
		"wrong password": `{"userName":"alice","password":"nope-nope"}`,
		"missing field":  `{"userName":"alice"}`,
		"malformed json": `{"userName":`,
		"empty body":     ``,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			rr := serve(t, http.MethodPost, "/login", "/login", body, h.Login)
			if rr.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rr.Code)
			}
			got := errorBody(t, rr)
			if got.Message != "Authenticate was failed. Try another user name or password" {
				t.Fatalf("unexpected message %q", got.Message)
			}
			if !strings.Contains(got.Details, "validation rules were violated") {
				t.Fatalf("unexpected details %q", got.Details)
			}
		})
	}
}

func TestLoginServerFailureIs500(t *testing.T) {
	h := newAuthHandlerForTest(&stubAuthSvc{loginFn: func(context.Context, string, string) (*service.LoginResult, error) {
		return nil, fmt.Errorf("mint: %w", apperr.ErrInvalidKeyLength)
	}})

	rr := serve(t, http.MethodPost, "/login", "/login", `{"userName":"alice","password":"Secret1!"}`, h.Login)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	if got := errorBody(t, rr); strings.Contains(got.Details, "signing key") {
		t.Fatalf("internal error text leaked: %q", got.Details)
	}
}

func TestRegistrationCreated(t *testing.T) {
	const id = "0b5e6c1e-7d0c-4a3c-9f57-3f7a1e0d9a11"
	var captured *service.RegistrationInput
	h := newAuthHandlerForTest(&stubAuthSvc{registerFn: func(_ context.Context, in *service.RegistrationInput) (string, error) {
		captured = in
		return id, nil
	}})

	rr := serve(t, http.MethodPost, "/registration", "/registration", validRegistrationBody, h.Registration)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rr.Code, rr.Body.String())
	}
	if got := rr.Header().Get("Location"); got != "api/userCredentials/"+id {
		t.Fatalf("unexpected Location %q", got)
	}
	var body string
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil || body != id {
		t.Fatalf("expected id body, got %q err=%v", rr.Body.String(), err)
	}
	if captured == nil || captured.UserName != "alice" || captured.Height == nil || *captured.Height != 168 {
		t.Fatalf("registration input not decoded: %+v", captured)
	}
}

func TestRegistrationDuplicateIs401(t *testing.T) {
	h := newAuthHandlerForTest(&stubAuthSvc{registerFn: func(context.Context, *service.RegistrationInput) (string, error) {
		return "", service.ErrUserExists
	}})

	rr := serve(t, http.MethodPost, "/registration", "/registration", validRegistrationBody, h.Registration)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	if got := errorBody(t, rr); got.Message != "User already exists." {
		t.Fatalf("unexpected message %q", got.Message)
	}
}

func TestRegistrationValidationIs400(t *testing.T) {
	h := newAuthHandlerForTest(&stubAuthSvc{registerFn: func(context.Context, *service.RegistrationInput) (string, error) {
		t.Fatal("service must not be called for invalid input")
		return "", nil
	}})

	body := strings.Replace(validRegistrationBody, `"Secret1!"`, `"bad/pass"`, 1)
	rr := serve(t, http.MethodPost, "/registration", "/registration", body, h.Registration)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	got := errorBody(t, rr)
	if got.Message != "Incoming model is invalid." || !strings.Contains(got.Details, "password") {
		t.Fatalf("unexpected error body %+v", got)
	}
}

func TestRefresh(t *testing.T) {
	expires := time.Date(2026, 10, 22, 0, 0, 0, 0, time.UTC)
	h := newAuthHandlerForTest(&stubAuthSvc{refreshFn: func(_ context.Context, id string) (*service.RefreshResult, error) {
		if id == "missing" {
			return nil, fmt.Errorf("credential %s: %w", id, apperr.ErrNotFound)
		}
		return &service.RefreshResult{RefreshToken: "fresh", RefreshTokenExpirationTime: expires}, nil
	}})

	rr := serve(t, http.MethodPost, "/refresh/{userCredentialsId}", "/refresh/c1", "", h.Refresh)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var got service.RefreshResult
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil || got.RefreshToken != "fresh" || !got.RefreshTokenExpirationTime.Equal(expires) {
		t.Fatalf("unexpected refresh body %s err=%v", rr.Body.String(), err)
	}

	rr = serve(t, http.MethodPost, "/refresh/{userCredentialsId}", "/refresh/missing", "", h.Refresh)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	if got := errorBody(t, rr); got.Message != "User don't exists." {
		t.Fatalf("unexpected message %q", got.Message)
	}

	rr = serve(t, http.MethodPost, "/refresh/{userCredentialsId}", "/refresh/%20", "", h.Refresh)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank id, got %d", rr.Code)
	}
	if got := errorBody(t, rr); got.Message != "Id is empty." {
		t.Fatalf("unexpected message %q", got.Message)
	}
}

type stubLoginGuard struct {
	checkFn  func(ctx context.Context, userName, ip string) (time.Duration, error)
	failures []string
	resets   []string
}

func (g *stubLoginGuard) Check(ctx context.Context, userName, ip string) (time.Duration, error) {
	if g.checkFn == nil {
		return 0, nil
	}
	return g.checkFn(ctx, userName, ip)
}

func (g *stubLoginGuard) RegisterFailure(_ context.Context, userName, ip string) (time.Duration, error) {
	g.failures = append(g.failures, userName+"@"+ip)
	return 0, nil
}

func (g *stubLoginGuard) Reset(_ context.Context, userName, ip string) error {
	g.resets = append(g.resets, userName+"@"+ip)
	return nil
}

func TestLoginGuardTracksOutcomes(t *testing.T) {
	guard := &stubLoginGuard{}
	h := NewAuthHandler(&stubAuthSvc{loginFn: func(_ context.Context, _, password string) (*service.LoginResult, error) {
		if password != "Secret1!" {
			return nil, apperr.ErrUnauthorized
		}
		return &service.LoginResult{AccessToken: "t"}, nil
	}}, guard, validation.New())

	rr := serve(t, http.MethodPost, "/login", "/login", `{"userName":"alice","password":"wrong-one"}`, h.Login)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	rr = serve(t, http.MethodPost, "/login", "/login", `{"userName":"alice","password":"Secret1!"}`, h.Login)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if len(guard.failures) != 1 || !strings.HasPrefix(guard.failures[0], "alice@") {
		t.Fatalf("unexpected failures %v", guard.failures)
	}
	if len(guard.resets) != 1 {
		t.Fatalf("expected reset after success, got %v", guard.resets)
	}
}

func TestLoginThrottledByGuard(t *testing.T) {
	called := false
	guard := &stubLoginGuard{checkFn: func(context.Context, string, string) (time.Duration, error) {
		return 1500 * time.Millisecond, nil
	}}
	h := NewAuthHandler(&stubAuthSvc{loginFn: func(context.Context, string, string) (*service.LoginResult, error) {
		called = true
		return nil, nil
	}}, guard, validation.New())

	rr := serve(t, http.MethodPost, "/login", "/login", `{"userName":"alice","password":"Secret1!"}`, h.Login)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rr.Code)
	}
	if rr.Header().Get("Retry-After") != "2" {
		t.Fatalf("expected Retry-After 2, got %q", rr.Header().Get("Retry-After"))
	}
	if called {
		t.Fatal("service must not be called while throttled")
	}
}

func TestLoginGuardBackendErrorFailsOpen(t *testing.T) {
	guard := &stubLoginGuard{checkFn: func(context.Context, string, string) (time.Duration, error) {
		return 0, fmt.Errorf("redis down")
	}}
	h := NewAuthHandler(&stubAuthSvc{loginFn: func(context.Context, string, string) (*service.LoginResult, error) {
		return &service.LoginResult{AccessToken: "t"}, nil
	}}, guard, validation.New())

	rr := serve(t, http.MethodPost, "/login", "/login", `{"userName":"alice","password":"Secret1!"}`, h.Login)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 when guard backend fails, got %d", rr.Code)
	}
}
