package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/sandeepkv93/workout-auth-service/internal/domain"
	"github.com/sandeepkv93/workout-auth-service/internal/http/response"
	"github.com/sandeepkv93/workout-auth-service/internal/repository"
	"github.com/sandeepkv93/workout-auth-service/internal/service"
)

var errNotImplemented = errors.New("not implemented")

type stubAuthSvc struct {
	registerFn func(ctx context.Context, in *service.RegistrationInput) (string, error)
	loginFn    func(ctx context.Context, userName, password string) (*service.LoginResult, error)
	refreshFn  func(ctx context.Context, credentialID string) (*service.RefreshResult, error)
	elevateFn  func(ctx context.Context, credentialID string) error
}

func (s *stubAuthSvc) IsUserExisting(context.Context, string) (bool, error) {
	return false, errNotImplemented
}

func (s *stubAuthSvc) Register(ctx context.Context, in *service.RegistrationInput) (string, error) {
	if s.registerFn != nil {
		return s.registerFn(ctx, in)
	}
	return "", errNotImplemented
}

func (s *stubAuthSvc) Authenticate(context.Context, string, string) (bool, error) {
	return false, errNotImplemented
}

func (s *stubAuthSvc) Login(ctx context.Context, userName, password string) (*service.LoginResult, error) {
	if s.loginFn != nil {
		return s.loginFn(ctx, userName, password)
	}
	return nil, errNotImplemented
}

func (s *stubAuthSvc) IssueRefreshToken(context.Context, string) (*service.RefreshResult, error) {
	return nil, errNotImplemented
}

func (s *stubAuthSvc) RefreshForCredential(ctx context.Context, credentialID string) (*service.RefreshResult, error) {
	if s.refreshFn != nil {
		return s.refreshFn(ctx, credentialID)
	}
	return nil, errNotImplemented
}

func (s *stubAuthSvc) ElevateToTrainer(ctx context.Context, credentialID string) error {
	if s.elevateFn != nil {
		return s.elevateFn(ctx, credentialID)
	}
	return errNotImplemented
}

type stubCredentialSvc struct {
	listFn      func(ctx context.Context) ([]domain.UserCredential, error)
	listPagedFn func(ctx context.Context, req repository.PageRequest) (repository.PageResult[domain.UserCredential], error)
	getFn       func(ctx context.Context, id string) (*domain.UserCredential, error)
	rolesFn     func(ctx context.Context, id string) ([]string, error)
	accountFn   func(ctx context.Context, id string) (*domain.UserAccount, error)
	deleteFn    func(ctx context.Context, id string, mode domain.DeleteType) error
}

func (s *stubCredentialSvc) List(ctx context.Context) ([]domain.UserCredential, error) {
	if s.listFn != nil {
		return s.listFn(ctx)
	}
	return nil, errNotImplemented
}

func (s *stubCredentialSvc) ListPaged(ctx context.Context, req repository.PageRequest) (repository.PageResult[domain.UserCredential], error) {
	if s.listPagedFn != nil {
		return s.listPagedFn(ctx, req)
	}
	return repository.PageResult[domain.UserCredential]{}, errNotImplemented
}

func (s *stubCredentialSvc) Get(ctx context.Context, id string) (*domain.UserCredential, error) {
	if s.getFn != nil {
		return s.getFn(ctx, id)
	}
	return nil, errNotImplemented
}

func (s *stubCredentialSvc) Roles(ctx context.Context, id string) ([]string, error) {
	if s.rolesFn != nil {
		return s.rolesFn(ctx, id)
	}
	return nil, errNotImplemented
}

func (s *stubCredentialSvc) RoleNamesForUser(context.Context, string) ([]string, error) {
	return nil, errNotImplemented
}

func (s *stubCredentialSvc) Account(ctx context.Context, id string) (*domain.UserAccount, error) {
	if s.accountFn != nil {
		return s.accountFn(ctx, id)
	}
	return nil, errNotImplemented
}

func (s *stubCredentialSvc) Delete(ctx context.Context, id string, mode domain.DeleteType) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, id, mode)
	}
	return errNotImplemented
}

type stubAccountSvc struct {
	getFn    func(ctx context.Context, id string) (*domain.UserAccount, error)
	updateFn func(ctx context.Context, id string, in *service.AccountUpdateInput) error
}

func (s *stubAccountSvc) Get(ctx context.Context, id string) (*domain.UserAccount, error) {
	if s.getFn != nil {
		return s.getFn(ctx, id)
	}
	return nil, errNotImplemented
}

func (s *stubAccountSvc) Update(ctx context.Context, id string, in *service.AccountUpdateInput) error {
	if s.updateFn != nil {
		return s.updateFn(ctx, id, in)
	}
	return errNotImplemented
}

// serve routes one request through a chi router so URL params resolve.
func serve(t *testing.T, method, pattern, target string, body string, h http.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	r.MethodFunc(method, pattern, h)
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rdr)
	req.RemoteAddr = "198.51.100.4:4444"
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func errorBody(t *testing.T, rr *httptest.ResponseRecorder) response.ErrorDetails {
	t.Helper()
	var body response.ErrorDetails
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body %q: %v", rr.Body.String(), err)
	}
	if body.StatusCode != rr.Code {
		t.Fatalf("error body statusCode %d does not match response code %d", body.StatusCode, rr.Code)
	}
	return body
}
