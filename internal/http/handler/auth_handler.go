package handler

import (
	"errors"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sandeepkv93/workout-auth-service/internal/apperr"
	"github.com/sandeepkv93/workout-auth-service/internal/http/response"
	"github.com/sandeepkv93/workout-auth-service/internal/observability"
	"github.com/sandeepkv93/workout-auth-service/internal/service"
	"github.com/sandeepkv93/workout-auth-service/internal/validation"
)

type AuthHandler struct {
	authSvc  service.AuthServiceInterface
	guard    service.LoginGuard
	validate *validation.Validator
}

func NewAuthHandler(authSvc service.AuthServiceInterface, guard service.LoginGuard, validate *validation.Validator) *AuthHandler {
	if guard == nil {
		guard = service.NewNoopLoginGuard()
	}
	return &AuthHandler{authSvc: authSvc, guard: guard, validate: validate}
}

// Login answers 401 with the same body for unknown users, wrong passwords and
// invalid input. Repeated failures put the user name and client address into a
// cooldown answered with 429.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "success"
	defer func() {
		observability.RecordAuthRequestDuration(r.Context(), "login", status, time.Since(start))
	}()

	var in service.LoginInput
	err := decodeJSON(r, &in)
	if err == nil {
		err = h.validate.Struct(&in)
	}
	if err != nil {
		status = "failure"
		h.loginRejected(w, r, in.UserName, "invalid_input")
		return
	}

	ip := clientIP(r)
	if retry := h.guardCheck(r, in.UserName, ip); retry > 0 {
		status = "throttled"
		h.loginThrottled(w, r, in.UserName, retry)
		return
	}

	result, err := h.authSvc.Login(r.Context(), in.UserName, in.Password)
	switch {
	case errors.Is(err, apperr.ErrUnauthorized):
		status = "failure"
		h.guardFailure(r, in.UserName, ip)
		h.loginRejected(w, r, in.UserName, "bad_credentials")
		return
	case err != nil:
		status = "error"
		observability.RecordAuthLogin(r.Context(), "error")
		observability.Audit(r, observability.AuditInput{EventName: "auth.login", ActorUserID: in.UserName, TargetType: "user_credential", Action: "login", Outcome: "failure", Reason: apperr.Kind(err)})
		writeError(w, r, err, nil)
		return
	}

	h.guardReset(r, in.UserName, ip)
	observability.RecordAuthLogin(r.Context(), "success")
	observability.Audit(r, observability.AuditInput{EventName: "auth.login", ActorUserID: in.UserName, TargetType: "user_credential", Action: "login", Outcome: "success"})
	response.JSON(w, r, http.StatusOK, result)
}

// guardCheck fails open on backend errors.
func (h *AuthHandler) guardCheck(r *http.Request, userName, ip string) time.Duration {
	retry, err := h.guard.Check(r.Context(), userName, ip)
	if err != nil {
		observability.RecordLoginGuardEvent(r.Context(), "check", "backend_error")
		slog.WarnContext(r.Context(), "login guard check failed", "error", err)
		return 0
	}
	if retry > 0 {
		observability.RecordLoginGuardEvent(r.Context(), "check", "blocked")
		return retry
	}
	observability.RecordLoginGuardEvent(r.Context(), "check", "allowed")
	return 0
}

func (h *AuthHandler) guardFailure(r *http.Request, userName, ip string) {
	cooldown, err := h.guard.RegisterFailure(r.Context(), userName, ip)
	if err != nil {
		observability.RecordLoginGuardEvent(r.Context(), "failure", "backend_error")
		slog.WarnContext(r.Context(), "login guard failure registration failed", "error", err)
		return
	}
	observability.RecordLoginGuardEvent(r.Context(), "failure", "recorded")
	observability.RecordLoginGuardCooldown(r.Context(), "failure", cooldown)
}

func (h *AuthHandler) guardReset(r *http.Request, userName, ip string) {
	if err := h.guard.Reset(r.Context(), userName, ip); err != nil {
		observability.RecordLoginGuardEvent(r.Context(), "reset", "backend_error")
		slog.WarnContext(r.Context(), "login guard reset failed", "error", err)
		return
	}
	observability.RecordLoginGuardEvent(r.Context(), "reset", "success")
}

func (h *AuthHandler) loginThrottled(w http.ResponseWriter, r *http.Request, userName string, retry time.Duration) {
	observability.RecordAuthLogin(r.Context(), "throttled")
	observability.Audit(r, observability.AuditInput{EventName: "auth.login", ActorUserID: userName, TargetType: "user_credential", Action: "login", Outcome: "failure", Reason: "throttled"})
	w.Header().Set("Retry-After", strconv.Itoa(max(int(math.Ceil(retry.Seconds())), 1)))
	response.Error(w, r, http.StatusTooManyRequests, "Too many requests.", "Too many failed login attempts. Retry later.")
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (h *AuthHandler) loginRejected(w http.ResponseWriter, r *http.Request, userName, reason string) {
	observability.RecordAuthLogin(r.Context(), reason)
	observability.Audit(r, observability.AuditInput{EventName: "auth.login", ActorUserID: userName, TargetType: "user_credential", Action: "login", Outcome: "failure", Reason: reason})
	response.Error(w, r, http.StatusUnauthorized, msgLoginFailed, detailsLoginFailed)
}

func (h *AuthHandler) Registration(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "success"
	defer func() {
		observability.RecordAuthRequestDuration(r.Context(), "registration", status, time.Since(start))
	}()

	var in service.RegistrationInput
	err := decodeJSON(r, &in)
	if err == nil {
		err = h.validate.Struct(&in)
	}
	if err != nil {
		status = "failure"
		observability.RecordAuthRegistration(r.Context(), "invalid_input")
		writeError(w, r, err, failures{http.StatusBadRequest: {message: msgInvalidBody}})
		return
	}

	id, err := h.authSvc.Register(r.Context(), &in)
	if err != nil {
		status = "failure"
		outcome := apperr.Kind(err)
		observability.RecordAuthRegistration(r.Context(), outcome)
		observability.Audit(r, observability.AuditInput{EventName: "auth.registration", ActorUserID: in.UserName, TargetType: "user_credential", Action: "register", Outcome: "failure", Reason: outcome})
		writeError(w, r, err, failures{
			http.StatusUnauthorized: {message: msgUserExists, details: "User name " + in.UserName + " is already taken."},
			http.StatusBadRequest:   {message: msgInvalidBody},
		})
		return
	}

	observability.RecordAuthRegistration(r.Context(), "success")
	observability.Audit(r, observability.AuditInput{EventName: "auth.registration", ActorUserID: in.UserName, TargetType: "user_credential", TargetID: id, Action: "register", Outcome: "success"})
	response.Created(w, r, "api/userCredentials/"+id, id)
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "success"
	defer func() {
		observability.RecordAuthRequestDuration(r.Context(), "refresh", status, time.Since(start))
	}()

	id := strings.TrimSpace(chi.URLParam(r, "userCredentialsId"))
	if id == "" {
		status = "failure"
		observability.RecordAuthRefresh(r.Context(), "invalid_input")
		response.Error(w, r, http.StatusBadRequest, msgIDEmpty, detailsIDEmpty)
		return
	}

	result, err := h.authSvc.RefreshForCredential(r.Context(), id)
	if err != nil {
		status = "failure"
		outcome := apperr.Kind(err)
		observability.RecordAuthRefresh(r.Context(), outcome)
		observability.Audit(r, observability.AuditInput{EventName: "auth.refresh", TargetType: "user_credential", TargetID: id, Action: "refresh", Outcome: "failure", Reason: outcome})
		writeError(w, r, err, failures{
			http.StatusBadRequest: {message: msgIDEmpty, details: detailsIDEmpty},
			http.StatusNotFound:   {message: msgUserNotExists},
		})
		return
	}

	observability.RecordAuthRefresh(r.Context(), "success")
	observability.Audit(r, observability.AuditInput{EventName: "auth.refresh", TargetType: "user_credential", TargetID: id, Action: "refresh", Outcome: "success"})
	response.JSON(w, r, http.StatusOK, result)
}
