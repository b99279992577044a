package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sandeepkv93/workout-auth-service/internal/apperr"
	"github.com/sandeepkv93/workout-auth-service/internal/domain"
	"github.com/sandeepkv93/workout-auth-service/internal/http/middleware"
	"github.com/sandeepkv93/workout-auth-service/internal/http/response"
	"github.com/sandeepkv93/workout-auth-service/internal/observability"
	"github.com/sandeepkv93/workout-auth-service/internal/repository"
	"github.com/sandeepkv93/workout-auth-service/internal/service"
)

type CredentialHandler struct {
	credSvc service.CredentialServiceInterface
	authSvc service.AuthServiceInterface
}

func NewCredentialHandler(credSvc service.CredentialServiceInterface, authSvc service.AuthServiceInterface) *CredentialHandler {
	return &CredentialHandler{credSvc: credSvc, authSvc: authSvc}
}

type credentialPage struct {
	Items      []domain.UserCredential `json:"items"`
	Page       int                     `json:"page"`
	PageSize   int                     `json:"pageSize"`
	Total      int64                   `json:"total"`
	TotalPages int                     `json:"totalPages"`
}

var credentialReadFailures = failures{
	http.StatusBadRequest: {message: msgIDEmpty, details: detailsIDEmpty},
	http.StatusNotFound:   {message: msgUserNotExists},
}

var credentialWriteFailures = failures{
	http.StatusBadRequest: {message: msgIDEmpty, details: detailsIDEmpty},
	http.StatusNotFound:   {message: msgNoUserWithID},
}

// List returns every credential, or one page when page or pageSize is given.
func (h *CredentialHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("page") == "" && q.Get("pageSize") == "" {
		creds, err := h.credSvc.List(r.Context())
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		response.JSON(w, r, http.StatusOK, creds)
		return
	}

	page, errPage := strconv.Atoi(q.Get("page"))
	size, errSize := strconv.Atoi(q.Get("pageSize"))
	if (q.Get("page") != "" && errPage != nil) || (q.Get("pageSize") != "" && errSize != nil) {
		response.Error(w, r, http.StatusBadRequest, msgInvalidBody, "page and pageSize must be integers.")
		return
	}
	result, err := h.credSvc.ListPaged(r.Context(), repository.PageRequest{Page: page, PageSize: size})
	if err != nil {
		writeError(w, r, err, nil)
		return
	}
	response.JSON(w, r, http.StatusOK, credentialPage{
		Items:      result.Items,
		Page:       result.Page,
		PageSize:   result.PageSize,
		Total:      result.Total,
		TotalPages: result.TotalPages,
	})
}

func (h *CredentialHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	cred, err := h.credSvc.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err, credentialReadFailures)
		return
	}
	response.JSON(w, r, http.StatusOK, cred)
}

func (h *CredentialHandler) Roles(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	roles, err := h.credSvc.Roles(r.Context(), id)
	if err != nil {
		writeError(w, r, err, credentialReadFailures)
		return
	}
	response.JSON(w, r, http.StatusOK, roles)
}

func (h *CredentialHandler) Account(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	account, err := h.credSvc.Account(r.Context(), id)
	if err != nil {
		writeError(w, r, err, credentialReadFailures)
		return
	}
	response.JSON(w, r, http.StatusOK, account)
}

// Delete removes the credential; an unknown deleteType falls back to Hard.
func (h *CredentialHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	mode := domain.ParseDeleteType(r.URL.Query().Get("deleteType"))
	modeLabel := strings.ToLower(mode.String())

	if err := h.credSvc.Delete(r.Context(), id, mode); err != nil {
		observability.RecordCredentialDelete(r.Context(), modeLabel, apperr.Kind(err))
		observability.Audit(r, observability.AuditInput{EventName: "credential.delete", TargetType: "user_credential", TargetID: id, Action: "delete_" + modeLabel, Outcome: "failure", Reason: apperr.Kind(err)})
		writeError(w, r, err, credentialWriteFailures)
		return
	}
	observability.RecordCredentialDelete(r.Context(), modeLabel, "success")
	observability.Audit(r, observability.AuditInput{EventName: "credential.delete", TargetType: "user_credential", TargetID: id, Action: "delete_" + modeLabel, Outcome: "success"})
	response.NoContent(w)
}

func (h *CredentialHandler) ElevateToTrainer(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "success"
	defer func() {
		observability.RecordAuthRequestDuration(r.Context(), "trainer", status, time.Since(start))
	}()

	id, ok := pathID(w, r, "id")
	if !ok {
		status = "failure"
		return
	}
	actor := ""
	if claims, ok := middleware.ClaimsFromContext(r.Context()); ok {
		actor = claims.Subject
	}

	if err := h.authSvc.ElevateToTrainer(r.Context(), id); err != nil {
		status = "failure"
		observability.RecordTrainerElevation(r.Context(), apperr.Kind(err))
		observability.Audit(r, observability.AuditInput{EventName: "credential.elevate_trainer", ActorUserID: actor, TargetType: "user_credential", TargetID: id, Action: "elevate_trainer", Outcome: "failure", Reason: apperr.Kind(err)})
		writeError(w, r, err, credentialWriteFailures)
		return
	}
	observability.RecordTrainerElevation(r.Context(), "success")
	observability.Audit(r, observability.AuditInput{EventName: "credential.elevate_trainer", ActorUserID: actor, TargetType: "user_credential", TargetID: id, Action: "elevate_trainer", Outcome: "success"})
	response.NoContent(w)
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	id := strings.TrimSpace(chi.URLParam(r, name))
	if id == "" {
		response.Error(w, r, http.StatusBadRequest, msgIDEmpty, detailsIDEmpty)
		return "", false
	}
	return id, true
}
