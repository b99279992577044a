package handler

import (
	"net/http"

	"github.com/sandeepkv93/workout-auth-service/internal/apperr"
	"github.com/sandeepkv93/workout-auth-service/internal/http/response"
	"github.com/sandeepkv93/workout-auth-service/internal/observability"
	"github.com/sandeepkv93/workout-auth-service/internal/service"
	"github.com/sandeepkv93/workout-auth-service/internal/validation"
)

type AccountHandler struct {
	accountSvc service.AccountServiceInterface
	validate   *validation.Validator
}

func NewAccountHandler(accountSvc service.AccountServiceInterface, validate *validation.Validator) *AccountHandler {
	return &AccountHandler{accountSvc: accountSvc, validate: validate}
}

var accountFailures = failures{
	http.StatusBadRequest: {message: "Id is invalid."},
	http.StatusNotFound:   {message: msgNoUserWithID},
}

func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "accountId")
	if !ok {
		return
	}
	account, err := h.accountSvc.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err, accountFailures)
		return
	}
	response.JSON(w, r, http.StatusOK, account)
}

func (h *AccountHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "accountId")
	if !ok {
		return
	}
	var in service.AccountUpdateInput
	err := decodeJSON(r, &in)
	if err == nil {
		err = h.validate.Struct(&in)
	}
	if err != nil {
		observability.RecordAccountUpdate(r.Context(), "invalid_input")
		writeError(w, r, err, failures{http.StatusBadRequest: {message: msgInvalidBody}})
		return
	}

	if err := h.accountSvc.Update(r.Context(), id, &in); err != nil {
		observability.RecordAccountUpdate(r.Context(), apperr.Kind(err))
		observability.Audit(r, observability.AuditInput{EventName: "account.update", TargetType: "user_account", TargetID: id, Action: "update", Outcome: "failure", Reason: apperr.Kind(err)})
		writeError(w, r, err, accountFailures)
		return
	}
	observability.RecordAccountUpdate(r.Context(), "success")
	observability.Audit(r, observability.AuditInput{EventName: "account.update", TargetType: "user_account", TargetID: id, Action: "update", Outcome: "success"})
	response.NoContent(w)
}
