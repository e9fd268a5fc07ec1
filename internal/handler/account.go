package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/corebank/account-service/internal/domain"
	"github.com/corebank/account-service/internal/logging"
	"github.com/corebank/account-service/internal/service"
)

type accountService interface {
	CreateAccount(ctx context.Context, req service.CreateAccountRequest) (*domain.Account, error)
	GetAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	ListCustomerAccounts(ctx context.Context, customerID uuid.UUID) ([]domain.Account, error)
	ActivateAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	DeactivateAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error)
}

type AccountHandler struct {
	accounts accountService
}

func NewAccountHandler(accounts accountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

type createAccountRequest struct {
	CustomerID     string `json:"customer_id"`
	AccountNumber  string `json:"account_number"`
	Type           string `json:"type"`
	InitialBalance string `json:"initial_balance"`
}

func (r createAccountRequest) Validate() []FieldError {
	var errs []FieldError
	if r.CustomerID == "" {
		errs = append(errs, FieldError{Field: "customer_id", Message: "required"})
	} else if _, err := uuid.Parse(r.CustomerID); err != nil {
		errs = append(errs, FieldError{Field: "customer_id", Message: "must be a valid uuid"})
	}
	if r.Type == "" {
		errs = append(errs, FieldError{Field: "type", Message: "required"})
	} else if !domain.AccountType(r.Type).IsValid() {
		errs = append(errs, FieldError{Field: "type", Message: "must be savings or checking"})
	}
	if r.InitialBalance != "" {
		if minor, err := parseAmount(r.InitialBalance); err != nil || minor < 0 {
			errs = append(errs, FieldError{Field: "initial_balance", Message: "must be a non-negative decimal amount"})
		}
	}
	return errs
}

type accountDTO struct {
	ID            uuid.UUID `json:"id"`
	CustomerID    uuid.UUID `json:"customer_id"`
	AccountNumber string    `json:"account_number"`
	Type          string    `json:"type"`
	Balance       string    `json:"balance"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

func toAccountDTO(a *domain.Account) accountDTO {
	return accountDTO{
		ID:            a.ID,
		CustomerID:    a.CustomerID,
		AccountNumber: a.AccountNumber,
		Type:          string(a.Type),
		Balance:       formatAmount(a.Balance),
		Status:        string(a.Status),
		CreatedAt:     a.CreatedAt,
	}
}

func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	customerID, _ := uuid.Parse(req.CustomerID)
	var initialBalance int64
	if req.InitialBalance != "" {
		initialBalance, _ = parseAmount(req.InitialBalance)
	}

	account, err := h.accounts.CreateAccount(r.Context(), service.CreateAccountRequest{
		CustomerID:     customerID,
		AccountNumber:  req.AccountNumber,
		Type:           domain.AccountType(req.Type),
		InitialBalance: initialBalance,
	})
	if err != nil {
		logging.FromContext(r.Context()).Warn("failed to create account", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, toAccountDTO(account))
}

func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	accountID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	account, err := h.accounts.GetAccount(r.Context(), accountID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toAccountDTO(account))
}

func (h *AccountHandler) ListByCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	accounts, err := h.accounts.ListCustomerAccounts(r.Context(), customerID)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list accounts", "error", err)
		RespondDomainError(w, err)
		return
	}

	dtos := make([]accountDTO, len(accounts))
	for i := range accounts {
		dtos[i] = toAccountDTO(&accounts[i])
	}

	RespondSuccess(w, http.StatusOK, dtos)
}

func (h *AccountHandler) Activate(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, h.accounts.ActivateAccount)
}

func (h *AccountHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, h.accounts.DeactivateAccount)
}

func (h *AccountHandler) setStatus(w http.ResponseWriter, r *http.Request, fn func(context.Context, uuid.UUID) (*domain.Account, error)) {
	accountID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	account, err := fn(r.Context(), accountID)
	if err != nil {
		logging.FromContext(r.Context()).Warn("failed to change account status", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toAccountDTO(account))
}
