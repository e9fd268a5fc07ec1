package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/corebank/account-service/internal/domain"
	"github.com/corebank/account-service/internal/logging"
	"github.com/corebank/account-service/internal/service/transaction"
)

type transactionService interface {
	Execute(ctx context.Context, req transaction.ExecuteRequest) (*domain.Transaction, error)
	GetTransaction(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	ListTransactions(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]domain.Transaction, int, error)
	GetMovements(ctx context.Context, transactionID uuid.UUID) ([]domain.Movement, error)
}

type TransactionHandler struct {
	transactions transactionService
}

func NewTransactionHandler(transactions transactionService) *TransactionHandler {
	return &TransactionHandler{transactions: transactions}
}

type executeTransactionRequest struct {
	AccountID     string `json:"account_id"`
	DestAccountID string `json:"dest_account_id"`
	Type          string `json:"type"`
	Amount        string `json:"amount"`
	Description   string `json:"description"`
}

func (r executeTransactionRequest) Validate() []FieldError {
	var errs []FieldError

	if r.AccountID == "" {
		errs = append(errs, FieldError{Field: "account_id", Message: "required"})
	} else if _, err := uuid.Parse(r.AccountID); err != nil {
		errs = append(errs, FieldError{Field: "account_id", Message: "must be a valid uuid"})
	}

	if r.Type == "" {
		errs = append(errs, FieldError{Field: "type", Message: "required"})
	} else if !domain.TransactionType(r.Type).IsValid() {
		errs = append(errs, FieldError{Field: "type", Message: "must be deposit, withdrawal, or transfer"})
	}

	if r.Amount == "" {
		errs = append(errs, FieldError{Field: "amount", Message: "required"})
	} else if minor, err := parseAmount(r.Amount); err != nil || minor <= 0 {
		errs = append(errs, FieldError{Field: "amount", Message: "must be a positive decimal amount"})
	}

	if domain.TransactionType(r.Type) == domain.TransactionTypeTransfer {
		if r.DestAccountID == "" {
			errs = append(errs, FieldError{Field: "dest_account_id", Message: "required for transfers"})
		} else if _, err := uuid.Parse(r.DestAccountID); err != nil {
			errs = append(errs, FieldError{Field: "dest_account_id", Message: "must be a valid uuid"})
		}
	}

	return errs
}

type movementDTO struct {
	ID           uuid.UUID `json:"id"`
	AccountID    uuid.UUID `json:"account_id"`
	Type         string    `json:"type"`
	Amount       string    `json:"amount"`
	BalanceAfter string    `json:"balance_after"`
	Description  string    `json:"description,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func toMovementDTO(m *domain.Movement) movementDTO {
	return movementDTO{
		ID:           m.ID,
		AccountID:    m.AccountID,
		Type:         string(m.Type),
		Amount:       formatAmount(m.Amount),
		BalanceAfter: formatAmount(m.BalanceAfter),
		Description:  m.Description,
		CreatedAt:    m.CreatedAt,
	}
}

type transactionDTO struct {
	ID              uuid.UUID     `json:"id"`
	AccountID       uuid.UUID     `json:"account_id"`
	DestAccountID   *uuid.UUID    `json:"dest_account_id,omitempty"`
	Type            string        `json:"type"`
	Amount          string        `json:"amount"`
	Description     string        `json:"description,omitempty"`
	Status          string        `json:"status"`
	RejectionReason *string       `json:"rejection_reason,omitempty"`
	Movements       []movementDTO `json:"movements,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
}

func toTransactionDTO(t *domain.Transaction, movements []domain.Movement) transactionDTO {
	dto := transactionDTO{
		ID:              t.ID,
		AccountID:       t.AccountID,
		DestAccountID:   t.DestAccountID,
		Type:            string(t.Type),
		Amount:          formatAmount(t.Amount),
		Description:     t.Description,
		Status:          string(t.Status),
		RejectionReason: t.RejectionReason,
		CreatedAt:       t.CreatedAt,
	}
	for i := range movements {
		dto.Movements = append(dto.Movements, toMovementDTO(&movements[i]))
	}
	return dto
}

func (h *TransactionHandler) Execute(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	var req executeTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	accountID, _ := uuid.Parse(req.AccountID)
	amount, _ := parseAmount(req.Amount)

	execReq := transaction.ExecuteRequest{
		AccountID:   accountID,
		Type:        domain.TransactionType(req.Type),
		Amount:      amount,
		Description: req.Description,
	}
	if req.DestAccountID != "" {
		destID, _ := uuid.Parse(req.DestAccountID)
		execReq.DestAccountID = &destID
	}

	txn, err := h.transactions.Execute(r.Context(), execReq)
	if err != nil {
		log.Warn("transaction rejected", "error", err)
		RespondDomainError(w, err)
		return
	}

	movements, err := h.transactions.GetMovements(r.Context(), txn.ID)
	if err != nil {
		log.Error("failed to load movements for transaction", "transaction_id", txn.ID, "error", err)
		movements = nil
	}

	w.Header().Set("Location", fmt.Sprintf("/v1/transactions/%s", txn.ID))
	RespondSuccess(w, http.StatusCreated, toTransactionDTO(txn, movements))
}

func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	transactionID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	txn, err := h.transactions.GetTransaction(r.Context(), transactionID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	movements, err := h.transactions.GetMovements(r.Context(), txn.ID)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to load movements", "transaction_id", txn.ID, "error", err)
		movements = nil
	}

	RespondSuccess(w, http.StatusOK, toTransactionDTO(txn, movements))
}

type transactionPage struct {
	Transactions []transactionDTO `json:"transactions"`
	Total        int              `json:"total"`
	Limit        int              `json:"limit"`
	Offset       int              `json:"offset"`
}

func (h *TransactionHandler) ListByAccount(w http.ResponseWriter, r *http.Request) {
	accountID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	limit := queryInt(r, "limit", 20, 100)
	offset := queryInt(r, "offset", 0, 1<<30)

	transactions, total, err := h.transactions.ListTransactions(r.Context(), accountID, limit, offset)
	if err != nil {
		logging.FromContext(r.Context()).Warn("failed to list transactions", "error", err)
		RespondDomainError(w, err)
		return
	}

	page := transactionPage{
		Transactions: make([]transactionDTO, len(transactions)),
		Total:        total,
		Limit:        limit,
		Offset:       offset,
	}
	for i := range transactions {
		page.Transactions[i] = toTransactionDTO(&transactions[i], nil)
	}

	RespondSuccess(w, http.StatusOK, page)
}

func queryInt(r *http.Request, name string, def, max int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}
