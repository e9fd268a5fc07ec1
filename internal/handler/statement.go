package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/corebank/account-service/internal/logging"
	"github.com/corebank/account-service/internal/service"
)

type statementService interface {
	Generate(ctx context.Context, customerID uuid.UUID, start, end time.Time) (*service.Statement, error)
}

type StatementHandler struct {
	statements statementService
}

func NewStatementHandler(statements statementService) *StatementHandler {
	return &StatementHandler{statements: statements}
}

type accountStatementDTO struct {
	Account        accountDTO    `json:"account"`
	OpeningBalance string        `json:"opening_balance"`
	ClosingBalance string        `json:"closing_balance"`
	Movements      []movementDTO `json:"movements"`
}

type statementDTO struct {
	CustomerID   uuid.UUID             `json:"customer_id"`
	CustomerName string                `json:"customer_name"`
	StartDate    string                `json:"start_date"`
	EndDate      string                `json:"end_date"`
	Accounts     []accountStatementDTO `json:"accounts"`
}

func (h *StatementHandler) Get(w http.ResponseWriter, r *http.Request) {
	customerID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	start, end, fields := parseDateRange(r)
	if len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	statement, err := h.statements.Generate(r.Context(), customerID, start, end)
	if err != nil {
		logging.FromContext(r.Context()).Warn("failed to generate statement", "error", err)
		RespondDomainError(w, err)
		return
	}

	dto := statementDTO{
		CustomerID:   statement.Customer.CustomerID,
		CustomerName: statement.Customer.Name,
		StartDate:    statement.StartDate.Format(time.RFC3339),
		EndDate:      statement.EndDate.Format(time.RFC3339),
		Accounts:     make([]accountStatementDTO, len(statement.Accounts)),
	}
	for i := range statement.Accounts {
		as := &statement.Accounts[i]
		movements := make([]movementDTO, len(as.Movements))
		for j := range as.Movements {
			movements[j] = toMovementDTO(&as.Movements[j])
		}
		dto.Accounts[i] = accountStatementDTO{
			Account:        toAccountDTO(&as.Account),
			OpeningBalance: formatAmount(as.OpeningBalance),
			ClosingBalance: formatAmount(as.ClosingBalance),
			Movements:      movements,
		}
	}

	RespondSuccess(w, http.StatusOK, dto)
}

// Dates are accepted as RFC3339 timestamps or plain dates; a plain end date is
// extended to the end of that day.
func parseDateRange(r *http.Request) (time.Time, time.Time, []FieldError) {
	var fields []FieldError

	start, err := parseDateParam(r.URL.Query().Get("start_date"), false)
	if err != nil {
		fields = append(fields, FieldError{Field: "start_date", Message: "must be an RFC3339 timestamp or YYYY-MM-DD date"})
	}

	end, err := parseDateParam(r.URL.Query().Get("end_date"), true)
	if err != nil {
		fields = append(fields, FieldError{Field: "end_date", Message: "must be an RFC3339 timestamp or YYYY-MM-DD date"})
	}

	if len(fields) == 0 && end.Before(start) {
		fields = append(fields, FieldError{Field: "end_date", Message: "must not be before start_date"})
	}

	return start, end, fields
}

func parseDateParam(raw string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}
