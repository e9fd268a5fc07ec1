package handler

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func fieldNames(errs []FieldError) []string {
	names := make([]string, 0, len(errs))
	for _, e := range errs {
		names = append(names, e.Field)
	}
	return names
}

func TestCreateAccountRequestValidate(t *testing.T) {
	tests := []struct {
		name       string
		req        createAccountRequest
		wantFields []string
	}{
		{
			name: "valid",
			req:  createAccountRequest{CustomerID: uuid.NewString(), Type: "savings", InitialBalance: "100.00"},
		},
		{
			name: "valid without initial balance",
			req:  createAccountRequest{CustomerID: uuid.NewString(), Type: "checking"},
		},
		{
			name:       "missing everything",
			req:        createAccountRequest{},
			wantFields: []string{"customer_id", "type"},
		},
		{
			name:       "bad uuid",
			req:        createAccountRequest{CustomerID: "nope", Type: "savings"},
			wantFields: []string{"customer_id"},
		},
		{
			name:       "bad type",
			req:        createAccountRequest{CustomerID: uuid.NewString(), Type: "offshore"},
			wantFields: []string{"type"},
		},
		{
			name:       "negative initial balance",
			req:        createAccountRequest{CustomerID: uuid.NewString(), Type: "savings", InitialBalance: "-5.00"},
			wantFields: []string{"initial_balance"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			errs := tc.req.Validate()
			assert.ElementsMatch(t, tc.wantFields, fieldNames(errs))
		})
	}
}

func TestExecuteTransactionRequestValidate(t *testing.T) {
	tests := []struct {
		name       string
		req        executeTransactionRequest
		wantFields []string
	}{
		{
			name: "valid deposit",
			req:  executeTransactionRequest{AccountID: uuid.NewString(), Type: "deposit", Amount: "10.00"},
		},
		{
			name: "valid transfer",
			req: executeTransactionRequest{
				AccountID:     uuid.NewString(),
				DestAccountID: uuid.NewString(),
				Type:          "transfer",
				Amount:        "10.00",
			},
		},
		{
			name:       "missing everything",
			req:        executeTransactionRequest{},
			wantFields: []string{"account_id", "type", "amount"},
		},
		{
			name:       "zero amount",
			req:        executeTransactionRequest{AccountID: uuid.NewString(), Type: "deposit", Amount: "0.00"},
			wantFields: []string{"amount"},
		},
		{
			name:       "too many decimal places",
			req:        executeTransactionRequest{AccountID: uuid.NewString(), Type: "deposit", Amount: "10.005"},
			wantFields: []string{"amount"},
		},
		{
			name:       "unknown type",
			req:        executeTransactionRequest{AccountID: uuid.NewString(), Type: "wire", Amount: "10.00"},
			wantFields: []string{"type"},
		},
		{
			name:       "transfer without destination",
			req:        executeTransactionRequest{AccountID: uuid.NewString(), Type: "transfer", Amount: "10.00"},
			wantFields: []string{"dest_account_id"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			errs := tc.req.Validate()
			assert.ElementsMatch(t, tc.wantFields, fieldNames(errs))
		})
	}
}
