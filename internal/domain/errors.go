package domain

import "errors"

var (
	ErrNotFound               = errors.New("not found")
	ErrInsufficientFunds      = errors.New("insufficient funds")
	ErrAccountInactive        = errors.New("account inactive")
	ErrAccountNotFound        = errors.New("account not found")
	ErrAccountNumberTaken     = errors.New("account number already in use")
	ErrCustomerNotFound       = errors.New("customer not found")
	ErrSelfTransfer           = errors.New("cannot transfer to same account")
	ErrInvalidAmount          = errors.New("amount must be greater than zero")
	ErrInvalidTransactionType = errors.New("invalid transaction type")
	ErrVersionConflict        = errors.New("optimistic lock conflict")
	ErrTransferCompensated    = errors.New("transfer credit failed, debit compensated")
	ErrInvalidRequest         = errors.New("invalid request")
)
