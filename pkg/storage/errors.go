package storage

import "errors"

// ErrAccountNotFound is returned when the requested account does not exist in this ledger.
var ErrAccountNotFound = errors.New("account not found")

// ErrDuplicateAccount is returned when creating an account whose ID already exists in this ledger.
var ErrDuplicateAccount = errors.New("account already exists")

// ErrInsufficientFunds is returned when a debit would take an account balance below zero.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrInvalidAmount is returned when a debit or credit amount is not strictly positive.
var ErrInvalidAmount = errors.New("invalid amount")

// ErrTransferNotFound is returned when the requested transfer record does not exist.
var ErrTransferNotFound = errors.New("transfer not found")

// ErrStateConflict is returned when a transfer state transition's precondition
// does not hold, e.g. another process already advanced the saga.
var ErrStateConflict = errors.New("transfer not in expected state")
