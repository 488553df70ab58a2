// Package claims defines the store the ledger and the assembler read the
// claim from and write it back to.
package claims

import (
	"context"
	"errors"

	"fka/internal/core"
)

// ErrNotFound is returned by GetReimbursement before a claim was saved.
var ErrNotFound = errors.New("claim not found")

// Ports for outbound adapters.
type (
	ExpenseStore interface {
		GetExpenses(ctx context.Context) ([]core.ExpenseRecord, error)
		// SetExpenses replaces the stored legs with the full snapshot.
		SetExpenses(ctx context.Context, expenses []core.ExpenseRecord) error
	}

	ReimbursementReader interface {
		// GetReimbursement returns participant, course, IBAN and legs.
		GetReimbursement(ctx context.Context) (core.Claim, error)
	}

	ReimbursementWriter interface {
		SetReimbursement(ctx context.Context, claim core.Claim) error
	}

	Store interface {
		ExpenseStore
		ReimbursementReader
		ReimbursementWriter
	}
)
