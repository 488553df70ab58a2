package memory

import (
	"context"
	"errors"
	"io/fs"
	"sync"

	"fka/internal/claims"
	"fka/internal/core"
)

// Store keeps the claim in process memory.
type Store struct {
	mu    sync.Mutex
	claim core.Claim
	saved bool
}

func New() *Store {
	return &Store{}
}

// NewWithClaim returns a store that already holds c.
func NewWithClaim(c core.Claim) *Store {
	return &Store{claim: cloneClaim(c), saved: true}
}

// NewFromFile seeds the store from a YAML claim file. A missing file gives
// an empty store.
func NewFromFile(path string) (*Store, error) {
	c, err := claims.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return New(), nil
	}
	if err != nil {
		return nil, err
	}
	return NewWithClaim(c), nil
}

func (s *Store) GetExpenses(_ context.Context) ([]core.ExpenseRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneExpenses(s.claim.Expenses), nil
}

func (s *Store) SetExpenses(_ context.Context, expenses []core.ExpenseRecord) error {
	if err := core.CheckUniqueIDs(expenses); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.claim.Expenses = cloneExpenses(expenses)
	s.saved = true
	return nil
}

func (s *Store) GetReimbursement(_ context.Context) (core.Claim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.saved {
		return core.Claim{}, claims.ErrNotFound
	}
	return cloneClaim(s.claim), nil
}

func (s *Store) SetReimbursement(_ context.Context, c core.Claim) error {
	if err := core.CheckUniqueIDs(c.Expenses); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.claim = cloneClaim(c)
	s.saved = true
	return nil
}

func cloneClaim(c core.Claim) core.Claim {
	c.Expenses = cloneExpenses(c.Expenses)
	return c
}

func cloneExpenses(in []core.ExpenseRecord) []core.ExpenseRecord {
	if in == nil {
		return nil
	}
	out := make([]core.ExpenseRecord, len(in))
	for i, r := range in {
		r.Passengers = append([]string(nil), r.Passengers...)
		out[i] = r
	}
	return out
}
