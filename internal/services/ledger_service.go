package services

import (
	"context"
	"fmt"
	"sync"

	"fka/internal/claims"
	"fka/internal/core"
	"fka/internal/log"
)

// LedgerService owns the ledger of the current claim and writes the full
// snapshot back to the store after every structural change.
type LedgerService struct {
	mu     sync.Mutex
	store  claims.ExpenseStore
	ledger *core.Ledger
	logger *log.Logger
}

// NewLedgerService hydrates the ledger from the store.
func NewLedgerService(ctx context.Context, store claims.ExpenseStore, logger *log.Logger) (*LedgerService, error) {
	if logger == nil {
		logger = log.Discard()
	}
	expenses, err := store.GetExpenses(ctx)
	if err != nil {
		return nil, fmt.Errorf("load expenses: %w", err)
	}
	return &LedgerService{
		store:  store,
		ledger: core.NewLedger(expenses...),
		logger: logger.WithComponent(log.ComponentLedger),
	}, nil
}

// Add stores a new leg. A record without id gets a fresh one.
func (s *LedgerService) Add(ctx context.Context, r core.ExpenseRecord) (core.ExpenseRecord, error) {
	if err := r.Validate(); err != nil {
		return core.ExpenseRecord{}, fmt.Errorf("add expense: %w", err)
	}
	if r.ID == "" {
		r.ID = core.NewID()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.ledger.All()
	s.ledger.Add(r)
	if err := s.persist(ctx, before); err != nil {
		return core.ExpenseRecord{}, err
	}
	s.logger.InfoContext(ctx, "Expense added", log.NewFields().
		WithOperation(log.OpAdd).
		WithExpense(r.ID, string(r.Direction), r.TotalReimbursement().Cents).
		ToSlice()...)
	return r, nil
}

// Edit replaces the leg with the given id, keeping its id and direction.
// An unknown id is a no-op and reports false.
func (s *LedgerService) Edit(ctx context.Context, id string, r core.ExpenseRecord) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.ledger.Find(id)
	if !ok {
		s.logger.DebugContext(ctx, "Edit of unknown expense ignored", log.FieldExpenseID, id)
		return false, nil
	}
	r.ID = id
	r.Direction = existing.Direction
	if err := r.Validate(); err != nil {
		return false, fmt.Errorf("edit expense: %w", err)
	}

	before := s.ledger.All()
	s.ledger.Edit(id, r)
	if err := s.persist(ctx, before); err != nil {
		return false, err
	}
	s.logger.InfoContext(ctx, "Expense edited", log.NewFields().
		WithOperation(log.OpEdit).
		WithExpense(id, string(r.Direction), r.TotalReimbursement().Cents).
		ToSlice()...)
	return true, nil
}

// Delete removes the leg with the given id. An unknown id is a no-op.
func (s *LedgerService) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.ledger.All()
	if !s.ledger.Delete(id) {
		s.logger.DebugContext(ctx, "Delete of unknown expense ignored", log.FieldExpenseID, id)
		return false, nil
	}
	if err := s.persist(ctx, before); err != nil {
		return false, err
	}
	s.logger.InfoContext(ctx, "Expense deleted", log.FieldOperation, log.OpDelete, log.FieldExpenseID, id)
	return true, nil
}

// GenerateReturnTrip replaces the return legs with the mirrored outbound legs.
func (s *LedgerService) GenerateReturnTrip(ctx context.Context) ([]core.ExpenseRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.ledger.All()
	s.ledger.GenerateReturnTrip()
	if err := s.persist(ctx, before); err != nil {
		return nil, err
	}
	from := s.ledger.Partition(core.DirectionFrom)
	s.logger.InfoContext(ctx, "Return trip generated", log.FieldOperation, log.OpReturnTrip, log.FieldCount, len(from))
	return from, nil
}

// ReplaceAll swaps the whole ledger, e.g. after an import.
func (s *LedgerService) ReplaceAll(ctx context.Context, records []core.ExpenseRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.ledger.All()
	s.ledger.ReplaceAll(records)
	return s.persist(ctx, before)
}

// Draft returns a prefilled record for a new leg in direction d.
func (s *LedgerService) Draft(d core.Direction) core.ExpenseRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Draft(d)
}

func (s *LedgerService) Partition(d core.Direction) []core.ExpenseRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Partition(d)
}

func (s *LedgerService) All() []core.ExpenseRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.All()
}

func (s *LedgerService) Sum() core.Money {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Sum()
}

// persist writes the ledger to the store. On failure the ledger is reset to
// before, so memory and store keep the same snapshot.
func (s *LedgerService) persist(ctx context.Context, before []core.ExpenseRecord) error {
	all := s.ledger.All()
	if err := s.store.SetExpenses(ctx, all); err != nil {
		s.ledger.ReplaceAll(before)
		s.logger.ErrorContext(ctx, "Failed to persist expenses", log.FieldOperation, log.OpPersist, log.FieldError, err)
		return fmt.Errorf("persist expenses: %w", err)
	}
	s.logger.DebugContext(ctx, "Expenses persisted", log.FieldCount, len(all))
	return nil
}
