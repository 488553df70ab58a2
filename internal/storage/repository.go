// Package storage persists the claim in a local SQLite database.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"fka/internal/claims"
	"fka/internal/core"
	"fka/internal/log"
)

const dateLayout = "2006-01-02"

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

var _ claims.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := RunMigrations(dbPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	slog.Debug("SQLite schema ready", log.FieldComponent, log.ComponentStorage, "version", version)

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// GetExpenses implements claims.ExpenseStore
func (r *SQLiteRepository) GetExpenses(ctx context.Context) ([]core.ExpenseRecord, error) {
	rows, err := r.queries.ListExpenses(ctx)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	passengers, err := r.queries.ListPassengers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list passengers: %w", err)
	}

	byExpense := make(map[string][]string)
	for _, p := range passengers {
		byExpense[p.ExpenseID] = append(byExpense[p.ExpenseID], p.Name)
	}

	expenses := make([]core.ExpenseRecord, 0, len(rows))
	for _, row := range rows {
		date, err := parseDate(row.Date)
		if err != nil {
			return nil, fmt.Errorf("expense %s date: %w", row.ID, err)
		}
		expenses = append(expenses, core.ExpenseRecord{
			ID:            row.ID,
			Direction:     core.Direction(row.Direction),
			Date:          date,
			StartLocation: row.StartLocation,
			EndLocation:   row.EndLocation,
			Transport:     core.Transport(row.Transport),
			CarType:       core.CarType(row.CarType),
			DistanceKm:    row.DistanceKm,
			RatePerKm:     core.Money{Cents: row.RatePerKmCents},
			Cost:          core.Money{Cents: row.CostCents},
			Passengers:    byExpense[row.ID],
			Description:   row.Description,
		})
	}
	return expenses, nil
}

// SetExpenses implements claims.ExpenseStore. The snapshot replaces all
// stored legs in one transaction.
func (r *SQLiteRepository) SetExpenses(ctx context.Context, expenses []core.ExpenseRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := setExpensesTx(ctx, r.queries.WithTx(tx), expenses); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit expenses: %w", err)
	}

	slog.InfoContext(ctx, "Expenses saved to SQLite",
		log.FieldComponent, log.ComponentStorage,
		log.FieldCount, len(expenses))
	return nil
}

func setExpensesTx(ctx context.Context, q *Queries, expenses []core.ExpenseRecord) error {
	if err := q.DeleteAllPassengers(ctx); err != nil {
		return fmt.Errorf("clear passengers: %w", err)
	}
	if err := q.DeleteAllExpenses(ctx); err != nil {
		return fmt.Errorf("clear expenses: %w", err)
	}

	for i, e := range expenses {
		err := q.InsertExpense(ctx, ExpenseRow{
			ID:             e.ID,
			Position:       int64(i),
			Direction:      string(e.Direction),
			Date:           formatDate(e.Date),
			StartLocation:  e.StartLocation,
			EndLocation:    e.EndLocation,
			Transport:      string(e.Transport),
			CarType:        string(e.CarType),
			DistanceKm:     e.DistanceKm,
			RatePerKmCents: e.RatePerKm.Cents,
			CostCents:      e.Cost.Cents,
			Description:    e.Description,
		})
		if err != nil {
			return fmt.Errorf("insert expense %s: %w", e.ID, err)
		}
		for j, name := range e.Passengers {
			if err := q.InsertPassenger(ctx, PassengerRow{ExpenseID: e.ID, Position: int64(j), Name: name}); err != nil {
				return fmt.Errorf("insert passenger of %s: %w", e.ID, err)
			}
		}
	}
	return nil
}

// GetReimbursement implements claims.ReimbursementReader
func (r *SQLiteRepository) GetReimbursement(ctx context.Context) (core.Claim, error) {
	expenses, err := r.GetExpenses(ctx)
	if err != nil {
		return core.Claim{}, err
	}

	row, err := r.queries.GetClaim(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		if len(expenses) == 0 {
			return core.Claim{}, claims.ErrNotFound
		}
		return core.Claim{Expenses: expenses}, nil
	}
	if err != nil {
		return core.Claim{}, fmt.Errorf("get claim: %w", err)
	}

	start, err := parseDate(row.CourseStart)
	if err != nil {
		return core.Claim{}, fmt.Errorf("course start: %w", err)
	}
	end, err := parseDate(row.CourseEnd)
	if err != nil {
		return core.Claim{}, fmt.Errorf("course end: %w", err)
	}

	return core.Claim{
		Participant: core.Participant{
			Name:   row.ParticipantName,
			Email:  row.Email,
			Street: row.Street,
			City:   row.City,
		},
		Course: core.Course{
			ID:       row.CourseID,
			Title:    row.CourseTitle,
			Location: row.CourseLocation,
			Start:    start,
			End:      end,
		},
		IBAN:     row.Iban,
		Expenses: expenses,
	}, nil
}

// SetReimbursement implements claims.ReimbursementWriter. Header and legs
// are replaced in one transaction.
func (r *SQLiteRepository) SetReimbursement(ctx context.Context, c core.Claim) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)
	err = q.UpsertClaim(ctx, ClaimRow{
		ParticipantName: c.Participant.Name,
		Email:           c.Participant.Email,
		Street:          c.Participant.Street,
		City:            c.Participant.City,
		CourseID:        c.Course.ID,
		CourseTitle:     c.Course.Title,
		CourseLocation:  c.Course.Location,
		CourseStart:     formatDate(c.Course.Start),
		CourseEnd:       formatDate(c.Course.End),
		Iban:            c.IBAN,
	})
	if err != nil {
		return fmt.Errorf("save claim: %w", err)
	}
	if err := setExpensesTx(ctx, q, c.Expenses); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit claim: %w", err)
	}

	slog.InfoContext(ctx, "Claim saved to SQLite",
		log.FieldComponent, log.ComponentStorage,
		log.FieldCourseID, c.Course.ID,
		log.FieldCount, len(c.Expenses))
	return nil
}

func parseDate(s string) (core.Date, error) {
	if s == "" {
		return core.Date{}, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return core.Date{}, err
	}
	return core.Date{Time: t}, nil
}

func formatDate(d core.Date) string {
	if d.IsEmpty() {
		return ""
	}
	return d.Format(dateLayout)
}
