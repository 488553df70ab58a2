package storage

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type ClaimRow struct {
	ParticipantName string
	Email           string
	Street          string
	City            string
	CourseID        string
	CourseTitle     string
	CourseLocation  string
	CourseStart     string
	CourseEnd       string
	Iban            string
}

type ExpenseRow struct {
	ID             string
	Position       int64
	Direction      string
	Date           string
	StartLocation  string
	EndLocation    string
	Transport      string
	CarType        string
	DistanceKm     float64
	RatePerKmCents int64
	CostCents      int64
	Description    string
}

type PassengerRow struct {
	ExpenseID string
	Position  int64
	Name      string
}

const getClaim = `-- name: GetClaim :one
SELECT participant_name, email, street, city, course_id, course_title, course_location, course_start, course_end, iban
FROM claim WHERE id = 1
`

func (q *Queries) GetClaim(ctx context.Context) (ClaimRow, error) {
	row := q.db.QueryRowContext(ctx, getClaim)
	var i ClaimRow
	err := row.Scan(
		&i.ParticipantName,
		&i.Email,
		&i.Street,
		&i.City,
		&i.CourseID,
		&i.CourseTitle,
		&i.CourseLocation,
		&i.CourseStart,
		&i.CourseEnd,
		&i.Iban,
	)
	return i, err
}

const upsertClaim = `-- name: UpsertClaim :exec
INSERT INTO claim (id, participant_name, email, street, city, course_id, course_title, course_location, course_start, course_end, iban, updated_at)
VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(id) DO UPDATE SET
    participant_name = excluded.participant_name,
    email = excluded.email,
    street = excluded.street,
    city = excluded.city,
    course_id = excluded.course_id,
    course_title = excluded.course_title,
    course_location = excluded.course_location,
    course_start = excluded.course_start,
    course_end = excluded.course_end,
    iban = excluded.iban,
    updated_at = CURRENT_TIMESTAMP
`

func (q *Queries) UpsertClaim(ctx context.Context, arg ClaimRow) error {
	_, err := q.db.ExecContext(ctx, upsertClaim,
		arg.ParticipantName,
		arg.Email,
		arg.Street,
		arg.City,
		arg.CourseID,
		arg.CourseTitle,
		arg.CourseLocation,
		arg.CourseStart,
		arg.CourseEnd,
		arg.Iban,
	)
	return err
}

const listExpenses = `-- name: ListExpenses :many
SELECT id, position, direction, date, start_location, end_location, transport, car_type, distance_km, rate_per_km_cents, cost_cents, description
FROM expenses
ORDER BY position
`

func (q *Queries) ListExpenses(ctx context.Context) ([]ExpenseRow, error) {
	rows, err := q.db.QueryContext(ctx, listExpenses)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ExpenseRow
	for rows.Next() {
		var i ExpenseRow
		if err := rows.Scan(
			&i.ID,
			&i.Position,
			&i.Direction,
			&i.Date,
			&i.StartLocation,
			&i.EndLocation,
			&i.Transport,
			&i.CarType,
			&i.DistanceKm,
			&i.RatePerKmCents,
			&i.CostCents,
			&i.Description,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listPassengers = `-- name: ListPassengers :many
SELECT expense_id, position, name FROM expense_passengers ORDER BY expense_id, position
`

func (q *Queries) ListPassengers(ctx context.Context) ([]PassengerRow, error) {
	rows, err := q.db.QueryContext(ctx, listPassengers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []PassengerRow
	for rows.Next() {
		var i PassengerRow
		if err := rows.Scan(&i.ExpenseID, &i.Position, &i.Name); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteAllPassengers = `-- name: DeleteAllPassengers :exec
DELETE FROM expense_passengers
`

func (q *Queries) DeleteAllPassengers(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllPassengers)
	return err
}

const deleteAllExpenses = `-- name: DeleteAllExpenses :exec
DELETE FROM expenses
`

func (q *Queries) DeleteAllExpenses(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllExpenses)
	return err
}

const insertExpense = `-- name: InsertExpense :exec
INSERT INTO expenses (id, position, direction, date, start_location, end_location, transport, car_type, distance_km, rate_per_km_cents, cost_cents, description)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

func (q *Queries) InsertExpense(ctx context.Context, arg ExpenseRow) error {
	_, err := q.db.ExecContext(ctx, insertExpense,
		arg.ID,
		arg.Position,
		arg.Direction,
		arg.Date,
		arg.StartLocation,
		arg.EndLocation,
		arg.Transport,
		arg.CarType,
		arg.DistanceKm,
		arg.RatePerKmCents,
		arg.CostCents,
		arg.Description,
	)
	return err
}

const insertPassenger = `-- name: InsertPassenger :exec
INSERT INTO expense_passengers (expense_id, position, name) VALUES (?, ?, ?)
`

func (q *Queries) InsertPassenger(ctx context.Context, arg PassengerRow) error {
	_, err := q.db.ExecContext(ctx, insertPassenger, arg.ExpenseID, arg.Position, arg.Name)
	return err
}
