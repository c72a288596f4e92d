package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Repository persists attendance records in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Insert writes a record, relying on the UNIQUE (person_id, date) constraint
// to arbitrate concurrent check-ins: whichever insert lands first wins, the
// rest see zero affected rows and report ErrAlreadyMarked.
func (r *Repository) Insert(ctx context.Context, rec Record) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO attendance (person_id, name, date, time, timestamp)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (person_id, date) DO NOTHING
		RETURNING id
	`, rec.PersonID, rec.Name, rec.Date, rec.Time, rec.Timestamp).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrAlreadyMarked
	}
	if err != nil {
		return 0, fmt.Errorf("insert attendance: %w", err)
	}
	return id, nil
}

// List returns the (name, date, time) projection in storage order.
func (r *Repository) List(ctx context.Context) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name, date, time FROM attendance ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Name, &e.Date, &e.Time); err != nil {
			return nil, fmt.Errorf("scan attendance: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Clear removes every record and reports how many were deleted.
func (r *Repository) Clear(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM attendance`)
	if err != nil {
		return 0, fmt.Errorf("clear attendance: %w", err)
	}
	return res.RowsAffected()
}
