package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// OperatorRepo provides persistence for operator accounts and the
// read-only analytics aggregation across an operator's experiences,
// slots and bookings.
type OperatorRepo struct {
	db *sql.DB
}

// NewOperatorRepo returns a new OperatorRepo bound to the given database.
func NewOperatorRepo(db *sql.DB) *OperatorRepo { return &OperatorRepo{db: db} }

// DB exposes the underlying database handle so handlers can open
// transactions that span multiple repositories.
func (r *OperatorRepo) DB() *sql.DB { return r.db }

// OperatorRecord mirrors the schema of the operators table.
type OperatorRecord struct {
	ID        uint64
	Name      string
	Phone     string
	Email     string
	APIKey    string
	CreatedAt time.Time
}

// Create inserts a new operator row and populates the generated ID on
// the provided record. The API key must already be generated by the
// caller; the repository stores it verbatim.
func (r *OperatorRepo) Create(ctx context.Context, op *OperatorRecord) error {
	const q = `INSERT INTO operators (name, phone, email, api_key) VALUES (?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, q, op.Name, op.Phone, op.Email, op.APIKey)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	op.ID = uint64(id)
	return nil
}

// GetByAPIKey resolves an opaque API key to the owning operator. It
// returns ErrOperatorNotFound when no operator carries the key. This
// is the only place a raw credential is ever looked at; everything
// downstream sees only the resolved operator ID.
func (r *OperatorRepo) GetByAPIKey(ctx context.Context, apiKey string) (*OperatorRecord, error) {
	const q = `SELECT id, name, phone, email, api_key FROM operators WHERE api_key = ?`
	var op OperatorRecord
	err := r.db.QueryRowContext(ctx, q, apiKey).Scan(&op.ID, &op.Name, &op.Phone, &op.Email, &op.APIKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOperatorNotFound
		}
		return nil, err
	}
	return &op, nil
}

// AnalyticsSummary aggregates an operator's portfolio: how many
// experiences and slots they run, the booking totals per status, and
// how much of the offered capacity has been confirmed. Counts are
// computed read-only without locking, so they may trail concurrent
// confirms slightly; the seat counter is monotonically non-decreasing
// so a stale read never overstates availability.
type AnalyticsSummary struct {
	TotalExperiences uint64 `json:"total_experiences"`
	TotalSlots       uint64 `json:"total_slots"`
	TotalBookings    uint64 `json:"total_bookings"`
	Confirmed        uint64 `json:"confirmed"`
	Pending          uint64 `json:"pending"`
	Declined         uint64 `json:"declined"`
	SeatsOffered     uint64 `json:"seats_offered"`
	SeatsBooked      uint64 `json:"seats_booked"`
}

// Analytics builds the AnalyticsSummary for the given operator. The
// per-status booking counts are folded into a single pass over the
// bookings that hang off the operator's slots.
func (r *OperatorRepo) Analytics(ctx context.Context, operatorID uint64) (*AnalyticsSummary, error) {
	var sum AnalyticsSummary
	const expQ = `SELECT COUNT(*) FROM experiences WHERE operator_id = ?`
	if err := r.db.QueryRowContext(ctx, expQ, operatorID).Scan(&sum.TotalExperiences); err != nil {
		return nil, err
	}
	const slotQ = `SELECT COUNT(*), COALESCE(SUM(s.seats_total), 0), COALESCE(SUM(s.seats_booked), 0)
				   FROM slots s
				   JOIN experiences e ON e.id = s.experience_id
				   WHERE e.operator_id = ?`
	if err := r.db.QueryRowContext(ctx, slotQ, operatorID).Scan(&sum.TotalSlots, &sum.SeatsOffered, &sum.SeatsBooked); err != nil {
		return nil, err
	}
	const bookingQ = `SELECT b.status, COUNT(*)
					  FROM bookings b
					  JOIN slots s ON s.id = b.slot_id
					  JOIN experiences e ON e.id = s.experience_id
					  WHERE e.operator_id = ?
					  GROUP BY b.status`
	rows, err := r.db.QueryContext(ctx, bookingQ, operatorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var n uint64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		sum.TotalBookings += n
		switch status {
		case "CONFIRMED":
			sum.Confirmed = n
		case "PENDING":
			sum.Pending = n
		case "DECLINED":
			sum.Declined = n
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &sum, nil
}
