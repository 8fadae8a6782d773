package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// SlotRepo provides persistence for slots: the capacity windows of an
// experience. Slot rows are only ever created through the bulk insert
// and their seats_booked counter is only ever advanced by the booking
// confirmation transaction.
type SlotRepo struct {
	db *sql.DB
}

// NewSlotRepo returns a new SlotRepo bound to the given database.
func NewSlotRepo(db *sql.DB) *SlotRepo { return &SlotRepo{db: db} }

// DB exposes the underlying database handle so handlers can open
// transactions spanning slots and bookings.
func (r *SlotRepo) DB() *sql.DB { return r.db }

// SlotRecord mirrors the schema of the slots table. Timestamps are
// stored as formatted UTC strings (see timeLayout).
type SlotRecord struct {
	ID           uint64 `json:"id"`
	ExperienceID uint64 `json:"experience_id"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	SeatsTotal   uint32 `json:"seats_total"`
	SeatsBooked  uint32 `json:"seats_booked"`
}

// SeatsLeft reports the remaining unconfirmed capacity of the slot.
// The value is a snapshot; only the conditional update in
// ReserveSeatsTx is authoritative.
func (s *SlotRecord) SeatsLeft() uint32 {
	if s.SeatsBooked >= s.SeatsTotal {
		return 0
	}
	return s.SeatsTotal - s.SeatsBooked
}

// CreateBulkTx inserts the slot rows within the provided transaction,
// all with seats_booked = 0, and returns the generated IDs in
// insertion order. Validation of the time windows happens in the
// handler before the transaction is opened. Each row goes through a
// prepared single-row insert so its ID comes straight from
// LastInsertId; deriving IDs from the first row of a multi-row insert
// breaks on MySQL 8's interleaved auto-increment allocation
// (innodb_autoinc_lock_mode=2) under concurrent inserts. The
// transaction keeps the batch all-or-nothing. Passing an empty slice
// has no effect and returns nil.
func (r *SlotRepo) CreateBulkTx(ctx context.Context, tx *sql.Tx, experienceID uint64, slots []SlotRecord) ([]uint64, error) {
	if len(slots) == 0 {
		return nil, nil
	}
	const q = `INSERT INTO slots (experience_id, start_time, end_time, seats_total, seats_booked)
			   VALUES (?, ?, ?, ?, 0)`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()
	ids := make([]uint64, 0, len(slots))
	for _, s := range slots {
		result, err := stmt.ExecContext(ctx, experienceID, s.StartTime, s.EndTime, s.SeatsTotal)
		if err != nil {
			return nil, err
		}
		id, err := result.LastInsertId()
		if err != nil {
			return nil, err
		}
		ids = append(ids, uint64(id))
	}
	return ids, nil
}

// GetByID returns a single slot. It returns ErrSlotNotFound when no
// row matches.
func (r *SlotRepo) GetByID(ctx context.Context, id uint64) (*SlotRecord, error) {
	const q = `SELECT id, experience_id, start_time, end_time, seats_total, seats_booked
			   FROM slots WHERE id = ?`
	var s SlotRecord
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&s.ID, &s.ExperienceID, &s.StartTime, &s.EndTime, &s.SeatsTotal, &s.SeatsBooked,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}
	return &s, nil
}

// GetByIDForOwner returns a slot after re-deriving the ownership chain
// slot → experience → operator. It returns ErrSlotNotFound when the
// slot is absent and ErrForbidden when the experience behind it is
// owned by another operator.
func (r *SlotRepo) GetByIDForOwner(ctx context.Context, id, operatorID uint64) (*SlotRecord, error) {
	const q = `SELECT s.id, s.experience_id, s.start_time, s.end_time, s.seats_total, s.seats_booked, e.operator_id
			   FROM slots s
			   JOIN experiences e ON e.id = s.experience_id
			   WHERE s.id = ?`
	var s SlotRecord
	var ownerID uint64
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&s.ID, &s.ExperienceID, &s.StartTime, &s.EndTime, &s.SeatsTotal, &s.SeatsBooked, &ownerID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}
	if ownerID != operatorID {
		return nil, ErrForbidden
	}
	return &s, nil
}

// ListUpcoming returns the slots of an experience whose start_time
// falls within [from, until], ordered by ascending start_time. The
// window bounds must be UTC; they are formatted with the shared
// storage layout so string comparison matches chronological order.
func (r *SlotRepo) ListUpcoming(ctx context.Context, experienceID uint64, from, until time.Time) ([]SlotRecord, error) {
	const q = `SELECT id, experience_id, start_time, end_time, seats_total, seats_booked
			   FROM slots
			   WHERE experience_id = ? AND start_time >= ? AND start_time <= ?
			   ORDER BY start_time`
	rows, err := r.db.QueryContext(ctx, q, experienceID,
		from.UTC().Format(timeLayout), until.UTC().Format(timeLayout))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	slots := make([]SlotRecord, 0)
	for rows.Next() {
		var s SlotRecord
		if err := rows.Scan(&s.ID, &s.ExperienceID, &s.StartTime, &s.EndTime, &s.SeatsTotal, &s.SeatsBooked); err != nil {
			return nil, err
		}
		slots = append(slots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return slots, nil
}

// ReserveSeatsTx is the seat capacity guard. It advances seats_booked
// by pax only when the result stays within seats_total, as a single
// conditional UPDATE inside the caller's transaction. The check and
// the increment are one statement, so two transactions racing on the
// same slot serialize on the row lock and the loser re-evaluates the
// guard against the committed counter; the counter can never
// overshoot seats_total. Returns false when the guard rejects the
// reservation.
func (r *SlotRepo) ReserveSeatsTx(ctx context.Context, tx *sql.Tx, slotID uint64, pax uint32) (bool, error) {
	const q = `UPDATE slots
			   SET seats_booked = seats_booked + ?
			   WHERE id = ? AND seats_booked + ? <= seats_total`
	result, err := tx.ExecContext(ctx, q, pax, slotID, pax)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
