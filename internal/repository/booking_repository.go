package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/travel-experience-marketplace/internal/model"
)

// BookingRepo provides persistence for bookings and the transactional
// primitives behind the confirm/decline state machine. Status changes
// are expressed as conditional updates so the PENDING-only guard is
// enforced by the storage engine itself, not just by a read that may
// be stale by the time the write lands.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// DB exposes the underlying database handle.
func (r *BookingRepo) DB() *sql.DB { return r.db }

// BookingRecord mirrors the schema of the bookings table.
type BookingRecord struct {
	ID            uint64  `json:"id"`
	SlotID        uint64  `json:"slot_id"`
	CustomerName  string  `json:"customer_name"`
	CustomerPhone string  `json:"customer_phone"`
	Pax           uint32  `json:"pax"`
	Note          *string `json:"note,omitempty"`
	Status        string  `json:"status"`
	CreatedAt     string  `json:"created_at"`
}

// Create inserts a new booking in PENDING state. No capacity is
// checked or reserved here; the caller performs the advisory
// slot-full check and capacity is enforced only at confirmation. The
// generated ID and creation timestamp are populated on the record.
func (r *BookingRepo) Create(ctx context.Context, b *BookingRecord) error {
	b.Status = string(model.BookingPending)
	const q = `INSERT INTO bookings (slot_id, customer_name, customer_phone, pax, note, status) VALUES (?, ?, ?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, q, b.SlotID, b.CustomerName, b.CustomerPhone, b.Pax, b.Note, b.Status)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	const sel = `SELECT created_at FROM bookings WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, b.ID).Scan(&b.CreatedAt)
}

// BookingOwnershipInfo carries everything the confirm and decline
// transactions need from a single join across the ownership chain
// booking → slot → experience: the booking's state and pax, the slot
// capacity snapshot, and the fields the confirmed event is built from.
type BookingOwnershipInfo struct {
	BookingID       uint64
	SlotID          uint64
	ExperienceID    uint64
	OperatorID      uint64
	Pax             uint32
	Status          model.BookingStatus
	CustomerName    string
	SeatsTotal      uint32
	SeatsBooked     uint32
	SlotStartTime   string
	SlotEndTime     string
	ExperienceTitle string
	ExperienceCity  string
}

// GetForOperatorTx loads a booking with its slot and experience inside
// the caller's transaction and enforces the ownership chain against
// the calling operator. It returns ErrBookingNotFound when the booking
// is absent and ErrForbidden when the parent experience belongs to a
// different operator.
func (r *BookingRepo) GetForOperatorTx(ctx context.Context, tx *sql.Tx, bookingID, operatorID uint64) (*BookingOwnershipInfo, error) {
	const q = `SELECT b.id, b.slot_id, b.pax, b.status, b.customer_name,
					  s.experience_id, s.seats_total, s.seats_booked, s.start_time, s.end_time,
					  e.operator_id, e.title, e.city
			   FROM bookings b
			   JOIN slots s ON s.id = b.slot_id
			   JOIN experiences e ON e.id = s.experience_id
			   WHERE b.id = ?`
	var info BookingOwnershipInfo
	var status string
	err := tx.QueryRowContext(ctx, q, bookingID).Scan(
		&info.BookingID, &info.SlotID, &info.Pax, &status, &info.CustomerName,
		&info.ExperienceID, &info.SeatsTotal, &info.SeatsBooked, &info.SlotStartTime, &info.SlotEndTime,
		&info.OperatorID, &info.ExperienceTitle, &info.ExperienceCity,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	info.Status = model.BookingStatus(status)
	if info.OperatorID != operatorID {
		return nil, ErrForbidden
	}
	return &info, nil
}

// UpdateStatusTx transitions a booking between states as a conditional
// UPDATE inside the caller's transaction. The WHERE clause repeats the
// expected current status, so when two operations race on the same
// booking exactly one of them matches a row; the loser observes zero
// affected rows and must treat the transition as rejected. Returns
// false when the booking was not in the expected state.
func (r *BookingRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, bookingID uint64, from, to model.BookingStatus) (bool, error) {
	if !from.CanTransitionTo(to) {
		return false, nil
	}
	const q = `UPDATE bookings SET status = ?, updated_at = ? WHERE id = ? AND status = ?`
	result, err := tx.ExecContext(ctx, q, string(to), time.Now().UTC().Format(timeLayout), bookingID, string(from))
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// GetByID returns a single booking. It returns ErrBookingNotFound when
// no row matches.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*BookingRecord, error) {
	const q = `SELECT id, slot_id, customer_name, customer_phone, pax, note, status, created_at
			   FROM bookings WHERE id = ?`
	var b BookingRecord
	var note sql.NullString
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&b.ID, &b.SlotID, &b.CustomerName, &b.CustomerPhone, &b.Pax, &note, &b.Status, &b.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	if note.Valid {
		v := note.String
		b.Note = &v
	}
	return &b, nil
}

// ListBySlotForOwner returns all bookings on a slot, newest first,
// after verifying that the slot's experience belongs to the calling
// operator. It returns ErrSlotNotFound when the slot is absent and
// ErrForbidden on an ownership mismatch.
func (r *BookingRepo) ListBySlotForOwner(ctx context.Context, slotID, operatorID uint64) ([]BookingRecord, error) {
	const checkQ = `SELECT e.operator_id
					FROM slots s
					JOIN experiences e ON e.id = s.experience_id
					WHERE s.id = ?`
	var ownerID uint64
	if err := r.db.QueryRowContext(ctx, checkQ, slotID).Scan(&ownerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}
	if ownerID != operatorID {
		return nil, ErrForbidden
	}
	const q = `SELECT id, slot_id, customer_name, customer_phone, pax, note, status, created_at
			   FROM bookings
			   WHERE slot_id = ?
			   ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, slotID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	bookings := make([]BookingRecord, 0)
	for rows.Next() {
		var b BookingRecord
		var note sql.NullString
		if err := rows.Scan(&b.ID, &b.SlotID, &b.CustomerName, &b.CustomerPhone, &b.Pax, &note, &b.Status, &b.CreatedAt); err != nil {
			return nil, err
		}
		if note.Valid {
			v := note.String
			b.Note = &v
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return bookings, nil
}
