// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrForbidden indicates that the calling operator does not
// own the experience behind a slot or booking, while ErrConflict
// signals that an operation cannot proceed because of the current
// state of the data (a booking that is no longer PENDING, or a slot
// without enough seats left).
package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// ErrForbidden is returned when the caller attempts an operation on a
// resource owned by another operator. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an update cannot be performed because
// of conflicting state, such as confirming a booking that has already
// been confirmed or declined. Handlers should translate this into an
// HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrSlotFull is returned when confirming a booking would push the
// slot's booked seats past its total capacity, and by the advisory
// check on booking creation when the slot is already saturated.
var ErrSlotFull = errors.New("slot full")

// ErrExperienceNotFound is returned when an experience does not exist
// or, on public paths, exists but is inactive.
var ErrExperienceNotFound = errors.New("experience not found")

// ErrSlotNotFound is returned when a slot lookup matches no row.
var ErrSlotNotFound = errors.New("slot not found")

// ErrBookingNotFound is returned when a booking lookup matches no row.
var ErrBookingNotFound = errors.New("booking not found")

// ErrOperatorNotFound is returned when no operator matches the
// presented API key.
var ErrOperatorNotFound = errors.New("operator not found")

// timeLayout is the canonical storage format for all timestamps.
// Values are formatted and compared as UTC strings so the same SQL
// runs against MySQL DATETIME columns and the sqlite driver used in
// tests.
const timeLayout = "2006-01-02 15:04:05"

// IsRetryable reports whether err is a transient storage failure that
// a caller may safely retry inside a fresh transaction. These come
// from the locking strategy rather than from business state: MySQL
// deadlocks (1213) and lock wait timeouts (1205), and the sqlite
// busy/locked conditions surfaced by the test driver.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1213 || me.Number == 1205
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked") ||
		strings.Contains(msg, "sqlite_busy")
}
