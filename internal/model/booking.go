// Package model holds the domain types shared across layers: the
// booking state machine and the AI content shapes. Row mirrors live
// next to the SQL in internal/repository.
package model

// BookingStatus enumerates the lifecycle states of a booking.
// PENDING is the only initial state; CONFIRMED and DECLINED are
// terminal and are never re-entered.
type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingDeclined  BookingStatus = "DECLINED"
)

// Valid reports whether s is one of the known statuses.
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingDeclined:
		return true
	}
	return false
}

// Terminal reports whether s admits no further transitions.
func (s BookingStatus) Terminal() bool {
	return s == BookingConfirmed || s == BookingDeclined
}

// CanTransitionTo reports whether the state machine allows moving
// from s to next.  Only PENDING→CONFIRMED and PENDING→DECLINED are
// legal; everything else, including repeating a terminal state, is
// rejected so that a second confirm of the same booking can never
// touch the slot counter again.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	return s == BookingPending && next.Terminal()
}
