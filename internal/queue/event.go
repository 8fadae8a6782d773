// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingConfirmedEvent is published when an operator successfully
// confirms a booking. It carries enough information for downstream
// consumers to log, notify, or feed analytics without querying the
// primary database.
type BookingConfirmedEvent struct {
	BookingID       uint64 `json:"booking_id"`
	SlotID          uint64 `json:"slot_id"`
	ExperienceID    uint64 `json:"experience_id"`
	OperatorID      uint64 `json:"operator_id"`
	ExperienceTitle string `json:"experience_title"`
	City            string `json:"city"`
	CustomerName    string `json:"customer_name"`
	Pax             uint32 `json:"pax"`
	SlotStartTime   string `json:"slot_start_time"`
	SlotEndTime     string `json:"slot_end_time"`
	SeatsBooked     uint32 `json:"seats_booked"`
	SeatsTotal      uint32 `json:"seats_total"`
	ConfirmedAt     string `json:"confirmed_at"`
}
