package handler

import (
	"fmt"
	"net/http"
	"testing"
	"time"
)

func TestCreateBookingStartsPendingWithoutReserving(t *testing.T) {
	env := newTestEnv(t)
	opID := env.seedOperator(t, "ak-pub")
	expID := env.seedExperience(t, opID, "Pokhara", true)
	slotID := env.seedSlot(t, expID, time.Now().Add(24*time.Hour), 10)

	body := fmt.Sprintf(`{"slot_id":%d,"customer_name":"Asha","customer_phone":"9800000000","pax":4,"note":"two kids"}`, slotID)
	rec := env.call(http.MethodPost, body, 0, 0, env.public.CreateBooking)
	wantStatus(t, rec, http.StatusCreated)
	resp := decodeBody(t, rec)
	if resp["status"] != "PENDING" {
		t.Fatalf("status = %v, want PENDING", resp["status"])
	}
	if resp["booking_id"] == nil {
		t.Fatal("booking_id missing from response")
	}
	// No seats are held at submission time.
	booked, _ := env.slotCounter(t, slotID)
	if booked != 0 {
		t.Fatalf("seats_booked = %d after create, want 0", booked)
	}
}

func TestCreateBookingValidation(t *testing.T) {
	env := newTestEnv(t)
	opID := env.seedOperator(t, "ak-val")
	expID := env.seedExperience(t, opID, "Pokhara", true)
	slotID := env.seedSlot(t, expID, time.Now().Add(24*time.Hour), 10)

	cases := []struct {
		name string
		body string
		code int
	}{
		{"missing slot", `{"customer_name":"Asha","customer_phone":"98","pax":1}`, http.StatusBadRequest},
		{"missing name", fmt.Sprintf(`{"slot_id":%d,"customer_phone":"98","pax":1}`, slotID), http.StatusBadRequest},
		{"missing phone", fmt.Sprintf(`{"slot_id":%d,"customer_name":"Asha","pax":1}`, slotID), http.StatusBadRequest},
		{"zero pax", fmt.Sprintf(`{"slot_id":%d,"customer_name":"Asha","customer_phone":"98","pax":0}`, slotID), http.StatusBadRequest},
		{"unknown slot", `{"slot_id":9999,"customer_name":"Asha","customer_phone":"98","pax":1}`, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := env.call(http.MethodPost, tc.body, 0, 0, env.public.CreateBooking)
			wantStatus(t, rec, tc.code)
		})
	}
}

func TestCreateBookingOnFullSlotConflicts(t *testing.T) {
	env := newTestEnv(t)
	opID := env.seedOperator(t, "ak-fullslot")
	expID := env.seedExperience(t, opID, "Pokhara", true)
	slotID := env.seedSlot(t, expID, time.Now().Add(24*time.Hour), 2)
	bookingID := env.seedBooking(t, slotID, 2)
	wantStatus(t, env.call(http.MethodPost, "", bookingID, opID, env.operator.ConfirmBooking), http.StatusOK)

	body := fmt.Sprintf(`{"slot_id":%d,"customer_name":"Bina","customer_phone":"98","pax":1}`, slotID)
	rec := env.call(http.MethodPost, body, 0, 0, env.public.CreateBooking)
	wantStatus(t, rec, http.StatusConflict)
}

func TestGetBooking(t *testing.T) {
	env := newTestEnv(t)
	opID := env.seedOperator(t, "ak-getb")
	expID := env.seedExperience(t, opID, "Pokhara", true)
	slotID := env.seedSlot(t, expID, time.Now().Add(24*time.Hour), 10)
	bookingID := env.seedBooking(t, slotID, 2)

	rec := env.call(http.MethodGet, "", bookingID, 0, env.public.GetBooking)
	wantStatus(t, rec, http.StatusOK)
	resp := decodeBody(t, rec)
	if resp["status"] != "PENDING" || uint64(resp["slot_id"].(float64)) != slotID {
		t.Fatalf("unexpected body: %v", resp)
	}

	wantStatus(t, env.call(http.MethodGet, "", 9999, 0, env.public.GetBooking), http.StatusNotFound)
}
