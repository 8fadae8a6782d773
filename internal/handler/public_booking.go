package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/travel-experience-marketplace/internal/repository"
)

// CreateBooking handles POST /v1/public/bookings. It creates a
// PENDING booking against a slot without touching capacity: no seats
// are held at submission time, and the slot-full check below is
// advisory only (it reads the counter outside any transaction, so a
// racing confirm may invalidate it immediately). Capacity is enforced
// authoritatively at confirmation.
func (h *PublicHandler) CreateBooking(c echo.Context) error {
	var body struct {
		SlotID        uint64  `json:"slot_id"`
		CustomerName  string  `json:"customer_name"`
		CustomerPhone string  `json:"customer_phone"`
		Pax           uint32  `json:"pax"`
		Note          *string `json:"note"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.SlotID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "slot_id is required"})
	}
	name := strings.TrimSpace(body.CustomerName)
	phone := strings.TrimSpace(body.CustomerPhone)
	if name == "" || phone == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "customer_name and customer_phone are required"})
	}
	if body.Pax < 1 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "pax must be at least 1"})
	}

	ctx := c.Request().Context()
	slot, err := h.SlotRepo.GetByID(ctx, body.SlotID)
	if err != nil {
		if errors.Is(err, repository.ErrSlotNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "slot not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load slot"})
	}
	if slot.SeatsLeft() == 0 {
		return c.JSON(http.StatusConflict, echo.Map{"error": "slot is already full"})
	}

	booking := &repository.BookingRecord{
		SlotID:        body.SlotID,
		CustomerName:  name,
		CustomerPhone: phone,
		Pax:           body.Pax,
		Note:          body.Note,
	}
	if err := h.BookingRepo.Create(ctx, booking); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create booking"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message":    "Booking created",
		"booking_id": booking.ID,
		"status":     booking.Status,
	})
}

// GetBooking handles GET /v1/public/bookings/:id so customers can
// poll the status of a request they submitted. Booking IDs are not
// guessable secrets; the record carries no more than the customer
// already supplied.
func (h *PublicHandler) GetBooking(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	booking, err := h.BookingRepo.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load booking"})
	}
	return c.JSON(http.StatusOK, booking)
}
