package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/travel-experience-marketplace/internal/model"
	"github.com/iliyamo/travel-experience-marketplace/internal/queue"
	"github.com/iliyamo/travel-experience-marketplace/internal/repository"
)

// confirmAttempts bounds how many times a confirm transaction is
// retried when the storage engine reports a transient lock conflict.
// These conflicts are an artifact of the locking strategy, not a
// business outcome, so they are absorbed here instead of surfacing to
// the caller.
const confirmAttempts = 3

// ConfirmBooking handles POST /v1/operator/bookings/:id/confirm. This
// is the seat capacity guard: the PENDING check, the status flip and
// the counter increment all commit or roll back together, so no
// interleaving of concurrent confirms can push seats_booked past
// seats_total, and no booking can be confirmed twice.
func (h *OperatorHandler) ConfirmBooking(c echo.Context) error {
	operatorID, err := getOperatorID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}

	ctx := c.Request().Context()
	var ev *queue.BookingConfirmedEvent
	for attempt := 1; ; attempt++ {
		ev, err = h.confirmOnce(ctx, bookingID, operatorID)
		if err == nil || !repository.IsRetryable(err) || attempt == confirmAttempts {
			break
		}
	}
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrBookingNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "booking is not pending"})
		case errors.Is(err, repository.ErrSlotFull):
			return c.JSON(http.StatusConflict, echo.Map{"error": "not enough seats left to confirm"})
		case repository.IsRetryable(err):
			// Lock conflicts that survive every retry are still not a
			// server fault; the caller resubmits once the competing
			// confirm has settled.
			return c.JSON(http.StatusConflict, echo.Map{"error": "booking is being updated concurrently, retry"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to confirm booking"})
	}

	if h.Publish != nil {
		// Best-effort: a down broker never un-confirms a booking.
		_ = h.Publish(ctx, *ev)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":    "Booking confirmed",
		"booking_id": bookingID,
		"status":     string(model.BookingConfirmed),
	})
}

// confirmOnce runs one confirm transaction. The ownership chain is
// re-derived inside the transaction, the status flip and the seat
// increment are both conditional updates, and either of them matching
// zero rows aborts the whole thing.
func (h *OperatorHandler) confirmOnce(ctx context.Context, bookingID, operatorID uint64) (*queue.BookingConfirmedEvent, error) {
	tx, err := h.BookingRepo.DB().BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	info, err := h.BookingRepo.GetForOperatorTx(ctx, tx, bookingID, operatorID)
	if err != nil {
		return nil, err
	}
	if !info.Status.CanTransitionTo(model.BookingConfirmed) {
		return nil, repository.ErrConflict
	}
	moved, err := h.BookingRepo.UpdateStatusTx(ctx, tx, bookingID, model.BookingPending, model.BookingConfirmed)
	if err != nil {
		return nil, err
	}
	if !moved {
		return nil, repository.ErrConflict
	}
	reserved, err := h.SlotRepo.ReserveSeatsTx(ctx, tx, info.SlotID, info.Pax)
	if err != nil {
		return nil, err
	}
	if !reserved {
		return nil, repository.ErrSlotFull
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	return &queue.BookingConfirmedEvent{
		BookingID:       info.BookingID,
		SlotID:          info.SlotID,
		ExperienceID:    info.ExperienceID,
		OperatorID:      info.OperatorID,
		ExperienceTitle: info.ExperienceTitle,
		City:            info.ExperienceCity,
		CustomerName:    info.CustomerName,
		Pax:             info.Pax,
		SlotStartTime:   info.SlotStartTime,
		SlotEndTime:     info.SlotEndTime,
		SeatsBooked:     info.SeatsBooked + info.Pax,
		SeatsTotal:      info.SeatsTotal,
		ConfirmedAt:     time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// DeclineBooking handles POST /v1/operator/bookings/:id/decline. Only
// a PENDING booking can be declined, and declining never touches the
// slot counter.
func (h *OperatorHandler) DeclineBooking(c echo.Context) error {
	operatorID, err := getOperatorID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}

	ctx := c.Request().Context()
	tx, err := h.BookingRepo.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	info, err := h.BookingRepo.GetForOperatorTx(ctx, tx, bookingID, operatorID)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		if errors.Is(err, repository.ErrForbidden) {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load booking"})
	}
	if !info.Status.CanTransitionTo(model.BookingDeclined) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "booking is not pending"})
	}
	moved, err := h.BookingRepo.UpdateStatusTx(ctx, tx, bookingID, model.BookingPending, model.BookingDeclined)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to decline booking"})
	}
	if !moved {
		return c.JSON(http.StatusConflict, echo.Map{"error": "booking is not pending"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true
	return c.JSON(http.StatusOK, echo.Map{
		"message":    "Booking declined",
		"booking_id": bookingID,
		"status":     string(model.BookingDeclined),
	})
}
