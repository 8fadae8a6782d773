package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/travel-experience-marketplace/internal/repository"
)

// slotTimeLayout is the wire format for slot windows in operator
// requests. Stored values are reformatted to the repository's UTC
// storage layout.
const slotTimeLayout = time.RFC3339

// BulkCreateSlots handles POST /v1/operator/experiences/:id/slots/bulk.
// Every slot in the batch is validated before anything is written:
// parseable RFC3339 timestamps, end strictly after start, and a
// positive seat count. A single invalid item rejects the whole batch
// with 400 and zero rows created; the valid case inserts all rows in
// one transaction. Overlap between windows is deliberately not
// checked.
func (h *OperatorHandler) BulkCreateSlots(c echo.Context) error {
	operatorID, err := getOperatorID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	experienceID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid experience id"})
	}
	var body struct {
		Slots []struct {
			StartTime  string `json:"start_time"`
			EndTime    string `json:"end_time"`
			SeatsTotal uint32 `json:"seats_total"`
		} `json:"slots"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if len(body.Slots) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "slots is required"})
	}

	ctx := c.Request().Context()
	if _, err := h.ExperienceRepo.GetByIDAndOwner(ctx, experienceID, operatorID); err != nil {
		if errors.Is(err, repository.ErrExperienceNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "experience not found"})
		}
		if errors.Is(err, repository.ErrForbidden) {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to verify experience"})
	}

	records := make([]repository.SlotRecord, 0, len(body.Slots))
	for _, s := range body.Slots {
		start, err := time.Parse(slotTimeLayout, s.StartTime)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid start_time format"})
		}
		end, err := time.Parse(slotTimeLayout, s.EndTime)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid end_time format"})
		}
		if !end.After(start) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "end_time must be after start_time"})
		}
		if s.SeatsTotal == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "seats_total must be greater than 0"})
		}
		records = append(records, repository.SlotRecord{
			StartTime:  start.UTC().Format("2006-01-02 15:04:05"),
			EndTime:    end.UTC().Format("2006-01-02 15:04:05"),
			SeatsTotal: s.SeatsTotal,
		})
	}

	tx, err := h.SlotRepo.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	ids, err := h.SlotRepo.CreateBulkTx(ctx, tx, experienceID, records)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create slots"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true
	return c.JSON(http.StatusCreated, echo.Map{
		"created":  len(ids),
		"slot_ids": ids,
	})
}

// ListSlotBookings handles GET /v1/operator/slots/:id/bookings. It
// returns the bookings on an owned slot, newest first, so operators
// can review pending requests before confirming.
func (h *OperatorHandler) ListSlotBookings(c echo.Context) error {
	operatorID, err := getOperatorID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	slotID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid slot id"})
	}
	bookings, err := h.BookingRepo.ListBySlotForOwner(c.Request().Context(), slotID, operatorID)
	if err != nil {
		if errors.Is(err, repository.ErrSlotNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "slot not found"})
		}
		if errors.Is(err, repository.ErrForbidden) {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load bookings"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": bookings})
}
