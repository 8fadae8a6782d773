package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/travel-experience-marketplace/internal/repository"
)

// Bounds for the ?days= lookahead window on slot listings.
const (
	defaultDaysAhead = 14
	minDaysAhead     = 1
	maxDaysAhead     = 60
)

// clampDaysAhead parses the raw ?days= value and clamps it to the
// supported window, falling back to the default on empty or
// unparseable input.
func clampDaysAhead(raw string) int {
	if raw == "" {
		return defaultDaysAhead
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return defaultDaysAhead
	}
	if n < minDaysAhead {
		return minDaysAhead
	}
	if n > maxDaysAhead {
		return maxDaysAhead
	}
	return n
}

// ListSlots handles GET /v1/public/experiences/:id/slots. It returns
// the upcoming slots of an active experience within the next ?days=
// days (clamped to [1,60], default 14), ordered by ascending start
// time. Inactive or absent experiences both yield 404 so the public
// surface does not reveal which of the two it was.
func (h *PublicHandler) ListSlots(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid experience id"})
	}
	days := clampDaysAhead(c.QueryParam("days"))

	ctx := c.Request().Context()
	exp, err := h.ExperienceRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrExperienceNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "experience not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load experience"})
	}
	if !exp.IsActive {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "experience not found"})
	}

	now := time.Now().UTC()
	until := now.Add(time.Duration(days) * 24 * time.Hour)
	slots, err := h.SlotRepo.ListUpcoming(ctx, id, now, until)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load slots"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": slots})
}
