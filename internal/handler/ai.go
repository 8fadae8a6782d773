package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/travel-experience-marketplace/internal/ai"
)

// AIHandler exposes the model-assisted endpoints. Both endpoints
// degrade to deterministic fallbacks when the upstream model is
// unconfigured or misbehaves, so they never fail a request because of
// the model.
type AIHandler struct {
	Planner *ai.Planner
}

// NewAIHandler constructs an AIHandler. The planner must be non-nil.
func NewAIHandler(planner *ai.Planner) *AIHandler {
	if planner == nil {
		panic("nil planner passed to NewAIHandler")
	}
	return &AIHandler{Planner: planner}
}

// PlanTrip handles POST /v1/ai/plan-trip. It builds a short day-by-day
// itinerary for a city, grounded on the active experiences listed
// there.
func (h *AIHandler) PlanTrip(c echo.Context) error {
	var body struct {
		City      string   `json:"city"`
		Days      int      `json:"days"`
		Interests []string `json:"interests"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	city := strings.TrimSpace(body.City)
	if city == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "city is required"})
	}
	days := body.Days
	if days < 1 {
		days = 2
	}
	if days > 7 {
		days = 7
	}
	plan, err := h.Planner.PlanTrip(c.Request().Context(), city, days, body.Interests)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to plan trip"})
	}
	return c.JSON(http.StatusOK, plan)
}

// EnrichExperience handles POST /v1/ai/enrich-experience. Operators
// use it while drafting a listing to get suggested tags and a short
// summary from a raw description.
func (h *AIHandler) EnrichExperience(c echo.Context) error {
	var body struct {
		Description string `json:"description"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	description := strings.TrimSpace(body.Description)
	if len(description) < 10 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "description must be at least 10 characters"})
	}
	res, err := h.Planner.EnrichExperience(c.Request().Context(), description)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to enrich experience"})
	}
	return c.JSON(http.StatusOK, res)
}
