package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/travel-experience-marketplace/internal/repository"
)

// PublicHandler groups the repositories behind the unauthenticated
// browse and booking endpoints. Customers are anonymous; nothing here
// reads an identity from the context.
type PublicHandler struct {
	ExperienceRepo *repository.ExperienceRepo
	SlotRepo       *repository.SlotRepo
	BookingRepo    *repository.BookingRepo
}

// NewPublicHandler constructs a PublicHandler with the provided
// repositories. All dependencies must be non-nil.
func NewPublicHandler(experienceRepo *repository.ExperienceRepo, slotRepo *repository.SlotRepo, bookingRepo *repository.BookingRepo) *PublicHandler {
	if experienceRepo == nil || slotRepo == nil || bookingRepo == nil {
		panic("nil repository passed to NewPublicHandler")
	}
	return &PublicHandler{
		ExperienceRepo: experienceRepo,
		SlotRepo:       slotRepo,
		BookingRepo:    bookingRepo,
	}
}

// ListExperiences handles GET /v1/public/experiences. It returns
// active experiences newest first, each with its slots, optionally
// filtered by ?city= (case-insensitive) and ?tag=.
func (h *PublicHandler) ListExperiences(c echo.Context) error {
	city := c.QueryParam("city")
	tag := c.QueryParam("tag")
	items, err := h.ExperienceRepo.ListPublic(c.Request().Context(), city, tag)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load experiences"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetExperience handles GET /v1/public/experiences/:id. It returns a
// single experience with all of its slots, or 404 when the id matches
// no row.
func (h *PublicHandler) GetExperience(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid experience id"})
	}
	exp, err := h.ExperienceRepo.GetPublicByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrExperienceNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "experience not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load experience"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": exp})
}
