package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/travel-experience-marketplace/internal/repository"
)

// CreateExperience handles POST /v1/operator/experiences. The new
// experience is owned by the calling operator and active by default
// unless the body says otherwise.
func (h *OperatorHandler) CreateExperience(c echo.Context) error {
	operatorID, err := getOperatorID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		Title         string   `json:"title"`
		Description   string   `json:"description"`
		City          string   `json:"city"`
		PriceNPR      uint32   `json:"price_npr"`
		MaxGroupSize  uint32   `json:"max_group_size"`
		Tags          []string `json:"tags"`
		CoverImageURL *string  `json:"cover_image_url"`
		GeoLat        *float64 `json:"geo_lat"`
		GeoLng        *float64 `json:"geo_lng"`
		IsActive      *bool    `json:"is_active"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	title := strings.TrimSpace(body.Title)
	description := strings.TrimSpace(body.Description)
	city := strings.TrimSpace(body.City)
	if title == "" || description == "" || city == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title, description and city are required"})
	}
	if body.MaxGroupSize == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "max_group_size must be at least 1"})
	}
	active := true
	if body.IsActive != nil {
		active = *body.IsActive
	}
	exp := &repository.ExperienceRecord{
		OperatorID:    operatorID,
		Title:         title,
		Description:   description,
		City:          city,
		PriceNPR:      body.PriceNPR,
		MaxGroupSize:  body.MaxGroupSize,
		Tags:          body.Tags,
		CoverImageURL: body.CoverImageURL,
		GeoLat:        body.GeoLat,
		GeoLng:        body.GeoLng,
		IsActive:      active,
	}
	if err := h.ExperienceRepo.Create(c.Request().Context(), exp); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create experience"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Experience created",
		"id":      exp.ID,
	})
}

// UpdateExperience handles PATCH /v1/operator/experiences/:id. Only
// fields present in the body are touched. Deactivation happens here
// via {"is_active": false}; experiences are never hard-deleted.
func (h *OperatorHandler) UpdateExperience(c echo.Context) error {
	operatorID, err := getOperatorID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid experience id"})
	}
	var body struct {
		Title         *string   `json:"title"`
		Description   *string   `json:"description"`
		City          *string   `json:"city"`
		PriceNPR      *uint32   `json:"price_npr"`
		MaxGroupSize  *uint32   `json:"max_group_size"`
		Tags          *[]string `json:"tags"`
		CoverImageURL *string   `json:"cover_image_url"`
		GeoLat        *float64  `json:"geo_lat"`
		GeoLng        *float64  `json:"geo_lng"`
		IsActive      *bool     `json:"is_active"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	upd := repository.ExperienceUpdate{
		Title:         body.Title,
		Description:   body.Description,
		City:          body.City,
		PriceNPR:      body.PriceNPR,
		MaxGroupSize:  body.MaxGroupSize,
		Tags:          body.Tags,
		CoverImageURL: body.CoverImageURL,
		GeoLat:        body.GeoLat,
		GeoLng:        body.GeoLng,
		IsActive:      body.IsActive,
	}
	if err := h.ExperienceRepo.UpdateFields(c.Request().Context(), id, operatorID, upd); err != nil {
		if errors.Is(err, repository.ErrExperienceNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "experience not found"})
		}
		if errors.Is(err, repository.ErrForbidden) {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update experience"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Experience updated",
		"id":      id,
	})
}
