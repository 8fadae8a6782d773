package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/travel-experience-marketplace/internal/repository"
	"github.com/iliyamo/travel-experience-marketplace/internal/utils"
)

// CreateOperator handles POST /dev/seed/operator. It creates an
// operator account and returns the freshly generated API key. This is
// the only time the key is ever returned; there is no recovery path,
// operators that lose it get reseeded.
func (h *OperatorHandler) CreateOperator(c echo.Context) error {
	var body struct {
		Name  string `json:"name"`
		Phone string `json:"phone"`
		Email string `json:"email"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	apiKey, err := utils.NewAPIKey(24)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to generate api key"})
	}
	op := &repository.OperatorRecord{
		Name:   name,
		Phone:  strings.TrimSpace(body.Phone),
		Email:  strings.TrimSpace(body.Email),
		APIKey: apiKey,
	}
	if err := h.OperatorRepo.Create(c.Request().Context(), op); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create operator"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message":     "Operator created",
		"operator_id": op.ID,
		"api_key":     op.APIKey,
	})
}

// Analytics handles GET /v1/operator/analytics. It returns read-only
// aggregate counts across the calling operator's experiences, slots
// and bookings.
func (h *OperatorHandler) Analytics(c echo.Context) error {
	operatorID, err := getOperatorID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	sum, err := h.OperatorRepo.Analytics(c.Request().Context(), operatorID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load analytics"})
	}
	return c.JSON(http.StatusOK, sum)
}
