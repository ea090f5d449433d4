// Package profilesvc serves freelancer profile submission and review.
// Profiles start pending and only an admin approval unlocks applying to jobs.
package profilesvc

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/jubaworks/juba/internal/models"
	"github.com/jubaworks/juba/internal/store"
)

type Handler struct {
	Store    store.Store
	Validate *validator.Validate
}

func NewHandler(st store.Store) *Handler {
	return &Handler{Store: st, Validate: validator.New()}
}

type SubmitProfileRequest struct {
	Skills     string  `json:"skills" validate:"required"`
	Bio        string  `json:"bio"`
	HourlyRate float64 `json:"hourly_rate" validate:"gte=0"`
}

// Submit creates or replaces the caller's profile. Resubmission drops the
// profile back to pending so an admin reviews the new content.
func (h *Handler) Submit(c echo.Context) error {
	userID, _ := c.Get("user_id").(string)
	if userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	req := new(SubmitProfileRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := h.Validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	profile := &models.FreelancerProfile{
		UserID:     userID,
		Skills:     req.Skills,
		Bio:        req.Bio,
		HourlyRate: req.HourlyRate,
		Status:     models.ProfilePending,
		CreatedAt:  time.Now().UTC(),
	}
	if err := h.Store.Profiles().Upsert(c.Request().Context(), profile); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to save profile"})
	}
	return c.JSON(http.StatusOK, profile)
}

// Mine returns the caller's own profile.
func (h *Handler) Mine(c echo.Context) error {
	userID, _ := c.Get("user_id").(string)
	if userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	profile, err := h.Store.Profiles().GetByUser(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "profile not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load profile"})
	}
	return c.JSON(http.StatusOK, profile)
}

// Approve marks a freelancer's profile approved. Admin only.
func (h *Handler) Approve(c echo.Context) error {
	return h.review(c, models.ProfileApproved)
}

// Reject marks a freelancer's profile rejected. Admin only.
func (h *Handler) Reject(c echo.Context) error {
	return h.review(c, models.ProfileRejected)
}

func (h *Handler) review(c echo.Context, status models.ProfileStatus) error {
	userID := c.Param("user_id")
	if userID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user_id required"})
	}

	err := h.Store.Profiles().SetStatus(c.Request().Context(), userID, status)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "profile not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update profile"})
	}
	return c.JSON(http.StatusOK, echo.Map{"user_id": userID, "status": status})
}
