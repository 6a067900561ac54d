package handlers

import (
	"net/http"
	"time"

	providerRepo "bookify/database/repository/provider"
	"bookify/models"
	"bookify/services/availability"
	"bookify/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProviderHandler exposes provider schedule management endpoints.
type ProviderHandler struct {
	Providers    providerRepo.ProviderRepository
	Availability availability.Service
}

// NewProviderHandler constructs a ProviderHandler.
func NewProviderHandler(repo providerRepo.ProviderRepository, avail availability.Service) *ProviderHandler {
	return &ProviderHandler{Providers: repo, Availability: avail}
}

// RegisterProviderHandler creates a provider.
// POST /api/providers
func (h *ProviderHandler) RegisterProviderHandler(c *gin.Context) {
	var provider models.Provider
	if err := c.ShouldBindJSON(&provider); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	if provider.ID == "" {
		provider.ID = uuid.NewString()
	}
	if err := validateWindows(provider.Windows); err != nil {
		respondError(c, err)
		return
	}
	provider.Active = true

	if err := h.Providers.Create(c.Request.Context(), &provider); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, provider)
}

// GetProviderHandler fetches a provider.
// GET /api/providers/:providerID
func (h *ProviderHandler) GetProviderHandler(c *gin.Context) {
	provider, err := h.Providers.GetByID(c.Request.Context(), c.Param("providerID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, provider)
}

// UpdateWindowsHandler replaces a provider's weekly availability windows.
// PUT /api/providers/:providerID/windows
func (h *ProviderHandler) UpdateWindowsHandler(c *gin.Context) {
	providerID := c.Param("providerID")
	var input struct {
		Windows []models.AvailabilityWindow `json:"windows" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	if err := validateWindows(input.Windows); err != nil {
		respondError(c, err)
		return
	}

	if err := h.Providers.UpdateWindows(c.Request.Context(), providerID, input.Windows); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"provider_id": providerID, "windows": input.Windows})
}

// CreateBlockedSlotHandler adds a date-specific block to a provider's schedule.
// POST /api/providers/:providerID/blocked
func (h *ProviderHandler) CreateBlockedSlotHandler(c *gin.Context) {
	providerID := c.Param("providerID")
	var blocked models.BlockedSlot
	if err := c.ShouldBindJSON(&blocked); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	if _, err := time.Parse(utils.DateLayout, blocked.Date); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", "date must be formatted as YYYY-MM-DD")
		return
	}
	if (blocked.Start == nil) != (blocked.End == nil) {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", "start and end must both be set, or both omitted for a full-day block")
		return
	}
	if blocked.Start != nil && *blocked.Start >= *blocked.End {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", "start must be before end")
		return
	}
	blocked.BlockID = uuid.NewString()
	blocked.ProviderID = providerID

	if err := h.Providers.CreateBlockedSlot(c.Request.Context(), &blocked); err != nil {
		respondError(c, err)
		return
	}
	h.invalidate(c, providerID, blocked.Date)
	c.JSON(http.StatusCreated, blocked)
}

// RemoveBlockedSlotHandler deletes a blocked-date override.
// DELETE /api/providers/:providerID/blocked/:blockID?date=...
func (h *ProviderHandler) RemoveBlockedSlotHandler(c *gin.Context) {
	if err := h.Providers.RemoveBlockedSlot(c.Request.Context(), c.Param("blockID")); err != nil {
		respondError(c, err)
		return
	}
	if date := c.Query("date"); date != "" {
		h.invalidate(c, c.Param("providerID"), date)
	}
	c.JSON(http.StatusOK, gin.H{"removed": true})
}

func (h *ProviderHandler) invalidate(c *gin.Context, providerID, date string) {
	if err := h.Availability.Invalidate(c.Request.Context(), providerID, date); err != nil {
		utils.GetLogger().Warn("availability cache invalidation failed",
			zap.String("providerID", providerID), zap.Error(err))
	}
}

func validateWindows(windows []models.AvailabilityWindow) error {
	for i := range windows {
		w := &windows[i]
		if w.Start < 0 || w.End > 24*60 || w.Start >= w.End {
			return &models.ValidationError{Reason: "window start and end must form a valid same-day range"}
		}
		if w.Weekday < time.Sunday || w.Weekday > time.Saturday {
			return &models.ValidationError{Reason: "window weekday must be between 0 (Sunday) and 6 (Saturday)"}
		}
		if w.ID == "" {
			w.ID = uuid.NewString()
		}
	}
	return nil
}
