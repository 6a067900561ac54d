package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"bookify/services/availability"
	"bookify/utils"

	"github.com/gin-gonic/gin"
)

// AvailabilityHandler exposes slot computation endpoints.
type AvailabilityHandler struct {
	Availability availability.Service
}

// NewAvailabilityHandler constructs an AvailabilityHandler.
func NewAvailabilityHandler(svc availability.Service) *AvailabilityHandler {
	return &AvailabilityHandler{Availability: svc}
}

// GetSlotsHandler returns slots for a provider over a date range.
// GET /api/availability/:providerID?from=2026-03-14&to=2026-03-20&duration=60
func (h *AvailabilityHandler) GetSlotsHandler(c *gin.Context) {
	providerID := c.Param("providerID")
	from := c.Query("from")
	to := c.DefaultQuery("to", from)
	if from == "" {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", "query parameter 'from' is required")
		return
	}
	duration, err := parseDuration(c)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	slots, err := h.Availability.GetAvailableSlots(c.Request.Context(), providerID, from, to, duration)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"provider_id": providerID, "slots": slots})
}

// GetAlternativesHandler returns available slots on a date that avoid a given
// range, for recovering from a conflict or contested lock.
// GET /api/availability/:providerID/alternatives?date=...&start=540&end=600&duration=60
func (h *AvailabilityHandler) GetAlternativesHandler(c *gin.Context) {
	providerID := c.Param("providerID")
	date := c.Query("date")
	if date == "" {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", "query parameter 'date' is required")
		return
	}
	start, err1 := parseMinutes(c.DefaultQuery("start", "0"))
	end, err2 := parseMinutes(c.DefaultQuery("end", "0"))
	if err1 != nil || err2 != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", "start and end must be minutes from midnight or HH:MM")
		return
	}
	duration, err := parseDuration(c)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "3"))

	slots, err := h.Availability.FindAlternativeSlots(c.Request.Context(), providerID, date, start, end, duration, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"provider_id": providerID, "alternatives": slots})
}

// parseMinutes accepts a slot boundary as minutes from midnight ("870") or as
// a wall-clock value ("14:30").
func parseMinutes(raw string) (int, error) {
	if strings.Contains(raw, ":") {
		return utils.ClockToMinutes(raw)
	}
	return strconv.Atoi(raw)
}

func parseDuration(c *gin.Context) (int, error) {
	raw := c.DefaultQuery("duration", "0")
	duration, err := strconv.Atoi(raw)
	if err != nil || duration < 0 {
		return 0, errInvalidDuration
	}
	return duration, nil
}

var errInvalidDuration = &invalidParamError{param: "duration", want: "a non-negative integer of minutes"}

type invalidParamError struct{ param, want string }

func (e *invalidParamError) Error() string {
	return "parameter '" + e.param + "' must be " + e.want
}
