package handlers

import (
	"errors"
	"net/http"

	"bookify/models"
	"bookify/services/availability"
	"bookify/services/booking"
	"bookify/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookingHandler exposes booking creation and lifecycle endpoints.
type BookingHandler struct {
	Bookings     booking.Service
	Availability availability.Service
}

// NewBookingHandler constructs a BookingHandler.
func NewBookingHandler(svc booking.Service, avail availability.Service) *BookingHandler {
	return &BookingHandler{Bookings: svc, Availability: avail}
}

// CreateBookingHandler runs the booking transaction. On a slot conflict it
// responds 409 with up to three alternative slots on the same date.
// POST /api/bookings
func (h *BookingHandler) CreateBookingHandler(c *gin.Context) {
	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	b, err := h.Bookings.CreateBooking(c.Request.Context(), req)
	if err != nil {
		var conflict *models.ConflictError
		if errors.As(err, &conflict) {
			alternatives, altErr := h.Availability.FindAlternativeSlots(
				c.Request.Context(), req.ProviderID, req.Date, req.Start, req.End, req.End-req.Start, 3)
			if altErr != nil {
				utils.GetLogger().Warn("alternative slot lookup failed",
					zap.String("providerID", req.ProviderID), zap.Error(altErr))
			}
			c.JSON(http.StatusConflict, gin.H{
				"error":               "slot conflict",
				"details":             conflict.Reason,
				"conflicting_booking": conflict.BookingID,
				"alternatives":        alternatives,
			})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

// GetBookingHandler fetches one booking.
// GET /api/bookings/:id
func (h *BookingHandler) GetBookingHandler(c *gin.Context) {
	b, err := h.Bookings.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// GetByConfirmationCodeHandler fetches a booking by its human-facing code.
// GET /api/bookings/code/:code
func (h *BookingHandler) GetByConfirmationCodeHandler(c *gin.Context) {
	b, err := h.Bookings.GetByConfirmationCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// TransitionBookingHandler applies a lifecycle status change.
// POST /api/bookings/:id/transitions
func (h *BookingHandler) TransitionBookingHandler(c *gin.Context) {
	var req models.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	b, err := h.Bookings.Transition(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// CancelBookingHandler cancels a booking.
// DELETE /api/bookings/:id
func (h *BookingHandler) CancelBookingHandler(c *gin.Context) {
	var req struct {
		CancelledBy string `json:"cancelled_by"`
		Reason      string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&req)

	b, err := h.Bookings.Cancel(c.Request.Context(), c.Param("id"), req.CancelledBy, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// ListTransitionsHandler returns a booking's audit trail.
// GET /api/bookings/:id/transitions
func (h *BookingHandler) ListTransitionsHandler(c *gin.Context) {
	recs, err := h.Bookings.GetTransitions(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking_id": c.Param("id"), "transitions": recs})
}
