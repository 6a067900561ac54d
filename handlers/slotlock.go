package handlers

import (
	"net/http"
	"time"

	"bookify/models"
	"bookify/services/slotlock"
	"bookify/utils"

	"github.com/gin-gonic/gin"
)

// SlotLockHandler exposes the advisory checkout lock endpoints.
type SlotLockHandler struct {
	Locks      slotlock.Service
	DefaultTTL time.Duration
}

// NewSlotLockHandler constructs a SlotLockHandler.
func NewSlotLockHandler(svc slotlock.Service, ttl time.Duration) *SlotLockHandler {
	return &SlotLockHandler{Locks: svc, DefaultTTL: ttl}
}

// AcquireLockHandler claims a slot for a checkout session.
// POST /api/locks
func (h *SlotLockHandler) AcquireLockHandler(c *gin.Context) {
	var req models.AcquireLockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	lock, contested, err := h.Locks.Acquire(c.Request.Context(), req, h.DefaultTTL)
	if err != nil {
		respondError(c, err)
		return
	}
	if contested {
		// Contested is a normal outcome, not a failure; the client should
		// offer alternative slots.
		c.JSON(http.StatusConflict, gin.H{"contested": true})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"contested": false, "lock": lock})
}

// CheckSlotFreeHandler reports whether a slot is available and unlocked, so a
// client can check before starting a checkout session. The answer is advisory
// and can be stale by the time a lock is attempted.
// GET /api/locks/check?provider_id=...&date=...&start=14:00&end=15:00
func (h *SlotLockHandler) CheckSlotFreeHandler(c *gin.Context) {
	providerID := c.Query("provider_id")
	date := c.Query("date")
	if providerID == "" || date == "" {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", "provider_id and date are required")
		return
	}
	start, err1 := parseMinutes(c.Query("start"))
	end, err2 := parseMinutes(c.Query("end"))
	if err1 != nil || err2 != nil || start >= end {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", "start and end must form a valid range, as minutes from midnight or HH:MM")
		return
	}

	free, err := h.Locks.IsFree(c.Request.Context(), providerID, date, start, end)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"free": free})
}

// ReleaseLockHandler idempotently releases a lock.
// DELETE /api/locks/:lockID
func (h *SlotLockHandler) ReleaseLockHandler(c *gin.Context) {
	if err := h.Locks.Release(c.Request.Context(), c.Param("lockID")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"released": true})
}
