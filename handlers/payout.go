package handlers

import (
	"net/http"

	"bookify/models"
	"bookify/services/payout"
	"bookify/utils"

	"github.com/gin-gonic/gin"
)

// PayoutHandler exposes payout visibility and operator override endpoints.
type PayoutHandler struct {
	Payouts payout.Service
}

// NewPayoutHandler constructs a PayoutHandler.
func NewPayoutHandler(svc payout.Service) *PayoutHandler {
	return &PayoutHandler{Payouts: svc}
}

// GetPayoutHandler fetches a payout schedule.
// GET /api/payouts/:id
func (h *PayoutHandler) GetPayoutHandler(c *gin.Context) {
	schedule, err := h.Payouts.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, schedule)
}

// ListProviderPayoutsHandler lists a provider's payout schedules, newest first.
// GET /api/payouts/provider/:providerID
func (h *PayoutHandler) ListProviderPayoutsHandler(c *gin.Context) {
	schedules, err := h.Payouts.ListByProvider(c.Request.Context(), c.Param("providerID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"provider_id": c.Param("providerID"), "payouts": schedules})
}

// MarkPayoutManualHandler records an operator's out-of-band transfer.
// POST /api/payouts/:id/manual-complete
func (h *PayoutHandler) MarkPayoutManualHandler(c *gin.Context) {
	var req models.ManualPayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	schedule, err := h.Payouts.MarkCompletedManually(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, schedule)
}

// ProcessDueHandler triggers one payout processing pass, for operators and
// smoke tests; the scheduled worker runs the same code path.
// POST /api/payouts/process
func (h *PayoutHandler) ProcessDueHandler(c *gin.Context) {
	report, err := h.Payouts.ProcessDue(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
