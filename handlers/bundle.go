package handlers

import "github.com/gin-gonic/gin"

// HandlerBundle groups all endpoint handlers into one struct for route
// registration.
type HandlerBundle struct {
	// Availability endpoints
	GetSlotsHandler        gin.HandlerFunc
	GetAlternativesHandler gin.HandlerFunc

	// Slot lock endpoints
	AcquireLockHandler   gin.HandlerFunc
	ReleaseLockHandler   gin.HandlerFunc
	CheckSlotFreeHandler gin.HandlerFunc

	// Booking endpoints
	CreateBookingHandler         gin.HandlerFunc
	GetBookingHandler            gin.HandlerFunc
	GetByConfirmationCodeHandler gin.HandlerFunc
	TransitionBookingHandler     gin.HandlerFunc
	CancelBookingHandler         gin.HandlerFunc
	ListTransitionsHandler       gin.HandlerFunc

	// Provider endpoints
	RegisterProviderHandler  gin.HandlerFunc
	GetProviderHandler       gin.HandlerFunc
	UpdateWindowsHandler     gin.HandlerFunc
	CreateBlockedSlotHandler gin.HandlerFunc
	RemoveBlockedSlotHandler gin.HandlerFunc

	// Payout endpoints
	GetPayoutHandler           gin.HandlerFunc
	ListProviderPayoutsHandler gin.HandlerFunc
	MarkPayoutManualHandler    gin.HandlerFunc
	ProcessDueHandler          gin.HandlerFunc
}
