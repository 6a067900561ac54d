package routes

import (
	"net/http"
	"time"

	"bookify/handlers"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterAvailabilityRoutes registers slot computation endpoints.
func RegisterAvailabilityRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/availability")
	{
		api.GET("/:providerID", hb.GetSlotsHandler)
		api.GET("/:providerID/alternatives", hb.GetAlternativesHandler)
	}
}

// RegisterLockRoutes registers the advisory checkout lock endpoints.
func RegisterLockRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/locks")
	{
		api.POST("", hb.AcquireLockHandler)
		api.GET("/check", hb.CheckSlotFreeHandler)
		api.DELETE("/:lockID", hb.ReleaseLockHandler)
	}
}

// RegisterBookingRoutes registers booking creation and lifecycle endpoints.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/bookings")
	{
		api.POST("", hb.CreateBookingHandler)
		api.GET("/:id", hb.GetBookingHandler)
		api.GET("/code/:code", hb.GetByConfirmationCodeHandler)
		api.POST("/:id/transitions", hb.TransitionBookingHandler)
		api.GET("/:id/transitions", hb.ListTransitionsHandler)
		api.DELETE("/:id", hb.CancelBookingHandler)
	}
}

// RegisterProviderRoutes registers provider schedule management endpoints.
func RegisterProviderRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/providers")
	{
		api.POST("", hb.RegisterProviderHandler)
		api.GET("/:providerID", hb.GetProviderHandler)
		api.PUT("/:providerID/windows", hb.UpdateWindowsHandler)
		api.POST("/:providerID/blocked", hb.CreateBlockedSlotHandler)
		api.DELETE("/:providerID/blocked/:blockID", hb.RemoveBlockedSlotHandler)
	}
}

// RegisterPayoutRoutes registers payout visibility and operator endpoints.
func RegisterPayoutRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/payouts")
	{
		api.GET("/:id", hb.GetPayoutHandler)
		api.GET("/provider/:providerID", hb.ListProviderPayoutsHandler)
		api.POST("/:id/manual-complete", hb.MarkPayoutManualHandler)
		api.POST("/process", hb.ProcessDueHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterAvailabilityRoutes(r, hb)
	RegisterLockRoutes(r, hb)
	RegisterBookingRoutes(r, hb)
	RegisterProviderRoutes(r, hb)
	RegisterPayoutRoutes(r, hb)
}
