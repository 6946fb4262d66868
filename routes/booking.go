package routes

import (
	"workhive/handlers"
	"workhive/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterBookingRoutes registers all endpoints for the booking lifecycle.
func RegisterBookingRoutes(r *gin.Engine, h *handlers.BookingHandler) {
	api := r.Group("/api/bookings")
	{
		api.Use(middleware.JWTAuthMiddleware())
		api.POST("/reserve", h.Reserve)
		api.POST("/checkout", h.Checkout)
		api.POST("/approve", h.Approve)
		api.POST("/reject", h.Reject)
		api.POST("/cancel", h.Cancel)
		api.GET("/:id", h.Get)
	}
}
