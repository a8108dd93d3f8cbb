package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"frontdesk/handlers"
	"frontdesk/middleware"
)

// RegisterRoutes wires all endpoints of the booking engine.
func RegisterRoutes(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	scheduling := r.Group("/api/scheduling")
	scheduling.Use(middleware.TenantAuthMiddleware())
	{
		scheduling.GET("/availability", handlers.CheckAvailability)
		scheduling.POST("/bookings", handlers.CreateBooking)
		scheduling.GET("/bookings", handlers.GetBookings)
		scheduling.DELETE("/bookings/:bookingID", handlers.CancelBooking)
	}

	pending := r.Group("/api/pending")
	pending.Use(middleware.TenantAuthMiddleware())
	{
		pending.POST("", handlers.CreatePendingBooking)
		pending.POST("/:pendingID/confirm", handlers.ConfirmPendingBooking)
		pending.POST("/:pendingID/reject", handlers.RejectPendingBooking)
		pending.POST("/:pendingID/convert", handlers.ConvertPendingBooking)
	}
}
