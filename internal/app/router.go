package app

import (
	"github.com/gin-gonic/gin"

	bookingHandler "rentals-service/internal/handlers/booking"
	vehicleHandler "rentals-service/internal/handlers/vehicle"
	wsHandler "rentals-service/internal/handlers/websocket"
)

type Handlers struct {
	VehicleHandler *vehicleHandler.VehicleHandler
	BookingHandler *bookingHandler.BookingHandler
	WSHandler      *wsHandler.WebSocketHandler
}

func SetupRouter(r *gin.Engine, h *Handlers) {
	api := r.Group("/api/v1")

	// ==================== Health Check ====================
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "version": "1.0.0"})
	})

	// ==================== WebSocket ====================
	r.GET("/ws", h.WSHandler.HandleConnection)

	// ==================== Vehicles ====================
	vehicles := api.Group("/vehicles")
	{
		vehicles.GET("", h.VehicleHandler.ListVehicles)
		vehicles.POST("", h.VehicleHandler.CreateVehicle)
		vehicles.GET("/:id", h.VehicleHandler.GetVehicle)
		vehicles.PUT("/:id", h.VehicleHandler.UpdateVehicle)
		vehicles.DELETE("/:id", h.VehicleHandler.DeleteVehicle)
	}

	// ==================== Bookings ====================
	bookings := api.Group("/bookings")
	{
		bookings.GET("", h.BookingHandler.ListBookings)
		bookings.POST("", h.BookingHandler.CreateBooking)
		bookings.GET("/:id", h.BookingHandler.GetBooking)
		bookings.PUT("/:id", h.BookingHandler.UpdateBooking)
		bookings.DELETE("/:id", h.BookingHandler.DeleteBooking)
	}
}
