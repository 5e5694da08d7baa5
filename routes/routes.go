package routes

import (
	"net/http"
	"time"

	"bookinghub/handlers"
	"bookinghub/middleware"
	"bookinghub/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterHealthRoute reports the last dependency health snapshot.
func RegisterHealthRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/health", func(c *gin.Context) {
		if hb.Health == nil {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
			return
		}
		status := hb.Health.Status()
		code := http.StatusOK
		if !status.Healthy {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, status)
	})
}

// RegisterVendorRoutes registers the public availability endpoint and the
// vendor's own upcoming bookings.
func RegisterVendorRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/vendors")
	{
		api.GET("/:vendorID/availability", hb.Booking.GetAvailabilityHandler)

		protected := api.Group("")
		protected.Use(middleware.JWTAuthMiddleware(hb.JWTSecret), middleware.RequireRole(utils.RoleVendor))
		protected.GET("/:vendorID/bookings/upcoming", hb.Booking.UpcomingVendorBookingsHandler)
	}
}

// RegisterBookingRoutes sets up reservation and listing endpoints.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	bookingGroup := r.Group("/api/bookings")
	{
		bookingGroup.Use(middleware.JWTAuthMiddleware(hb.JWTSecret))
		bookingGroup.POST("", middleware.RequireRole(utils.RoleCustomer), hb.Booking.CreateBookingHandler)
		bookingGroup.GET("", hb.Booking.ListBookingsHandler)
	}
}

// RegisterSlotRoutes sets up slot hold endpoints used during checkout.
func RegisterSlotRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	slotGroup := r.Group("/api/slots")
	{
		slotGroup.Use(middleware.JWTAuthMiddleware(hb.JWTSecret), middleware.RequireRole(utils.RoleCustomer))
		slotGroup.POST("/lock", hb.Booking.LockSlotHandler)
		slotGroup.PUT("/lock/extend", hb.Booking.ExtendSlotHandler)
		slotGroup.DELETE("/lock", hb.Booking.ReleaseSlotHandler)
	}
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
	if hb.MaxRequestsPerMin > 0 {
		r.Use(middleware.RateLimitMiddleware(hb.MaxRequestsPerMin))
	}

	RegisterHealthRoute(r, hb)
	RegisterVendorRoutes(r, hb)
	RegisterBookingRoutes(r, hb)
	RegisterSlotRoutes(r, hb)
}
