package handlers

import (
	"errors"
	"net/http"
	"strconv"

	bookingRepo "bookinghub/database/repository/booking"
	"bookinghub/utils"

	"github.com/gin-gonic/gin"
)

// GetAvailabilityHandler serves GET /api/vendors/:vendorID/availability.
// The slot length comes from ?duration= (minutes) or from ?serviceId=.
func (h *BookingHandler) GetAvailabilityHandler(c *gin.Context) {
	vendorID := c.Param("vendorID")
	date := c.Query("date")
	if date == "" {
		utils.JSONError(c, http.StatusBadRequest, "Missing required parameter", "date is required (YYYY-MM-DD)")
		return
	}

	var duration int
	switch {
	case c.Query("duration") != "":
		d, err := strconv.Atoi(c.Query("duration"))
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, "Invalid duration", err.Error())
			return
		}
		duration = d
	case c.Query("serviceId") != "":
		svc, err := h.Queries.GetService(c.Request.Context(), c.Query("serviceId"))
		if errors.Is(err, bookingRepo.ErrNotFound) {
			utils.JSONError(c, http.StatusNotFound, "Service not found", "")
			return
		}
		if err != nil {
			utils.JSONError(c, http.StatusInternalServerError, "Failed to load service", err.Error())
			return
		}
		if svc.VendorID != vendorID {
			utils.JSONError(c, http.StatusBadRequest, "Service is not offered by this vendor", "")
			return
		}
		duration = svc.Duration
	default:
		utils.JSONError(c, http.StatusBadRequest, "Missing required parameter", "duration or serviceId is required")
		return
	}

	slots, err := h.Availability.ComputeAvailability(c.Request.Context(), vendorID, date, duration)
	if err != nil {
		writeBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"slots": slots})
}
