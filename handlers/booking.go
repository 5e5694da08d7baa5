package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"bookinghub/middleware"
	"bookinghub/models"
	"bookinghub/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type createBookingRequest struct {
	VendorID  string    `json:"vendorId" binding:"required"`
	ServiceID string    `json:"serviceId" binding:"required"`
	StartTime time.Time `json:"startTime" binding:"required"`
	Notes     string    `json:"notes"`
	SessionID string    `json:"sessionId" binding:"required"`
}

// CreateBookingHandler serves POST /api/bookings.
func (h *BookingHandler) CreateBookingHandler(c *gin.Context) {
	logger := requestLogger(c)

	customer, ok := middleware.CustomerFrom(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "Unauthorized", "")
		return
	}

	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}

	res, err := h.Reservations.Reserve(c.Request.Context(), models.ReserveRequest{
		VendorID:  req.VendorID,
		ServiceID: req.ServiceID,
		StartTime: req.StartTime,
		Notes:     req.Notes,
		SessionID: req.SessionID,
		Customer:  customer,
	})
	if err != nil {
		writeBookingError(c, err)
		return
	}

	logger.Info("booking created", zap.String("bookingId", res.Booking.ID), zap.String("vendorId", req.VendorID))
	c.JSON(http.StatusCreated, gin.H{
		"booking":      res.Booking,
		"clientSecret": res.ClientSecret,
	})
}

// ListBookingsHandler serves GET /api/bookings: a customer's bookings, or a
// vendor's when the token carries the vendor role. Newest first.
func (h *BookingHandler) ListBookingsHandler(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "Unauthorized", "")
		return
	}

	filter := models.BookingFilter{}
	switch claims.Role {
	case utils.RoleVendor:
		if claims.VendorID == "" {
			utils.JSONError(c, http.StatusForbidden, "Vendor profile not found", "")
			return
		}
		filter.VendorID = claims.VendorID
	default:
		filter.CustomerID = claims.Subject
	}
	if status := c.Query("status"); status != "" {
		for _, s := range strings.Split(status, ",") {
			filter.Statuses = append(filter.Statuses, models.BookingStatus(strings.ToUpper(strings.TrimSpace(s))))
		}
	}

	bookings, err := h.Queries.ListBookings(c.Request.Context(), filter)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to fetch bookings", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// UpcomingVendorBookingsHandler serves GET
// /api/vendors/:vendorID/bookings/upcoming for the vendor itself.
func (h *BookingHandler) UpcomingVendorBookingsHandler(c *gin.Context) {
	vendorID := c.Param("vendorID")
	claims, ok := middleware.ClaimsFrom(c)
	if !ok || claims.VendorID != vendorID {
		utils.JSONError(c, http.StatusForbidden, "Forbidden", "")
		return
	}

	limit := 10
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 100 {
			utils.JSONError(c, http.StatusBadRequest, "Invalid limit", "limit must be between 1 and 100")
			return
		}
		limit = n
	}

	bookings, err := h.Queries.ListBookings(c.Request.Context(), models.BookingFilter{
		VendorID:  vendorID,
		Statuses:  models.ActiveBookingStatuses,
		From:      h.Now(),
		Limit:     limit,
		Ascending: true,
	})
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to fetch bookings", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}
