package handlers

import (
	"net/http"
	"time"

	"bookinghub/utils"

	"github.com/gin-gonic/gin"
)

type slotRequest struct {
	VendorID  string    `json:"vendorId" binding:"required"`
	StartTime time.Time `json:"startTime" binding:"required"`
	SessionID string    `json:"sessionId" binding:"required"`
}

func bindSlotRequest(c *gin.Context) (slotRequest, bool) {
	var req slotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return req, false
	}
	return req, true
}

// LockSlotHandler serves POST /api/slots/lock, holding a slot for the
// session while the customer completes checkout.
func (h *BookingHandler) LockSlotHandler(c *gin.Context) {
	req, ok := bindSlotRequest(c)
	if !ok {
		return
	}
	if err := h.Slots.Acquire(c.Request.Context(), req.VendorID, req.StartTime, req.SessionID); err != nil {
		writeBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"locked":    true,
		"expiresAt": h.Now().Add(h.Slots.TTL()).UTC(),
	})
}

// ExtendSlotHandler serves PUT /api/slots/lock/extend.
func (h *BookingHandler) ExtendSlotHandler(c *gin.Context) {
	req, ok := bindSlotRequest(c)
	if !ok {
		return
	}
	extended, err := h.Slots.Extend(c.Request.Context(), req.VendorID, req.StartTime, req.SessionID)
	if err != nil {
		utils.JSONError(c, http.StatusServiceUnavailable, "Booking is temporarily unavailable, please try again", "")
		return
	}
	if !extended {
		utils.JSONError(c, http.StatusConflict, "Slot hold expired or belongs to another session", "")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"extended":  true,
		"expiresAt": h.Now().Add(h.Slots.TTL()).UTC(),
	})
}

// ReleaseSlotHandler serves DELETE /api/slots/lock.
func (h *BookingHandler) ReleaseSlotHandler(c *gin.Context) {
	req, ok := bindSlotRequest(c)
	if !ok {
		return
	}
	released, err := h.Slots.Release(c.Request.Context(), req.VendorID, req.StartTime, req.SessionID)
	if err != nil {
		utils.JSONError(c, http.StatusServiceUnavailable, "Booking is temporarily unavailable, please try again", "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"released": released})
}
