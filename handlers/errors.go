package handlers

import (
	"errors"
	"net/http"

	"bookinghub/services/booking"
	"bookinghub/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// writeBookingError maps a reservation-path error to its HTTP response.
func writeBookingError(c *gin.Context, err error) {
	var be *booking.BookingError
	if !errors.As(err, &be) {
		utils.JSONError(c, http.StatusInternalServerError, "Internal Server Error", err.Error())
		return
	}

	switch be.Kind {
	case booking.KindValidation:
		utils.JSONError(c, http.StatusBadRequest, be.Reason, "")
	case booking.KindConflict:
		utils.JSONError(c, http.StatusConflict, "This time slot is no longer available, please pick another slot", be.Reason)
	case booking.KindPayment:
		utils.JSONError(c, http.StatusPaymentRequired, "Payment could not be processed, no charge was made. Please try again.", "")
	case booking.KindPersistence:
		requestLogger(c).Error("reservation not persisted", zap.String("stage", string(be.Stage)), zap.Error(be.Err))
		utils.JSONError(c, http.StatusInternalServerError, "Reservation failed, please contact support", "")
	case booking.KindLockStore:
		utils.JSONError(c, http.StatusServiceUnavailable, "Booking is temporarily unavailable, please try again", "")
	default:
		utils.JSONError(c, http.StatusInternalServerError, "Internal Server Error", "")
	}
}
