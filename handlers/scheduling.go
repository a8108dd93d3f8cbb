package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"frontdesk/models"
	"frontdesk/services/scheduling"
	"frontdesk/utils"
)

var schedulingEngine *scheduling.Engine

// SetSchedulingEngine injects the engine instance used by the scheduling handlers.
func SetSchedulingEngine(engine *scheduling.Engine) {
	schedulingEngine = engine
}

func tenantID(c *gin.Context) string {
	return c.GetString("tenantID")
}

// parseRange reads the from/to query parameters as RFC 3339 instants.
func parseRange(c *gin.Context) (time.Time, time.Time, bool) {
	from, err := time.Parse(time.RFC3339, c.Query("from"))
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid 'from' parameter", "expected RFC 3339 timestamp")
		return time.Time{}, time.Time{}, false
	}
	to, err := time.Parse(time.RFC3339, c.Query("to"))
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid 'to' parameter", "expected RFC 3339 timestamp")
		return time.Time{}, time.Time{}, false
	}
	if !from.Before(to) {
		utils.JSONError(c, http.StatusBadRequest, "invalid range", "'from' must precede 'to'")
		return time.Time{}, time.Time{}, false
	}
	// Slot generation is O(days x slots x busy periods); keep the window sane.
	if to.Sub(from) > 62*24*time.Hour {
		utils.JSONError(c, http.StatusBadRequest, "range too large", "limit requests to 62 days")
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

// respondSchedulingError maps the scheduling error taxonomy onto HTTP statuses.
func respondSchedulingError(c *gin.Context, err error) {
	var (
		validationErr  *scheduling.ValidationError
		notFoundErr    *scheduling.NotFoundError
		authExpiredErr *scheduling.AuthExpiredError
		providerErr    *scheduling.ProviderError
	)
	switch {
	case errors.As(err, &validationErr):
		utils.JSONError(c, http.StatusUnprocessableEntity, "validation failed", validationErr.Message)
	case errors.As(err, &notFoundErr):
		utils.JSONError(c, http.StatusNotFound, "not found", notFoundErr.Error())
	case errors.As(err, &authExpiredErr):
		utils.JSONError(c, http.StatusConflict, "integration expired", "calendar integration requires re-authorization")
	case errors.As(err, &providerErr):
		utils.JSONError(c, http.StatusBadGateway, "provider error", providerErr.Error())
	default:
		utils.JSONError(c, http.StatusInternalServerError, "internal error", err.Error())
	}
}

// CheckAvailability returns the tenant's open slots for a range.
func CheckAvailability(c *gin.Context) {
	from, to, ok := parseRange(c)
	if !ok {
		return
	}
	slots, err := schedulingEngine.CheckAvailability(c.Request.Context(), tenantID(c), from, to)
	if err != nil {
		respondSchedulingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"slots": slots})
}

// CreateBooking reserves a slot, or files a pending booking when the
// tenant's backend cannot book directly.
func CreateBooking(c *gin.Context) {
	var req models.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	confirmation, err := schedulingEngine.CreateBooking(c.Request.Context(), tenantID(c), req)
	if err != nil {
		respondSchedulingError(c, err)
		return
	}
	status := http.StatusCreated
	if confirmation.Status == models.ConfirmationStatusPending {
		status = http.StatusAccepted
	}
	c.JSON(status, confirmation)
}

// CancelBooking cancels a booking; repeat cancellations still succeed.
func CancelBooking(c *gin.Context) {
	ok, err := schedulingEngine.CancelBooking(c.Request.Context(), tenantID(c), c.Param("bookingID"))
	if err != nil {
		respondSchedulingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cancelled": ok})
}

// GetBookings lists the tenant's bookings for a range.
func GetBookings(c *gin.Context) {
	from, to, ok := parseRange(c)
	if !ok {
		return
	}
	bookings, err := schedulingEngine.GetBookings(c.Request.Context(), tenantID(c), from, to)
	if err != nil {
		respondSchedulingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}
