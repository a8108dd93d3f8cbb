package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"frontdesk/models"
	"frontdesk/services/scheduling"
	"frontdesk/utils"
)

var pendingService scheduling.PendingBookingService

// SetPendingService injects the pending-booking workflow used by the handlers.
func SetPendingService(svc scheduling.PendingBookingService) {
	pendingService = svc
}

// CreatePendingBooking files a manual-review request directly.
func CreatePendingBooking(c *gin.Context) {
	var req models.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	pending, err := pendingService.CreatePendingBooking(c.Request.Context(), tenantID(c), req)
	if err != nil {
		respondSchedulingError(c, err)
		return
	}
	c.JSON(http.StatusCreated, pending)
}

type staffActionInput struct {
	StaffID string `json:"staffId" binding:"required"`
	Reason  string `json:"reason,omitempty"`
	Date    string `json:"date,omitempty"` // "2006-01-02"
	Time    string `json:"time,omitempty"` // "15:04"
}

// ConfirmPendingBooking closes a review request as confirmed.
func ConfirmPendingBooking(c *gin.Context) {
	var input staffActionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	pending, err := pendingService.ConfirmPendingBooking(c.Request.Context(), tenantID(c), c.Param("pendingID"), input.StaffID)
	if err != nil {
		respondSchedulingError(c, err)
		return
	}
	c.JSON(http.StatusOK, pending)
}

// RejectPendingBooking closes a review request as rejected, appending the
// reason to its notes.
func RejectPendingBooking(c *gin.Context) {
	var input staffActionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	pending, err := pendingService.RejectPendingBooking(c.Request.Context(), tenantID(c), c.Param("pendingID"), input.StaffID, input.Reason)
	if err != nil {
		respondSchedulingError(c, err)
		return
	}
	c.JSON(http.StatusOK, pending)
}

// ConvertPendingBooking turns a review request into a confirmed ledger
// booking, optionally at a staff-supplied date/time.
func ConvertPendingBooking(c *gin.Context) {
	var input staffActionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	confirmation, err := pendingService.ConvertPendingToConfirmed(
		c.Request.Context(), tenantID(c), c.Param("pendingID"), input.StaffID, input.Date, input.Time)
	if err != nil {
		respondSchedulingError(c, err)
		return
	}
	c.JSON(http.StatusCreated, confirmation)
}
