package models

import "time"

// BookingRequest is the input DTO for creating a reservation or a
// manual-review request.
type BookingRequest struct {
	CustomerName  string    `json:"customerName" binding:"required"`
	CustomerPhone string    `json:"customerPhone" binding:"required"`
	CustomerEmail string    `json:"customerEmail,omitempty"`
	Service       string    `json:"service,omitempty"`
	StartTime     time.Time `json:"startTime" binding:"required"`
	EndTime       time.Time `json:"endTime,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	CallID        string    `json:"callId,omitempty"`
}

// BookingConfirmation is the output DTO shared by every scheduling backend.
// Status is "confirmed" for a real reservation and "pending" when the
// request was routed to manual review.
type BookingConfirmation struct {
	ID         string    `json:"id"`
	ExternalID string    `json:"externalId,omitempty"`
	Status     string    `json:"status"`
	StartTime  time.Time `json:"startTime"`
	EndTime    time.Time `json:"endTime"`
}

const (
	ConfirmationStatusPending   = "pending"
	ConfirmationStatusConfirmed = "confirmed"
)
