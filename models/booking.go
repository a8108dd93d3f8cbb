package models

import (
	"fmt"
	"time"
)

// Booking statuses. A booking is only ever soft-cancelled: the status flips
// to cancelled and the row stays.
const (
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
	BookingStatusCompleted = "completed"
	BookingStatusNoShow    = "no_show"
)

// BookingSourceCall marks bookings created through the phone assistant.
const BookingSourceCall = "call"

// Booking is a confirmed reservation in the tenant's own ledger.
type Booking struct {
	ID               string    `bson:"id" json:"id"`
	TenantID         string    `bson:"tenant_id" json:"tenantId"`
	CustomerName     string    `bson:"customer_name" json:"customerName"`
	CustomerPhone    string    `bson:"customer_phone" json:"customerPhone"`
	CustomerEmail    string    `bson:"customer_email,omitempty" json:"customerEmail,omitempty"`
	Service          string    `bson:"service,omitempty" json:"service,omitempty"`
	Date             string    `bson:"date" json:"date"` // "2006-01-02"
	Time             string    `bson:"time" json:"time"` // "15:04"
	DurationMinutes  int       `bson:"duration_minutes" json:"durationMinutes"`
	Status           string    `bson:"status" json:"status"`
	ConfirmationCode string    `bson:"confirmation_code" json:"confirmationCode"`
	Source           string    `bson:"source" json:"source"`
	CallID           string    `bson:"call_id,omitempty" json:"callId,omitempty"`
	Notes            string    `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt        time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt        time.Time `bson:"updated_at" json:"updatedAt"`
}

// Interval resolves the booking's stored date/time/duration into concrete
// instants in the given location.
func (b Booking) Interval(loc *time.Location) (start, end time.Time, err error) {
	if loc == nil {
		loc = time.UTC
	}
	start, err = time.ParseInLocation("2006-01-02 15:04", b.Date+" "+b.Time, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("booking %s has unparseable date/time: %w", b.ID, err)
	}
	end = start.Add(time.Duration(b.DurationMinutes) * time.Minute)
	return start, end, nil
}
