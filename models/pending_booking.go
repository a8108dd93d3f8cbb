package models

import "time"

// PendingBooking statuses. Transitions are one-directional:
// pending -> confirmed or pending -> rejected, closed exactly once.
const (
	PendingStatusPending   = "pending"
	PendingStatusConfirmed = "confirmed"
	PendingStatusRejected  = "rejected"
)

// PendingBooking is a manual-review request filed whenever direct booking
// is impossible or unsupported. Staff close it by confirming or rejecting;
// confirmation may convert it into a ledger Booking.
type PendingBooking struct {
	ID            string     `bson:"id" json:"id"`
	TenantID      string     `bson:"tenant_id" json:"tenantId"`
	CallID        string     `bson:"call_id,omitempty" json:"callId,omitempty"`
	CustomerName  string     `bson:"customer_name" json:"customerName"`
	CustomerPhone string     `bson:"customer_phone" json:"customerPhone"`
	CustomerEmail string     `bson:"customer_email,omitempty" json:"customerEmail,omitempty"`
	Service       string     `bson:"service,omitempty" json:"service,omitempty"`
	RequestedDate string     `bson:"requested_date,omitempty" json:"requestedDate,omitempty"` // "2006-01-02"
	RequestedTime string     `bson:"requested_time,omitempty" json:"requestedTime,omitempty"` // "15:04"
	Status        string     `bson:"status" json:"status"`
	Notes         string     `bson:"notes,omitempty" json:"notes,omitempty"` // append-only
	ConfirmedBy   string     `bson:"confirmed_by,omitempty" json:"confirmedBy,omitempty"`
	ConfirmedAt   *time.Time `bson:"confirmed_at,omitempty" json:"confirmedAt,omitempty"`
	CreatedAt     time.Time  `bson:"created_at" json:"createdAt"`
}
