package models

// DayHours describes a single weekday's opening window.
// Open and Close use the "15:04" clock format; Closed overrides both.
type DayHours struct {
	Open   string `bson:"open" json:"open"`
	Close  string `bson:"close" json:"close"`
	Closed bool   `bson:"closed" json:"closed"`
}

// Tenant is an isolated business account. All scheduling data is
// partitioned by tenant ID.
type Tenant struct {
	ID       string              `bson:"id" json:"id"`
	Name     string              `bson:"name" json:"name"`
	Timezone string              `bson:"timezone" json:"timezone"` // IANA name, e.g. "America/New_York"
	Hours    map[string]DayHours `bson:"hours,omitempty" json:"hours,omitempty"`
	Provider string              `bson:"provider" json:"provider"` // active scheduling backend
}

// Scheduling backends a tenant can be wired to.
const (
	ProviderBuiltin        = "builtin"
	ProviderCalendly       = "calendly"
	ProviderGoogleCalendar = "google_calendar"
)
