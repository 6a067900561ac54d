package models

import "time"

// Provider represents a bookable service provider.
type Provider struct {
	ID              string               `bson:"id" json:"id"`
	Name            string               `bson:"name" json:"name"`
	Email           string               `bson:"email" json:"email"`
	Timezone        string               `bson:"timezone" json:"timezone"`                   // IANA name, e.g. "Europe/Berlin"
	Currency        string               `bson:"currency" json:"currency"`                   // ISO currency for pricing and payouts
	PayoutAccountID string               `bson:"payout_account_id" json:"payout_account_id"` // connected account receiving transfers
	Windows         []AvailabilityWindow `bson:"availability_windows" json:"availability_windows"`
	Active          bool                 `bson:"active" json:"active"`
	CreatedAt       time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time            `bson:"updated_at" json:"updated_at"`
}

// AvailabilityWindow is one recurring weekly opening in a provider's schedule.
type AvailabilityWindow struct {
	ID      string       `bson:"id" json:"id"`
	Weekday time.Weekday `bson:"weekday" json:"weekday"` // 0 = Sunday
	Start   int          `bson:"start" json:"start"`     // minutes from midnight
	End     int          `bson:"end" json:"end"`         // minutes from midnight
	Active  bool         `bson:"active" json:"active"`
}

// WindowsForWeekday returns the provider's active windows matching the weekday.
func (p Provider) WindowsForWeekday(day time.Weekday) []AvailabilityWindow {
	var out []AvailabilityWindow
	for _, w := range p.Windows {
		if w.Active && w.Weekday == day {
			out = append(out, w)
		}
	}
	return out
}

// Location resolves the provider's timezone, falling back to UTC.
func (p Provider) Location() *time.Location {
	if p.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
