package schema

import (
	"fmt"
	"time"
)

// MeetingDateLayout is the calendar-date format used for scheduled
// meetings. Dates in this form compare correctly as plain strings, so
// callers must preserve zero padding and four-digit years.
const MeetingDateLayout = "2006-01-02"

// CustomerRecord tracks one customer relationship.
//
// AssignedTo is a soft pointer to a StaffRecord id; it is never
// validated against the staff collection.
type CustomerRecord struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Email           string  `json:"email,omitempty"`
	Phone           string  `json:"phone,omitempty"`
	Address         string  `json:"address,omitempty"`
	TotalSpent      float64 `json:"totalSpent"`
	PurchasedVolume float64 `json:"purchasedVolume,omitempty"` // e.g. sqm of tiles
	AssignedTo      string  `json:"assignedTo,omitempty"`
	MeetingDate     string  `json:"meetingDate,omitempty"` // YYYY-MM-DD
	MeetingInfo     string  `json:"meetingInfo,omitempty"`
}

// Validate checks that the CustomerRecord has valid field values.
func (c *CustomerRecord) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("id is required")
	}
	if c.Name == "" {
		return fmt.Errorf("name is required")
	}
	if c.TotalSpent < 0 {
		return fmt.Errorf("total spent must be non-negative (got %v)", c.TotalSpent)
	}
	if c.PurchasedVolume < 0 {
		return fmt.Errorf("purchased volume must be non-negative (got %v)", c.PurchasedVolume)
	}
	if c.MeetingDate != "" {
		if _, err := time.Parse(MeetingDateLayout, c.MeetingDate); err != nil {
			return fmt.Errorf("meeting date must be YYYY-MM-DD (got %q)", c.MeetingDate)
		}
	}
	return nil
}

// HasUpcomingMeeting reports whether the customer has a meeting
// scheduled on or after today (today in MeetingDateLayout form).
// The comparison is lexicographic, which is equivalent to calendar
// order for zero-padded ISO dates.
func (c *CustomerRecord) HasUpcomingMeeting(today string) bool {
	return c.MeetingDate != "" && c.MeetingDate >= today
}

// Today returns the current calendar date in MeetingDateLayout form.
func Today() string {
	return time.Now().Format(MeetingDateLayout)
}
