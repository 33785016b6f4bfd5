// Package types provides common types shared by billing records, reports
// and notifiers.
package types

import "time"

// Entity carries the creation and mutation timestamps of a stored record.
// Embed it in record types to get consistent timestamp handling.
type Entity struct {
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// NewEntity creates an Entity created at now. UpdatedAt stays unset until
// the first mutation.
func NewEntity(now time.Time) Entity {
	return Entity{CreatedAt: now.UTC()}
}

// Touch stamps UpdatedAt with now.
func (e *Entity) Touch(now time.Time) {
	t := now.UTC()
	e.UpdatedAt = &t
}

// Recipient is a notification addressee.
type Recipient struct {
	Email string `json:"email" mapstructure:"email" yaml:"email"`
	Name  string `json:"name"  mapstructure:"name"  yaml:"name"`
}

// IsZero reports whether the recipient has no address.
func (r Recipient) IsZero() bool { return r.Email == "" }

// DaysBetween returns the whole number of days from "from" to "to",
// floored toward negative infinity. 36 hours is one day and -12 hours is -1.
func DaysBetween(from, to time.Time) int {
	d := to.Sub(from)
	days := int(d / (24 * time.Hour))
	if d < 0 && d%(24*time.Hour) != 0 {
		days--
	}
	return days
}

// Within reports whether t lies in the inclusive window [start, end].
func Within(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}
