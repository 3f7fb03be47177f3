// Package domain contains the core entities for a sinking fund: bills,
// bill instances, envelopes, and contribution schedules.
package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Frequency is the recurrence cadence of a recurring bill.
type Frequency string

const (
	Monthly   Frequency = "monthly"
	Quarterly Frequency = "quarterly"
	Annual    Frequency = "annual"
	Weekly    Frequency = "weekly"
	Daily     Frequency = "daily"
)

// Frequencies lists the supported cadences in display order.
func Frequencies() []Frequency {
	return []Frequency{Monthly, Quarterly, Annual, Weekly, Daily}
}

// ParseFrequency converts an externally-sourced string into a Frequency.
func ParseFrequency(s string) (Frequency, error) {
	switch Frequency(s) {
	case Monthly, Quarterly, Annual, Weekly, Daily:
		return Frequency(s), nil
	default:
		return "", &ValidationError{Field: "frequency", Reason: fmt.Sprintf("unknown frequency %q", s)}
	}
}

// Recurrence describes the repetition rule of a recurring bill.
// EndDate and Occurrences are optional termination bounds; when both are
// set, whichever terminates first wins.
type Recurrence struct {
	StartDate   time.Time
	Frequency   Frequency
	Interval    int
	Occurrences *int
	EndDate     *time.Time
}

// Bill is a single or recurring payment obligation.
//
// Bills are a tagged variant: a nil Recurrence means a one-time bill whose
// timing is DueDate; a non-nil Recurrence means a recurring bill and
// DueDate is ignored.
type Bill struct {
	ID         string
	Service    string
	AmountDue  decimal.Decimal
	DueDate    time.Time
	Recurrence *Recurrence
}

// Recurring reports whether the bill repeats.
func (b Bill) Recurring() bool {
	return b.Recurrence != nil
}

// Validate checks structural invariants on the bill definition.
func (b Bill) Validate() error {
	if b.ID == "" {
		return &ValidationError{Field: "bill_id", Reason: "must not be empty"}
	}
	if b.AmountDue.IsNegative() || b.AmountDue.IsZero() {
		return &ValidationError{Field: "amount_due", Reason: "must be positive"}
	}
	if b.Recurrence == nil {
		if b.DueDate.IsZero() {
			return &ValidationError{Field: "due_date", Reason: "required for one-time bills"}
		}
		return nil
	}
	r := b.Recurrence
	if r.StartDate.IsZero() {
		return &ValidationError{Field: "start_date", Reason: "required for recurring bills"}
	}
	if _, err := ParseFrequency(string(r.Frequency)); err != nil {
		return err
	}
	if r.Interval < 1 {
		return &ValidationError{Field: "interval", Reason: "must be a positive integer"}
	}
	if r.Occurrences != nil && *r.Occurrences < 1 {
		return &ValidationError{Field: "occurrences", Reason: "must be a positive integer"}
	}
	if r.EndDate != nil && r.EndDate.Before(r.StartDate) {
		return &ValidationError{Field: "end_date", Reason: "must not precede start_date"}
	}
	return nil
}

// DueDates expands the bill's due dates that fall within [from, to].
// One-time bills contribute at most one date. Recurring bills are
// expanded from their start date honoring interval, occurrences, and
// recurrence end date.
func (b Bill) DueDates(from, to time.Time) []time.Time {
	if b.Recurrence == nil {
		if b.DueDate.Before(from) || b.DueDate.After(to) {
			return nil
		}
		return []time.Time{b.DueDate}
	}

	r := b.Recurrence
	var dates []time.Time
	d := r.StartDate
	for n := 0; !d.After(to); n++ {
		if r.Occurrences != nil && n >= *r.Occurrences {
			break
		}
		if r.EndDate != nil && d.After(*r.EndDate) {
			break
		}
		if !d.Before(from) {
			dates = append(dates, d)
		}
		d = r.advance(d)
	}
	return dates
}

// NextDueDate returns the first due date on or after the given date, or a
// zero time if the bill has no remaining occurrences.
func (b Bill) NextDueDate(after time.Time) time.Time {
	if b.Recurrence == nil {
		if b.DueDate.Before(after) {
			return time.Time{}
		}
		return b.DueDate
	}
	r := b.Recurrence
	d := r.StartDate
	for n := 0; ; n++ {
		if r.Occurrences != nil && n >= *r.Occurrences {
			return time.Time{}
		}
		if r.EndDate != nil && d.After(*r.EndDate) {
			return time.Time{}
		}
		if !d.Before(after) {
			return d
		}
		d = r.advance(d)
	}
}

// advance steps a due date forward by one recurrence interval.
func (r *Recurrence) advance(d time.Time) time.Time {
	switch r.Frequency {
	case Monthly:
		return d.AddDate(0, r.Interval, 0)
	case Quarterly:
		return d.AddDate(0, 3*r.Interval, 0)
	case Annual:
		return d.AddDate(r.Interval, 0, 0)
	case Weekly:
		return d.AddDate(0, 0, 7*r.Interval)
	case Daily:
		return d.AddDate(0, 0, r.Interval)
	default:
		// Validate rejects unknown frequencies before expansion.
		return d.AddDate(0, r.Interval, 0)
	}
}

// Date normalizes a timestamp to a calendar date at UTC midnight. All
// fund arithmetic works on normalized dates.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Normalize truncates a timestamp to its calendar date at UTC midnight.
func Normalize(t time.Time) time.Time {
	return Date(t.Year(), t.Month(), t.Day())
}
