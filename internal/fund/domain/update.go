package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BillUpdate is a partial update to a bill. Nil fields are left alone.
//
// When Recurring flips the bill's mode, the fields belonging to the old
// mode are dropped with it and the caller must supply the fields the new
// mode requires. ClearOccurrences and ClearEndDate remove the optional
// recurrence bounds, which a nil pointer alone cannot express.
type BillUpdate struct {
	Service     *string
	AmountDue   *decimal.Decimal
	Recurring   *bool
	DueDate     *time.Time
	StartDate   *time.Time
	Frequency   *Frequency
	Interval    *int
	Occurrences *int
	EndDate     *time.Time

	ClearOccurrences bool
	ClearEndDate     bool
}

// ApplyTo returns the bill with the update applied, validating the
// result. The bill identifier is immutable and not part of the update.
func (u BillUpdate) ApplyTo(b Bill) (Bill, error) {
	if u.Service != nil {
		b.Service = *u.Service
	}
	if u.AmountDue != nil {
		b.AmountDue = *u.AmountDue
	}

	recurring := b.Recurring()
	if u.Recurring != nil {
		recurring = *u.Recurring
	}

	if recurring {
		rec := Recurrence{Interval: 1}
		if b.Recurrence != nil {
			rec = *b.Recurrence
		}
		if u.StartDate != nil {
			rec.StartDate = Normalize(*u.StartDate)
		}
		if u.Frequency != nil {
			rec.Frequency = *u.Frequency
		}
		if u.Interval != nil {
			rec.Interval = *u.Interval
		}
		if u.Occurrences != nil {
			occ := *u.Occurrences
			rec.Occurrences = &occ
		}
		if u.ClearOccurrences {
			rec.Occurrences = nil
		}
		if u.EndDate != nil {
			end := Normalize(*u.EndDate)
			rec.EndDate = &end
		}
		if u.ClearEndDate {
			rec.EndDate = nil
		}
		b.Recurrence = &rec
		b.DueDate = time.Time{}
	} else {
		b.Recurrence = nil
		if u.DueDate != nil {
			b.DueDate = Normalize(*u.DueDate)
		}
	}

	if err := b.Validate(); err != nil {
		return Bill{}, err
	}
	return b, nil
}
