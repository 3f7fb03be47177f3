package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BillRecord is the transport shape for moving bill definitions in and
// out of a fund: bulk file ingestion, manual entry, and the serialization
// projection that carries bills across fund rebuilds.
//
// The record is deliberately asymmetric: for one-time bills DueDate is
// set and the recurrence fields are empty; for recurring bills DueDate is
// empty and StartDate/Frequency/Interval (plus optional Occurrences and
// EndDate) describe the recurrence. Consumers must branch on Recurring.
type BillRecord struct {
	BillID      string     `json:"bill_id" yaml:"bill_id" mapstructure:"bill_id"`
	Service     string     `json:"service" yaml:"service" mapstructure:"service"`
	AmountDue   string     `json:"amount_due" yaml:"amount_due" mapstructure:"amount_due"`
	Recurring   bool       `json:"recurring" yaml:"recurring" mapstructure:"recurring"`
	DueDate     *time.Time `json:"due_date,omitempty" yaml:"due_date,omitempty" mapstructure:"due_date"`
	StartDate   *time.Time `json:"start_date,omitempty" yaml:"start_date,omitempty" mapstructure:"start_date"`
	Frequency   string     `json:"frequency,omitempty" yaml:"frequency,omitempty" mapstructure:"frequency"`
	Interval    int        `json:"interval,omitempty" yaml:"interval,omitempty" mapstructure:"interval"`
	Occurrences *int       `json:"occurrences,omitempty" yaml:"occurrences,omitempty" mapstructure:"occurrences"`
	EndDate     *time.Time `json:"end_date,omitempty" yaml:"end_date,omitempty" mapstructure:"end_date"`
}

// ToBill converts the transport record into a Bill, validating it.
func (r BillRecord) ToBill() (Bill, error) {
	amount, err := decimal.NewFromString(r.AmountDue)
	if err != nil {
		return Bill{}, &ValidationError{Field: "amount_due", Reason: "not a decimal amount: " + r.AmountDue}
	}

	bill := Bill{
		ID:        r.BillID,
		Service:   r.Service,
		AmountDue: amount,
	}

	if r.Recurring {
		if r.StartDate == nil {
			return Bill{}, &ValidationError{Field: "start_date", Reason: "required for recurring bills"}
		}
		freq, err := ParseFrequency(r.Frequency)
		if err != nil {
			return Bill{}, err
		}
		rec := &Recurrence{
			StartDate:   Normalize(*r.StartDate),
			Frequency:   freq,
			Interval:    r.Interval,
			Occurrences: r.Occurrences,
		}
		if r.EndDate != nil {
			end := Normalize(*r.EndDate)
			rec.EndDate = &end
		}
		bill.Recurrence = rec
	} else {
		if r.DueDate == nil {
			return Bill{}, &ValidationError{Field: "due_date", Reason: "required for one-time bills"}
		}
		bill.DueDate = Normalize(*r.DueDate)
	}

	if err := bill.Validate(); err != nil {
		return Bill{}, err
	}
	return bill, nil
}

// ToUpdate converts a fully filled form record into a partial update
// against an existing bill. Every field the record's mode carries is set;
// optional recurrence bounds left empty are cleared rather than kept.
func (r BillRecord) ToUpdate() (BillUpdate, error) {
	amount, err := decimal.NewFromString(r.AmountDue)
	if err != nil {
		return BillUpdate{}, &ValidationError{Field: "amount_due", Reason: "not a decimal amount: " + r.AmountDue}
	}
	recurring := r.Recurring

	upd := BillUpdate{
		Service:   &r.Service,
		AmountDue: &amount,
		Recurring: &recurring,
	}
	if recurring {
		if r.StartDate == nil {
			return BillUpdate{}, &ValidationError{Field: "start_date", Reason: "required for recurring bills"}
		}
		freq, err := ParseFrequency(r.Frequency)
		if err != nil {
			return BillUpdate{}, err
		}
		start := Normalize(*r.StartDate)
		interval := r.Interval
		upd.StartDate = &start
		upd.Frequency = &freq
		upd.Interval = &interval
		if r.Occurrences != nil {
			occ := *r.Occurrences
			upd.Occurrences = &occ
		} else {
			upd.ClearOccurrences = true
		}
		if r.EndDate != nil {
			end := Normalize(*r.EndDate)
			upd.EndDate = &end
		} else {
			upd.ClearEndDate = true
		}
	} else {
		if r.DueDate == nil {
			return BillUpdate{}, &ValidationError{Field: "due_date", Reason: "required for one-time bills"}
		}
		due := Normalize(*r.DueDate)
		upd.DueDate = &due
	}
	return upd, nil
}

// RecordFromBill produces the transport record for a bill. This is the
// only supported projection for carrying bills between fund instances.
func RecordFromBill(b Bill) BillRecord {
	rec := BillRecord{
		BillID:    b.ID,
		Service:   b.Service,
		AmountDue: b.AmountDue.String(),
		Recurring: b.Recurring(),
	}
	if b.Recurrence != nil {
		start := b.Recurrence.StartDate
		rec.StartDate = &start
		rec.Frequency = string(b.Recurrence.Frequency)
		rec.Interval = b.Recurrence.Interval
		if b.Recurrence.Occurrences != nil {
			occ := *b.Recurrence.Occurrences
			rec.Occurrences = &occ
		}
		if b.Recurrence.EndDate != nil {
			end := *b.Recurrence.EndDate
			rec.EndDate = &end
		}
	} else {
		due := b.DueDate
		rec.DueDate = &due
	}
	return rec
}
