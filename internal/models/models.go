// Package models defines the domain entities for the expense ledger.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar date format used for expense dates.
const DateLayout = "2006-01-02"

// Category is one entry of the closed category registry.
type Category struct {
	Key   string
	Label string
}

// Expense represents a single expenditure owned by one account.
// ID is nil until the record has been persisted.
type Expense struct {
	ID          *int64
	OwnerID     int64
	OccurredOn  time.Time
	Category    string
	AmountMinor int64
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsPersisted reports whether the expense has been assigned an ID by a repository.
func (e *Expense) IsPersisted() bool {
	return e.ID != nil
}

// Criteria selects an owner's expenses, optionally narrowed to a year and month.
type Criteria struct {
	OwnerID int64
	Year    *int
	Month   *int
}

// ForOwner returns criteria matching every expense of the owner.
func ForOwner(ownerID int64) Criteria {
	return Criteria{OwnerID: ownerID}
}

// ForMonth returns criteria matching the owner's expenses in one calendar month.
func ForMonth(ownerID int64, year, month int) Criteria {
	return Criteria{OwnerID: ownerID, Year: &year, Month: &month}
}

// Matches reports whether an expense satisfies the criteria.
func (c Criteria) Matches(e *Expense) bool {
	if e.OwnerID != c.OwnerID {
		return false
	}
	if c.Year != nil && e.OccurredOn.Year() != *c.Year {
		return false
	}
	if c.Month != nil && int(e.OccurredOn.Month()) != *c.Month {
		return false
	}
	return true
}

// CategoryAmount is one row of a per-category sum, in minor units.
type CategoryAmount struct {
	Category string
	Minor    int64
}

// CategoryAverage is one row of a per-category mean, in minor units.
// The mean keeps its fractional part.
type CategoryAverage struct {
	Category string
	Minor    decimal.Decimal
}

// DateOf truncates t to its calendar date at UTC midnight.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
