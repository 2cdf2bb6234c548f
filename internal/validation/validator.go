// Package validation checks the fields of a candidate expense.
package validation

import (
	"errors"
	"maps"
	"slices"
	"strings"
	"time"

	"gitlab.com/yelinaung/expense-ledger/internal/models"
	"gitlab.com/yelinaung/expense-ledger/internal/money"
)

// Field names used as keys in Errors.
const (
	FieldAmount      = "amount"
	FieldCategory    = "category"
	FieldDescription = "description"
	FieldDate        = "date"
)

// Error messages.
const (
	MsgAmount           = "Amount must be a positive number."
	MsgCategoryRequired = "Category is required."
	MsgDescription      = "Description is required."
	MsgDateFormat       = "Invalid date format."
	MsgDateFuture       = "Date cannot be in the future."
)

// Candidate holds the raw, untrusted fields of an expense.
type Candidate struct {
	Amount      string
	Category    string
	Description string
	Date        string
}

// Errors maps a field name to its error message. An empty map means the candidate is valid.
type Errors map[string]string

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, field := range e.Fields() {
		parts = append(parts, field+": "+e[field])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Fields returns the invalid field names in sorted order.
func (e Errors) Fields() []string {
	return slices.Sorted(maps.Keys(e))
}

// Has reports whether field has an error.
func (e Errors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

// Add records msg for field unless the field already has an error.
func (e Errors) Add(field, msg string) {
	if _, ok := e[field]; !ok {
		e[field] = msg
	}
}

// AsErrors extracts validation errors from err.
func AsErrors(err error) (Errors, bool) {
	var verr Errors
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}

// Validate runs every field rule against c. All rules run; none short-circuit.
// now decides what "today" is: its calendar date in its own location.
func Validate(c Candidate, now time.Time) Errors {
	errs := Errors{}

	if msg, ok := checkAmount(c.Amount); !ok {
		errs[FieldAmount] = msg
	}
	if strings.TrimSpace(c.Category) == "" {
		errs[FieldCategory] = MsgCategoryRequired
	}
	if strings.TrimSpace(c.Description) == "" {
		errs[FieldDescription] = MsgDescription
	}
	if msg, ok := checkDate(c.Date, now); !ok {
		errs[FieldDate] = msg
	}

	return errs
}

func checkAmount(s string) (string, bool) {
	if _, err := money.ParseMinor(s); err != nil {
		return MsgAmount, false
	}
	return "", true
}

func checkDate(s string, now time.Time) (string, bool) {
	date, err := ParseDate(s)
	if err != nil {
		return MsgDateFormat, false
	}
	if date.After(models.DateOf(now)) {
		return MsgDateFuture, false
	}
	return "", true
}

// ParseDate parses a YYYY-MM-DD calendar date to UTC midnight.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(models.DateLayout, strings.TrimSpace(s))
}
