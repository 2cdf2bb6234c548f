package alerts

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/expense-ledger/internal/categories"
)

// ErrInvalidBudgets is returned when the budget configuration cannot be used.
var ErrInvalidBudgets = errors.New("invalid category budgets")

// Budgets maps a normalized category key to its monthly threshold in major units.
type Budgets map[string]decimal.Decimal

// ParseBudgets decodes a JSON object of category to threshold, e.g. {"Groceries": 40}.
// Keys are normalized like categories.BudgetKey, so "groceries" and "GROCERIES" name the same budget.
// Thresholds must be positive.
func ParseBudgets(data []byte) (Budgets, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Budgets{}, nil
	}

	var raw map[string]decimal.Decimal
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBudgets, err)
	}

	budgets := make(Budgets, len(raw))
	var errs []error
	for key, limit := range raw {
		norm := categories.BudgetKey(key)
		if norm == "" {
			errs = append(errs, errors.New("empty category key"))
			continue
		}
		if !limit.IsPositive() {
			errs = append(errs, fmt.Errorf("budget for %q must be positive", key))
			continue
		}
		if _, dup := budgets[norm]; dup {
			errs = append(errs, fmt.Errorf("budget for %q given more than once", norm))
			continue
		}
		budgets[norm] = limit
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBudgets, errors.Join(errs...))
	}
	return budgets, nil
}

// Lookup returns the budget for a category key.
func (b Budgets) Lookup(category string) (decimal.Decimal, bool) {
	limit, ok := b[categories.BudgetKey(category)]
	return limit, ok
}
