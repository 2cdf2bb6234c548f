// Package alerts reports categories whose monthly spending exceeds a budget.
package alerts

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/expense-ledger/internal/categories"
	"gitlab.com/yelinaung/expense-ledger/internal/logger"
	"gitlab.com/yelinaung/expense-ledger/internal/money"
	"gitlab.com/yelinaung/expense-ledger/internal/summary"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Alert is one budget overrun.
type Alert struct {
	// Category is the normalized budget key, e.g. "Groceries".
	Category string
	Spent    decimal.Decimal
	Budget   decimal.Decimal
	Overage  decimal.Decimal
}

// Message renders the alert, e.g. "Groceries budget exceeded by 5.00 €".
func (a Alert) Message(symbol string) string {
	return fmt.Sprintf("%s budget exceeded by %s", a.Category, money.Format(a.Overage, symbol))
}

// TotalsSource provides per-category month totals.
type TotalsSource interface {
	PerCategoryTotals(ctx context.Context, ownerID int64, year, month int) ([]summary.CategoryAmount, error)
}

// Evaluator compares monthly totals against budgets.
type Evaluator struct {
	totals  TotalsSource
	budgets Budgets
	symbol  string
	tracer  trace.Tracer
}

// NewEvaluator creates an evaluator. budgets is not modified.
func NewEvaluator(totals TotalsSource, budgets Budgets, symbol string) *Evaluator {
	return &Evaluator{
		totals:  totals,
		budgets: budgets,
		symbol:  symbol,
		tracer:  otel.Tracer("gitlab.com/yelinaung/expense-ledger/internal/alerts"),
	}
}

// Alerts returns the overruns for the month in category-total order.
// Spending equal to the budget is not an overrun.
func (e *Evaluator) Alerts(ctx context.Context, ownerID int64, year, month int) ([]Alert, error) {
	ctx, span := e.tracer.Start(ctx, "alerts.Evaluate", trace.WithAttributes(
		attribute.Int("year", year),
		attribute.Int("month", month),
	))
	defer span.End()

	totals, err := e.totals.PerCategoryTotals(ctx, ownerID, year, month)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to evaluate budgets: %w", err)
	}

	alerts := []Alert{}
	for _, t := range totals {
		limit, ok := e.budgets.Lookup(t.Category)
		if !ok || !t.Amount.GreaterThan(limit) {
			continue
		}
		alerts = append(alerts, Alert{
			Category: categories.BudgetKey(t.Category),
			Spent:    t.Amount,
			Budget:   limit,
			Overage:  t.Amount.Sub(limit),
		})
	}

	if len(alerts) > 0 {
		log := logger.ForOwner(ownerID)
		log.Debug().
			Int("year", year).
			Int("month", month).
			Int("alerts", len(alerts)).
			Msg("Budgets exceeded")
	}
	span.SetAttributes(attribute.Int("alerts", len(alerts)))
	return alerts, nil
}

// Evaluate returns the alert messages for the month.
func (e *Evaluator) Evaluate(ctx context.Context, ownerID int64, year, month int) ([]string, error) {
	alerts, err := e.Alerts(ctx, ownerID, year, month)
	if err != nil {
		return nil, err
	}
	msgs := make([]string, len(alerts))
	for i, a := range alerts {
		msgs[i] = a.Message(e.symbol)
	}
	return msgs, nil
}
