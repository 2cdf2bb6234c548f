// Package summary computes monthly spending rollups for one owner.
package summary

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/expense-ledger/internal/categories"
	"gitlab.com/yelinaung/expense-ledger/internal/models"
	"gitlab.com/yelinaung/expense-ledger/internal/money"
	"gitlab.com/yelinaung/expense-ledger/internal/repository"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ErrInvalidPeriod is returned for a month outside 1..12.
var ErrInvalidPeriod = errors.New("invalid period")

var hundred = decimal.NewFromInt(100)

// CategoryAmount is a per-category figure in major units.
type CategoryAmount struct {
	Category string
	Amount   decimal.Decimal
}

// CategoryShare is a per-category figure with its share of the whole, in percent.
type CategoryShare struct {
	Category   string
	Label      string
	Amount     decimal.Decimal
	Percentage decimal.Decimal
}

// MonthlySummary bundles the figures for one owner and month.
type MonthlySummary struct {
	OwnerID  int64
	Year     int
	Month    int
	Total    decimal.Decimal
	Totals   []CategoryShare
	Averages []CategoryShare
}

// IsEmpty reports whether the month has no expenses.
func (s MonthlySummary) IsEmpty() bool {
	return len(s.Totals) == 0
}

// Aggregator reads monthly figures from a repository. Nothing is cached.
type Aggregator struct {
	repo     repository.ExpenseRepository
	registry *categories.Registry
	tracer   trace.Tracer
}

// NewAggregator creates an aggregator.
func NewAggregator(repo repository.ExpenseRepository, registry *categories.Registry) *Aggregator {
	return &Aggregator{
		repo:     repo,
		registry: registry,
		tracer:   otel.Tracer("gitlab.com/yelinaung/expense-ledger/internal/summary"),
	}
}

func checkPeriod(month int) error {
	if month < 1 || month > 12 {
		return fmt.Errorf("%w: month %d", ErrInvalidPeriod, month)
	}
	return nil
}

// Total returns the owner's spending in the month.
func (a *Aggregator) Total(ctx context.Context, ownerID int64, year, month int) (decimal.Decimal, error) {
	if err := checkPeriod(month); err != nil {
		return decimal.Zero, err
	}
	minor, err := a.repo.SumAmounts(ctx, models.ForMonth(ownerID, year, month))
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to compute total: %w", err)
	}
	return money.FromMinor(minor), nil
}

// PerCategoryTotals returns the month's spending per category, in first-recorded order.
// Categories without spending are absent.
func (a *Aggregator) PerCategoryTotals(ctx context.Context, ownerID int64, year, month int) ([]CategoryAmount, error) {
	if err := checkPeriod(month); err != nil {
		return nil, err
	}
	rows, err := a.repo.SumAmountsByCategory(ctx, models.ForMonth(ownerID, year, month))
	if err != nil {
		return nil, fmt.Errorf("failed to compute category totals: %w", err)
	}

	out := make([]CategoryAmount, len(rows))
	for i, r := range rows {
		out[i] = CategoryAmount{Category: r.Category, Amount: money.FromMinor(r.Minor)}
	}
	return out, nil
}

// PerCategoryAverages returns the mean expense per category, unrounded.
func (a *Aggregator) PerCategoryAverages(ctx context.Context, ownerID int64, year, month int) ([]CategoryAmount, error) {
	if err := checkPeriod(month); err != nil {
		return nil, err
	}
	rows, err := a.repo.AverageAmountsByCategory(ctx, models.ForMonth(ownerID, year, month))
	if err != nil {
		return nil, fmt.Errorf("failed to compute category averages: %w", err)
	}

	out := make([]CategoryAmount, len(rows))
	for i, r := range rows {
		out[i] = CategoryAmount{Category: r.Category, Amount: r.Minor.Shift(-money.Scale)}
	}
	return out, nil
}

// ExpenditureYears returns the years with at least one expense, newest first.
func (a *Aggregator) ExpenditureYears(ctx context.Context, ownerID int64) ([]int, error) {
	years, err := a.repo.ListExpenditureYears(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenditure years: %w", err)
	}
	return years, nil
}

// Month computes every figure for the month together with category shares.
// Total shares are relative to the month total; average shares to the sum of averages.
func (a *Aggregator) Month(ctx context.Context, ownerID int64, year, month int) (MonthlySummary, error) {
	ctx, span := a.tracer.Start(ctx, "summary.Month", trace.WithAttributes(
		attribute.Int("year", year),
		attribute.Int("month", month),
	))
	defer span.End()

	total, err := a.Total(ctx, ownerID, year, month)
	if err != nil {
		span.RecordError(err)
		return MonthlySummary{}, err
	}
	totals, err := a.PerCategoryTotals(ctx, ownerID, year, month)
	if err != nil {
		span.RecordError(err)
		return MonthlySummary{}, err
	}
	averages, err := a.PerCategoryAverages(ctx, ownerID, year, month)
	if err != nil {
		span.RecordError(err)
		return MonthlySummary{}, err
	}

	sumOfAverages := decimal.Zero
	for _, avg := range averages {
		sumOfAverages = sumOfAverages.Add(avg.Amount)
	}

	return MonthlySummary{
		OwnerID:  ownerID,
		Year:     year,
		Month:    month,
		Total:    total,
		Totals:   a.shares(totals, total),
		Averages: a.shares(averages, sumOfAverages),
	}, nil
}

func (a *Aggregator) shares(amounts []CategoryAmount, whole decimal.Decimal) []CategoryShare {
	out := make([]CategoryShare, len(amounts))
	for i, am := range amounts {
		pct := decimal.Zero
		if whole.IsPositive() {
			pct = am.Amount.Div(whole).Mul(hundred).Round(2)
		}
		out[i] = CategoryShare{
			Category:   am.Category,
			Label:      a.registry.Label(am.Category),
			Amount:     am.Amount,
			Percentage: pct,
		}
	}
	return out
}
