package report

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gitlab.com/yelinaung/expense-ledger/internal/categories"
	"gitlab.com/yelinaung/expense-ledger/internal/importer"
	"gitlab.com/yelinaung/expense-ledger/internal/models"
	"gitlab.com/yelinaung/expense-ledger/internal/repository"
	"gitlab.com/yelinaung/expense-ledger/internal/summary"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func sampleExpenses() []models.Expense {
	return []models.Expense{
		{OccurredOn: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), Description: "Milk, whole", AmountMinor: 350, Category: "groceries"},
		{OccurredOn: time.Date(2025, 1, 4, 0, 0, 0, 0, time.UTC), Description: `Bus "express"`, AmountMinor: 200, Category: "transport"},
	}
}

func TestExpensesCSV(t *testing.T) {
	t.Parallel()

	out, err := ExpensesCSV(sampleExpenses())
	require.NoError(t, err)
	require.Equal(t, "2025-01-02,\"Milk, whole\",3.50,groceries\n2025-01-04,\"Bus \"\"express\"\"\",2.00,transport\n", string(out))

	empty, err := ExpensesCSV(nil)
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestExpensesCSV_RoundTripsThroughImporter(t *testing.T) {
	t.Parallel()

	out, err := ExpensesCSV(sampleExpenses())
	require.NoError(t, err)

	store := repository.NewMemoryStore()
	imp := importer.New(store, categories.Default(),
		importer.WithClock(func() time.Time { return time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC) }),
		importer.WithLocation(time.UTC))

	outcome, err := imp.ImportCSV(context.Background(), 1, bytes.NewReader(out))
	require.NoError(t, err)
	require.Equal(t, 2, outcome.Imported)
	require.Empty(t, outcome.Skipped)

	stored, err := store.FindBy(context.Background(), models.ForOwner(1), 0, 10)
	require.NoError(t, err)
	require.Equal(t, `Bus "express"`, stored[0].Description)
	require.Equal(t, "Milk, whole", stored[1].Description)
	require.Equal(t, int64(350), stored[1].AmountMinor)
}

func TestFilename(t *testing.T) {
	t.Parallel()
	require.Equal(t, "expenses_2025-01.csv", Filename("expenses", 2025, 1, "csv"))
	require.Equal(t, "chart_2024-12.png", Filename("chart", 2024, 12, "png"))
}

func sampleSummary() summary.MonthlySummary {
	return summary.MonthlySummary{
		OwnerID: 1,
		Year:    2025,
		Month:   1,
		Total:   decimal.RequireFromString("45"),
		Totals: []summary.CategoryShare{
			{Category: "groceries", Label: "Groceries", Amount: decimal.RequireFromString("30"), Percentage: decimal.RequireFromString("66.67")},
			{Category: "dining", Label: "Dining Out", Amount: decimal.RequireFromString("15"), Percentage: decimal.RequireFromString("33.33")},
		},
		Averages: []summary.CategoryShare{
			{Category: "groceries", Label: "Groceries", Amount: decimal.RequireFromString("15"), Percentage: decimal.RequireFromString("50")},
			{Category: "dining", Label: "Dining Out", Amount: decimal.RequireFromString("15"), Percentage: decimal.RequireFromString("50")},
		},
	}
}

func TestCategoryChart(t *testing.T) {
	t.Parallel()

	t.Run("renders png", func(t *testing.T) {
		png, err := CategoryChart(sampleSummary())
		require.NoError(t, err)
		require.True(t, bytes.HasPrefix(png, pngMagic))
	})

	t.Run("empty month", func(t *testing.T) {
		_, err := CategoryChart(summary.MonthlySummary{Year: 2025, Month: 1})
		require.ErrorIs(t, err, ErrNothingToChart)
	})
}

func TestMonthText(t *testing.T) {
	t.Parallel()

	text := MonthText(sampleSummary(), []string{"Groceries budget exceeded by 5.00 €"}, "€")
	require.Contains(t, text, "Expenses for 2025-01")
	require.Contains(t, text, "Total: 45.00 €")
	require.Contains(t, text, "Groceries")
	require.Contains(t, text, "66.67%")
	require.Contains(t, text, "avg 15.00 €")
	require.Contains(t, text, "! Groceries budget exceeded by 5.00 €")

	empty := MonthText(summary.MonthlySummary{Year: 2025, Month: 2}, nil, "€")
	require.Contains(t, empty, "Total: 0.00 €")
	require.Contains(t, empty, "No expenses recorded.")
	require.NotContains(t, empty, "Alerts:")
}
