//go:build ignore

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"gitlab.com/yelinaung/expense-ledger/internal/categories"
	"gitlab.com/yelinaung/expense-ledger/internal/models"
	"gitlab.com/yelinaung/expense-ledger/internal/report"
	"gitlab.com/yelinaung/expense-ledger/internal/repository"
	"gitlab.com/yelinaung/expense-ledger/internal/summary"
)

func main() {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	day := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	samples := []models.Expense{
		{OwnerID: 1, OccurredOn: day, Category: "groceries", AmountMinor: 15050, Description: "Groceries"},
		{OwnerID: 1, OccurredOn: day, Category: "dining", AmountMinor: 13050, Description: "Dinner"},
		{OwnerID: 1, OccurredOn: day, Category: "transport", AmountMinor: 6000, Description: "Train pass"},
		{OwnerID: 1, OccurredOn: day, Category: "entertainment", AmountMinor: 2500, Description: "Cinema"},
		{OwnerID: 1, OccurredOn: day, Category: "utilities", AmountMinor: 12000, Description: "Power bill"},
	}
	for i := range samples {
		if err := store.Save(ctx, &samples[i]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	month, err := summary.NewAggregator(store, categories.Default()).Month(ctx, 1, 2026, 1)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	chartData, err := report.CategoryChart(month)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile("graph.png", chartData, 0o600); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("✓ Created graph.png - Example expense breakdown chart")
}
