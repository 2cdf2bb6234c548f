// Package report renders expenses and monthly summaries for output.
package report

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"gitlab.com/yelinaung/expense-ledger/internal/models"
	"gitlab.com/yelinaung/expense-ledger/internal/money"
)

// ExpensesCSV writes expenses in the import column order: date, description, amount, category.
// There is no header row, so the output can be fed back to the importer.
func ExpensesCSV(expenses []models.Expense) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	for i := range expenses {
		row := []string{
			expenses[i].OccurredOn.Format(models.DateLayout),
			expenses[i].Description,
			money.FromMinor(expenses[i].AmountMinor).StringFixed(money.Scale),
			expenses[i].Category,
		}

		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// Filename returns a descriptive file name like "expenses_2025-01.csv".
func Filename(prefix string, year, month int, ext string) string {
	return fmt.Sprintf("%s_%04d-%02d.%s", prefix, year, month, ext)
}
