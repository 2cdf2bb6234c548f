package report

import (
	"fmt"
	"strings"

	"gitlab.com/yelinaung/expense-ledger/internal/money"
	"gitlab.com/yelinaung/expense-ledger/internal/summary"
)

// MonthText renders a plain-text report of the month and its budget alerts.
func MonthText(s summary.MonthlySummary, alerts []string, symbol string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Expenses for %04d-%02d\n", s.Year, s.Month)
	fmt.Fprintf(&sb, "Total: %s\n", money.Format(s.Total, symbol))

	if s.IsEmpty() {
		sb.WriteString("\nNo expenses recorded.\n")
	} else {
		averages := make(map[string]summary.CategoryShare, len(s.Averages))
		for _, avg := range s.Averages {
			averages[avg.Category] = avg
		}

		sb.WriteString("\nBy category:\n")
		for _, ct := range s.Totals {
			fmt.Fprintf(&sb, "  %-16s %14s  %6s%%", ct.Label, money.Format(ct.Amount, symbol), ct.Percentage.StringFixed(2))
			if avg, ok := averages[ct.Category]; ok {
				fmt.Fprintf(&sb, "  avg %s", money.Format(avg.Amount, symbol))
			}
			sb.WriteString("\n")
		}
	}

	if len(alerts) > 0 {
		sb.WriteString("\nAlerts:\n")
		for _, a := range alerts {
			sb.WriteString("  ! " + a + "\n")
		}
	}

	return sb.String()
}
