package report

import (
	"errors"
	"fmt"

	"github.com/go-analyze/charts"
	"gitlab.com/yelinaung/expense-ledger/internal/summary"
)

// ErrNothingToChart is returned for a month without expenses.
var ErrNothingToChart = errors.New("no expenses to chart")

// CategoryChart renders the month's per-category totals as a PNG pie chart.
func CategoryChart(s summary.MonthlySummary) ([]byte, error) {
	if s.IsEmpty() {
		return nil, ErrNothingToChart
	}

	values := make([]float64, len(s.Totals))
	labels := make([]string, len(s.Totals))
	for i, ct := range s.Totals {
		values[i] = ct.Amount.InexactFloat64()
		labels[i] = ct.Label
	}

	p, err := charts.PieRender(
		values,
		charts.TitleOptionFunc(charts.TitleOption{
			Text: fmt.Sprintf("Expense Breakdown - %04d-%02d", s.Year, s.Month),
		}),
		charts.LegendLabelsOptionFunc(labels),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create chart: %w", err)
	}

	buf, err := p.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}

	return buf, nil
}
