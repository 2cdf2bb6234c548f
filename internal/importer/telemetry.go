package importer

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "gitlab.com/yelinaung/expense-ledger/internal/importer"

type metrics struct {
	imported metric.Int64Counter
	skipped  metric.Int64Counter
}

func newMetrics() *metrics {
	meter := otel.Meter(instrumentationName)

	imported, err := meter.Int64Counter("expense_import_rows_imported",
		metric.WithDescription("Rows persisted by bulk imports"),
		metric.WithUnit("{row}"))
	if err != nil {
		imported = noop.Int64Counter{}
	}

	skipped, err := meter.Int64Counter("expense_import_rows_skipped",
		metric.WithDescription("Rows rejected by bulk imports, by reason"),
		metric.WithUnit("{row}"))
	if err != nil {
		skipped = noop.Int64Counter{}
	}

	return &metrics{imported: imported, skipped: skipped}
}

func (m *metrics) record(ctx context.Context, outcome Outcome) {
	m.imported.Add(ctx, int64(outcome.Imported))
	for reason, n := range outcome.CountByReason() {
		m.skipped.Add(ctx, int64(n), metric.WithAttributes(attribute.String("reason", string(reason))))
	}
}

func newTracer() trace.Tracer {
	return otel.Tracer(instrumentationName)
}
