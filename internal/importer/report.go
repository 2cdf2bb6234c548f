package importer

import (
	"context"

	"github.com/rs/zerolog"
	"gitlab.com/yelinaung/expense-ledger/internal/logger"
)

// report logs every skipped row and records the import counters.
func (imp *Importer) report(ctx context.Context, log zerolog.Logger, outcome Outcome) {
	for _, s := range outcome.Skipped {
		event := log.Warn().
			Int("line", s.Line).
			Str("reason", string(s.Reason)).
			Strs("raw", logger.SanitizeRow(s.Raw))
		if len(s.Errors) > 0 {
			event = event.Strs("fields", s.Errors.Fields())
		}
		event.Msg("Skipped import row")
	}

	imp.metrics.record(ctx, outcome)

	log.Info().
		Int("imported", outcome.Imported).
		Int("skipped", len(outcome.Skipped)).
		Msg("Import finished")
}
