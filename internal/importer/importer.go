// Package importer loads expenses in bulk from a row stream.
//
// Each row passes through a fixed pipeline: empty-row check, batch-local
// duplicate check, category membership, field validation, then persistence.
// The first failing step decides the skip reason. The whole import runs in one
// store transaction, so an infrastructure failure persists nothing.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"slices"
	"time"

	"github.com/google/uuid"
	"gitlab.com/yelinaung/expense-ledger/internal/categories"
	"gitlab.com/yelinaung/expense-ledger/internal/logger"
	"gitlab.com/yelinaung/expense-ledger/internal/models"
	"gitlab.com/yelinaung/expense-ledger/internal/money"
	"gitlab.com/yelinaung/expense-ledger/internal/repository"
	"gitlab.com/yelinaung/expense-ledger/internal/validation"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ErrTooManyRows is returned when the input exceeds the configured row limit.
var ErrTooManyRows = errors.New("import row limit exceeded")

// SkipReason says why a row was not imported.
type SkipReason string

// Skip reasons, in the order they are checked.
const (
	ReasonEmptyRow        SkipReason = "empty_row"
	ReasonDuplicateRow    SkipReason = "duplicate_row"
	ReasonInvalidCategory SkipReason = "invalid_category"
	ReasonInvalidData     SkipReason = "invalid_data"
)

// SkippedRow reports one rejected row with its original fields.
type SkippedRow struct {
	Line   int
	Reason SkipReason
	Raw    []string
	// Errors holds the field errors for ReasonInvalidData.
	Errors validation.Errors
}

// Outcome summarises one import call.
type Outcome struct {
	BatchID  uuid.UUID
	Imported int
	Skipped  []SkippedRow
}

// CountByReason tallies the skipped rows per reason.
func (o Outcome) CountByReason() map[SkipReason]int {
	counts := make(map[SkipReason]int)
	for _, s := range o.Skipped {
		counts[s.Reason]++
	}
	return counts
}

// Importer runs bulk imports against a store.
type Importer struct {
	store    repository.Store
	registry *categories.Registry
	clock    func() time.Time
	location *time.Location
	maxRows  int
	metrics  *metrics
	tracer   trace.Tracer
}

// Option configures an Importer.
type Option func(*Importer)

// WithClock sets the source of the current time used to reject future dates.
func WithClock(clock func() time.Time) Option {
	return func(i *Importer) {
		i.clock = clock
	}
}

// WithLocation sets the time zone that decides what "today" is.
func WithLocation(loc *time.Location) Option {
	return func(i *Importer) {
		if loc != nil {
			i.location = loc
		}
	}
}

// WithMaxRows limits the number of rows one import may read. Zero means unlimited.
func WithMaxRows(n int) Option {
	return func(i *Importer) {
		i.maxRows = n
	}
}

// New creates an importer.
func New(store repository.Store, registry *categories.Registry, opts ...Option) *Importer {
	imp := &Importer{
		store:    store,
		registry: registry,
		clock:    time.Now,
		location: time.Local,
		metrics:  newMetrics(),
		tracer:   newTracer(),
	}
	for _, opt := range opts {
		opt(imp)
	}
	return imp
}

// ImportCSV imports the CSV records read from r.
func (imp *Importer) ImportCSV(ctx context.Context, ownerID int64, r io.Reader) (Outcome, error) {
	return imp.Import(ctx, ownerID, Rows(r))
}

// Import runs every row of rows through the pipeline and persists the valid ones.
// A read error, a store error, or ctx cancellation aborts the import and rolls back
// every row persisted by this call.
func (imp *Importer) Import(ctx context.Context, ownerID int64, rows iter.Seq2[RawRow, error]) (Outcome, error) {
	batchID := uuid.New()
	ownerHash := logger.HashOwnerID(ownerID)
	log := logger.Log.With().
		Str("owner_hash", ownerHash).
		Str("batch_id", batchID.String()).
		Logger()

	ctx, span := imp.tracer.Start(ctx, "importer.Import", trace.WithAttributes(
		attribute.String("owner_hash", ownerHash),
		attribute.String("batch_id", batchID.String()),
	))
	defer span.End()

	today := imp.clock().In(imp.location)

	var outcome Outcome
	err := imp.store.WithinOwnerTx(ctx, ownerID, func(repo repository.ExpenseRepository) error {
		outcome = Outcome{BatchID: batchID}
		seen := make(map[uint64]struct{})
		read := 0

		for raw, err := range rows {
			if err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			read++
			if imp.maxRows > 0 && read > imp.maxRows {
				return fmt.Errorf("%w: more than %d rows", ErrTooManyRows, imp.maxRows)
			}

			skip, expense := imp.check(Parse(raw), ownerID, today, seen)
			if skip != nil {
				outcome.Skipped = append(outcome.Skipped, *skip)
				continue
			}

			if err := repo.Save(ctx, expense); err != nil {
				return fmt.Errorf("failed to save row %d: %w", raw.Line, err)
			}
			outcome.Imported++
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "import aborted")
		log.Error().Err(err).Msg("Import aborted, no rows persisted")
		return Outcome{BatchID: batchID}, err
	}

	imp.report(ctx, log, outcome)
	span.SetAttributes(
		attribute.Int("imported", outcome.Imported),
		attribute.Int("skipped", len(outcome.Skipped)),
	)
	return outcome, nil
}

// check applies the rejection rules in order. It returns either a skip or an expense ready to save.
func (imp *Importer) check(p ParsedCandidate, ownerID int64, today time.Time, seen map[uint64]struct{}) (*SkippedRow, *models.Expense) {
	skip := func(reason SkipReason) *SkippedRow {
		return &SkippedRow{Line: p.Line, Reason: reason, Raw: slices.Clone(p.Raw)}
	}

	if p.IsEmpty() {
		return skip(ReasonEmptyRow), nil
	}

	hash := p.Hash()
	if _, dup := seen[hash]; dup {
		return skip(ReasonDuplicateRow), nil
	}
	seen[hash] = struct{}{}

	if !imp.registry.Contains(p.Category) {
		return skip(ReasonInvalidCategory), nil
	}

	errs := validation.Validate(validation.Candidate{
		Amount:      p.Amount,
		Category:    p.Category,
		Description: p.Description,
		Date:        p.Date,
	}, today)
	if len(errs) > 0 {
		s := skip(ReasonInvalidData)
		s.Errors = errs
		return s, nil
	}

	// Both conversions already succeeded inside Validate.
	occurredOn, _ := validation.ParseDate(p.Date)
	minor, _ := money.ParseMinor(p.Amount)

	return nil, &models.Expense{
		OwnerID:     ownerID,
		OccurredOn:  occurredOn,
		Category:    p.Category,
		AmountMinor: minor,
		Description: p.Description,
	}
}
