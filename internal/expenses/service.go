// Package expenses implements the single-record expense lifecycle.
package expenses

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gitlab.com/yelinaung/expense-ledger/internal/categories"
	"gitlab.com/yelinaung/expense-ledger/internal/logger"
	"gitlab.com/yelinaung/expense-ledger/internal/models"
	"gitlab.com/yelinaung/expense-ledger/internal/money"
	"gitlab.com/yelinaung/expense-ledger/internal/repository"
	"gitlab.com/yelinaung/expense-ledger/internal/validation"
)

// DefaultPageSize is used when a caller asks for a non-positive page size.
const DefaultPageSize = 20

// MsgCategoryUnknown is the validation message for a category outside the registry.
const MsgCategoryUnknown = "Category is not recognised."

// ErrNotOwner is returned when an expense belongs to a different owner.
var ErrNotOwner = errors.New("expense belongs to another owner")

// Input holds the raw fields of a manual entry.
type Input = validation.Candidate

// Service creates, edits and lists expenses for one owner at a time.
type Service struct {
	repo     repository.ExpenseRepository
	registry *categories.Registry
	clock    func() time.Time
	location *time.Location
}

// NewService creates a service. A nil location means time.Local.
func NewService(repo repository.ExpenseRepository, registry *categories.Registry, clock func() time.Time, location *time.Location) *Service {
	if clock == nil {
		clock = time.Now
	}
	if location == nil {
		location = time.Local
	}
	return &Service{repo: repo, registry: registry, clock: clock, location: location}
}

// Categories returns the categories available for manual entries.
func (s *Service) Categories() []models.Category {
	return s.registry.All()
}

// Create validates in and stores it as a new expense of ownerID.
// Field problems are returned as validation.Errors.
func (s *Service) Create(ctx context.Context, ownerID int64, in Input) (*models.Expense, error) {
	e := &models.Expense{OwnerID: ownerID}
	if err := s.apply(e, in); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, e); err != nil {
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}

	log := logger.ForOwner(ownerID)
	log.Info().
		Int64("expense_id", *e.ID).
		Str("category", e.Category).
		Str("description", logger.SanitizeDescription(e.Description)).
		Msg("Expense created")
	return e, nil
}

// Update re-validates every field of in and overwrites the expense.
func (s *Service) Update(ctx context.Context, ownerID, id int64, in Input) (*models.Expense, error) {
	e, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(e, in); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, e); err != nil {
		return nil, fmt.Errorf("failed to update expense: %w", err)
	}

	log := logger.ForOwner(ownerID)
	log.Info().Int64("expense_id", id).Msg("Expense updated")
	return e, nil
}

// Delete removes one of the owner's expenses.
func (s *Service) Delete(ctx context.Context, ownerID, id int64) error {
	if _, err := s.Get(ctx, ownerID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}

	log := logger.ForOwner(ownerID)
	log.Info().Int64("expense_id", id).Msg("Expense deleted")
	return nil
}

// Get loads one of the owner's expenses.
func (s *Service) Get(ctx context.Context, ownerID, id int64) (*models.Expense, error) {
	e, err := s.repo.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.OwnerID != ownerID {
		return nil, ErrNotOwner
	}
	return e, nil
}

// List returns one page of the owner's expenses for a month, newest first.
// Pages are numbered from 1.
func (s *Service) List(ctx context.Context, ownerID int64, year, month, page, pageSize int) ([]models.Expense, error) {
	page = max(page, 1)
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	offset := (page - 1) * pageSize

	list, err := s.repo.FindBy(ctx, models.ForMonth(ownerID, year, month), offset, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	return list, nil
}

// Count returns the number of the owner's expenses in a month.
func (s *Service) Count(ctx context.Context, ownerID int64, year, month int) (int, error) {
	n, err := s.repo.CountBy(ctx, models.ForMonth(ownerID, year, month))
	if err != nil {
		return 0, fmt.Errorf("failed to count expenses: %w", err)
	}
	return n, nil
}

// Pages returns how many pages of pageSize are needed for total records.
func Pages(total, pageSize int) int {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if total <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// ExpenditureYears returns the years with at least one expense, newest first.
func (s *Service) ExpenditureYears(ctx context.Context, ownerID int64) ([]int, error) {
	years, err := s.repo.ListExpenditureYears(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenditure years: %w", err)
	}
	return years, nil
}

// apply validates in and copies the converted fields onto e.
func (s *Service) apply(e *models.Expense, in Input) error {
	in.Category = strings.TrimSpace(in.Category)

	errs := validation.Validate(in, s.clock().In(s.location))
	if in.Category != "" && !s.registry.Contains(in.Category) {
		errs.Add(validation.FieldCategory, MsgCategoryUnknown)
	}
	if len(errs) > 0 {
		return errs
	}

	occurredOn, err := validation.ParseDate(in.Date)
	if err != nil {
		return fmt.Errorf("failed to parse date: %w", err)
	}
	minor, err := money.ParseMinor(in.Amount)
	if err != nil {
		return fmt.Errorf("failed to parse amount: %w", err)
	}

	e.OccurredOn = occurredOn
	e.Category = in.Category
	e.AmountMinor = minor
	e.Description = strings.TrimSpace(in.Description)
	return nil
}
