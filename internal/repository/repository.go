// Package repository provides persistence for expense records.
package repository

import (
	"context"
	"errors"

	"gitlab.com/yelinaung/expense-ledger/internal/models"
)

// ErrNotFound is returned when an expense does not exist.
var ErrNotFound = errors.New("expense not found")

// ErrInvalidPage is returned by FindBy for a negative offset or limit.
var ErrInvalidPage = errors.New("offset and limit must not be negative")

// ExpenseRepository persists and queries expense records.
// Every query is scoped by the owner in its criteria.
type ExpenseRepository interface {
	// Save inserts the expense when its ID is nil, otherwise overwrites the stored record.
	// On insert the assigned ID and timestamps are written back into e.
	Save(ctx context.Context, e *models.Expense) error
	Delete(ctx context.Context, id int64) error
	Find(ctx context.Context, id int64) (*models.Expense, error)
	// FindBy returns at most limit matching expenses newest first, skipping the first offset.
	// A negative offset or limit fails with ErrInvalidPage.
	FindBy(ctx context.Context, c models.Criteria, offset, limit int) ([]models.Expense, error)
	CountBy(ctx context.Context, c models.Criteria) (int, error)
	// ListExpenditureYears returns the distinct years with expenses, newest first.
	ListExpenditureYears(ctx context.Context, ownerID int64) ([]int, error)
	// SumAmountsByCategory returns per-category sums in first-recorded order.
	SumAmountsByCategory(ctx context.Context, c models.Criteria) ([]models.CategoryAmount, error)
	// AverageAmountsByCategory returns per-category means in first-recorded order.
	AverageAmountsByCategory(ctx context.Context, c models.Criteria) ([]models.CategoryAverage, error)
	SumAmounts(ctx context.Context, c models.Criteria) (int64, error)
}

// Store is an ExpenseRepository that can run a unit of work atomically.
type Store interface {
	ExpenseRepository
	// WithinOwnerTx runs fn against a transactional view of the store.
	// If fn returns an error every write made through the view is discarded.
	// Units of work for the same owner never run concurrently.
	WithinOwnerTx(ctx context.Context, ownerID int64, fn func(ExpenseRepository) error) error
}

func checkPage(offset, limit int) error {
	if offset < 0 || limit < 0 {
		return ErrInvalidPage
	}
	return nil
}
