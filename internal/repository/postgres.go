package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/expense-ledger/internal/database"
	"gitlab.com/yelinaung/expense-ledger/internal/models"
)

// PostgresStore stores expenses in PostgreSQL.
type PostgresStore struct {
	db database.TxDB
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore creates a store over a pool or an open transaction.
func NewPostgresStore(db database.TxDB) *PostgresStore {
	return &PostgresStore{db: db}
}

// WithinOwnerTx runs fn in a transaction holding a per-owner advisory lock.
func (s *PostgresStore) WithinOwnerTx(ctx context.Context, ownerID int64, fn func(ExpenseRepository) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, ownerID); err != nil {
		return fmt.Errorf("failed to lock owner: %w", err)
	}

	if err := fn(&pgExpenses{db: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *PostgresStore) repo() *pgExpenses {
	return &pgExpenses{db: s.db}
}

// Save inserts or overwrites an expense.
func (s *PostgresStore) Save(ctx context.Context, e *models.Expense) error {
	return s.repo().Save(ctx, e)
}

// Delete removes an expense by ID.
func (s *PostgresStore) Delete(ctx context.Context, id int64) error {
	return s.repo().Delete(ctx, id)
}

// Find retrieves an expense by ID.
func (s *PostgresStore) Find(ctx context.Context, id int64) (*models.Expense, error) {
	return s.repo().Find(ctx, id)
}

// FindBy retrieves a page of matching expenses, newest first.
func (s *PostgresStore) FindBy(ctx context.Context, c models.Criteria, offset, limit int) ([]models.Expense, error) {
	return s.repo().FindBy(ctx, c, offset, limit)
}

// CountBy counts matching expenses.
func (s *PostgresStore) CountBy(ctx context.Context, c models.Criteria) (int, error) {
	return s.repo().CountBy(ctx, c)
}

// ListExpenditureYears lists the years with expenses, newest first.
func (s *PostgresStore) ListExpenditureYears(ctx context.Context, ownerID int64) ([]int, error) {
	return s.repo().ListExpenditureYears(ctx, ownerID)
}

// SumAmountsByCategory sums matching amounts per category.
func (s *PostgresStore) SumAmountsByCategory(ctx context.Context, c models.Criteria) ([]models.CategoryAmount, error) {
	return s.repo().SumAmountsByCategory(ctx, c)
}

// AverageAmountsByCategory averages matching amounts per category.
func (s *PostgresStore) AverageAmountsByCategory(ctx context.Context, c models.Criteria) ([]models.CategoryAverage, error) {
	return s.repo().AverageAmountsByCategory(ctx, c)
}

// SumAmounts sums matching amounts.
func (s *PostgresStore) SumAmounts(ctx context.Context, c models.Criteria) (int64, error) {
	return s.repo().SumAmounts(ctx, c)
}

// pgExpenses runs the queries against either the pool or a transaction.
type pgExpenses struct {
	db database.PGXDB
}

const expenseColumns = `id, owner_id, occurred_on, category, amount_minor, description, created_at, updated_at`

func (r *pgExpenses) Save(ctx context.Context, e *models.Expense) error {
	if !e.IsPersisted() {
		var id int64
		err := r.db.QueryRow(ctx, `
			INSERT INTO expenses (owner_id, occurred_on, category, amount_minor, description)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_at, updated_at
		`, e.OwnerID, e.OccurredOn, e.Category, e.AmountMinor, e.Description,
		).Scan(&id, &e.CreatedAt, &e.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to create expense: %w", err)
		}
		e.ID = &id
		return nil
	}

	// owner_id is deliberately absent: ownership never changes after creation.
	err := r.db.QueryRow(ctx, `
		UPDATE expenses SET
			occurred_on = $2,
			category = $3,
			amount_minor = $4,
			description = $5,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`, *e.ID, e.OccurredOn, e.Category, e.AmountMinor, e.Description).Scan(&e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	return nil
}

func (r *pgExpenses) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgExpenses) Find(ctx context.Context, id int64) (*models.Expense, error) {
	rows, err := r.db.Query(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	defer rows.Close()

	expenses, err := scanExpenses(rows)
	if err != nil {
		return nil, err
	}
	if len(expenses) == 0 {
		return nil, ErrNotFound
	}
	return &expenses[0], nil
}

func (r *pgExpenses) FindBy(ctx context.Context, c models.Criteria, offset, limit int) ([]models.Expense, error) {
	if err := checkPage(offset, limit); err != nil {
		return nil, err
	}
	where, args := criteriaClause(c)
	args = append(args, limit, offset)
	rows, err := r.db.Query(ctx, `
		SELECT `+expenseColumns+`
		FROM expenses
		WHERE `+where+`
		ORDER BY occurred_on DESC, id DESC
		LIMIT $`+strconv.Itoa(len(args)-1)+` OFFSET $`+strconv.Itoa(len(args)),
		args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer rows.Close()

	return scanExpenses(rows)
}

func (r *pgExpenses) CountBy(ctx context.Context, c models.Criteria) (int, error) {
	where, args := criteriaClause(c)
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM expenses WHERE `+where, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count expenses: %w", err)
	}
	return count, nil
}

func (r *pgExpenses) ListExpenditureYears(ctx context.Context, ownerID int64) ([]int, error) {
	rows, err := r.db.Query(ctx, `
		SELECT DISTINCT EXTRACT(YEAR FROM occurred_on)::int AS year
		FROM expenses
		WHERE owner_id = $1
		ORDER BY year DESC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenditure years: %w", err)
	}
	defer rows.Close()

	years := []int{}
	for rows.Next() {
		var year int
		if err := rows.Scan(&year); err != nil {
			return nil, fmt.Errorf("failed to scan year: %w", err)
		}
		years = append(years, year)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating years: %w", err)
	}
	return years, nil
}

func (r *pgExpenses) SumAmountsByCategory(ctx context.Context, c models.Criteria) ([]models.CategoryAmount, error) {
	where, args := criteriaClause(c)
	rows, err := r.db.Query(ctx, `
		SELECT category, SUM(amount_minor)::bigint
		FROM expenses
		WHERE `+where+`
		GROUP BY category
		ORDER BY MIN(id)
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to sum amounts by category: %w", err)
	}
	defer rows.Close()

	sums := []models.CategoryAmount{}
	for rows.Next() {
		var row models.CategoryAmount
		if err := rows.Scan(&row.Category, &row.Minor); err != nil {
			return nil, fmt.Errorf("failed to scan category sum: %w", err)
		}
		sums = append(sums, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category sums: %w", err)
	}
	return sums, nil
}

func (r *pgExpenses) AverageAmountsByCategory(ctx context.Context, c models.Criteria) ([]models.CategoryAverage, error) {
	where, args := criteriaClause(c)
	rows, err := r.db.Query(ctx, `
		SELECT category, AVG(amount_minor)
		FROM expenses
		WHERE `+where+`
		GROUP BY category
		ORDER BY MIN(id)
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to average amounts by category: %w", err)
	}
	defer rows.Close()

	avgs := []models.CategoryAverage{}
	for rows.Next() {
		var row models.CategoryAverage
		if err := rows.Scan(&row.Category, &row.Minor); err != nil {
			return nil, fmt.Errorf("failed to scan category average: %w", err)
		}
		avgs = append(avgs, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category averages: %w", err)
	}
	return avgs, nil
}

func (r *pgExpenses) SumAmounts(ctx context.Context, c models.Criteria) (int64, error) {
	where, args := criteriaClause(c)
	var total decimal.Decimal
	err := r.db.QueryRow(ctx, `SELECT COALESCE(SUM(amount_minor), 0) FROM expenses WHERE `+where, args...).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum amounts: %w", err)
	}
	return total.IntPart(), nil
}

// criteriaClause builds the WHERE clause and its positional arguments.
func criteriaClause(c models.Criteria) (string, []any) {
	clauses := []string{"owner_id = $1"}
	args := []any{c.OwnerID}
	if c.Year != nil {
		args = append(args, *c.Year)
		clauses = append(clauses, "EXTRACT(YEAR FROM occurred_on) = $"+strconv.Itoa(len(args)))
	}
	if c.Month != nil {
		args = append(args, *c.Month)
		clauses = append(clauses, "EXTRACT(MONTH FROM occurred_on) = $"+strconv.Itoa(len(args)))
	}
	return strings.Join(clauses, " AND "), args
}

// scanExpenses is a helper to scan full expense rows.
func scanExpenses(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
},
) ([]models.Expense, error) {
	expenses := []models.Expense{}
	for rows.Next() {
		var exp models.Expense
		var id int64
		if err := rows.Scan(
			&id, &exp.OwnerID, &exp.OccurredOn, &exp.Category, &exp.AmountMinor, &exp.Description,
			&exp.CreatedAt, &exp.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		exp.ID = &id
		exp.OccurredOn = models.DateOf(exp.OccurredOn)
		expenses = append(expenses, exp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expenses: %w", err)
	}
	return expenses, nil
}
