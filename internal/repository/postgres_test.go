package repository

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
	"gitlab.com/yelinaung/expense-ledger/internal/database"
	"gitlab.com/yelinaung/expense-ledger/internal/models"
)

func TestPostgresStore(t *testing.T) {
	runStoreContract(t, func(t *testing.T) Store {
		t.Helper()
		return NewPostgresStore(database.TestTx(t))
	})
}

func TestPostgresStore_UnknownCategoryRejectedByForeignKey(t *testing.T) {
	store := NewPostgresStore(database.TestTx(t))
	ctx := context.Background()

	err := store.WithinOwnerTx(ctx, 201, func(repo ExpenseRepository) error {
		return repo.Save(ctx, newExpense(201, date(2024, 5, 3), "not-a-category", 100, "x"))
	})
	require.Error(t, err)

	var pgErr *pgconn.PgError
	require.ErrorAs(t, err, &pgErr)
	require.Equal(t, "23503", pgErr.Code)
}

func TestPostgresStore_AverageKeepsFraction(t *testing.T) {
	store := NewPostgresStore(database.TestTx(t))
	ctx := context.Background()

	mustSave(t, ctx, store, newExpense(202, date(2024, 5, 1), "groceries", 100, "a"))
	mustSave(t, ctx, store, newExpense(202, date(2024, 5, 2), "groceries", 101, "b"))

	avgs, err := store.AverageAmountsByCategory(ctx, models.ForMonth(202, 2024, 5))
	require.NoError(t, err)
	require.Len(t, avgs, 1)
	require.Equal(t, "100.5", avgs[0].Minor.Round(4).String())
}

func TestCriteriaClause(t *testing.T) {
	t.Parallel()

	where, args := criteriaClause(models.ForOwner(5))
	require.Equal(t, "owner_id = $1", where)
	require.Equal(t, []any{int64(5)}, args)

	where, args = criteriaClause(models.ForMonth(5, 2024, 3))
	require.Equal(t, "owner_id = $1 AND EXTRACT(YEAR FROM occurred_on) = $2 AND EXTRACT(MONTH FROM occurred_on) = $3", where)
	require.Equal(t, []any{int64(5), 2024, 3}, args)
}
