package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gitlab.com/yelinaung/expense-ledger/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newExpense(owner int64, on time.Time, category string, minor int64, desc string) *models.Expense {
	return &models.Expense{
		OwnerID:     owner,
		OccurredOn:  on,
		Category:    category,
		AmountMinor: minor,
		Description: desc,
	}
}

func mustSave(t *testing.T, ctx context.Context, repo ExpenseRepository, e *models.Expense) *models.Expense {
	t.Helper()
	require.NoError(t, repo.Save(ctx, e))
	require.NotNil(t, e.ID)
	return e
}

// runStoreContract exercises behaviour every Store implementation must share.
func runStoreContract(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("save assigns id and find returns it", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		e := mustSave(t, ctx, store, newExpense(101, date(2024, 5, 3), "groceries", 3000, "weekly shop"))
		require.True(t, e.IsPersisted())
		require.False(t, e.CreatedAt.IsZero())

		got, err := store.Find(ctx, *e.ID)
		require.NoError(t, err)
		require.Equal(t, *e.ID, *got.ID)
		require.Equal(t, int64(101), got.OwnerID)
		require.Equal(t, "groceries", got.Category)
		require.Equal(t, int64(3000), got.AmountMinor)
		require.Equal(t, "weekly shop", got.Description)
		require.True(t, date(2024, 5, 3).Equal(got.OccurredOn))
	})

	t.Run("find missing returns ErrNotFound", func(t *testing.T) {
		store := newStore(t)
		_, err := store.Find(context.Background(), 987654321)
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("save with id overwrites but keeps owner", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		e := mustSave(t, ctx, store, newExpense(102, date(2024, 5, 3), "groceries", 3000, "shop"))
		e.Category = "transport"
		e.AmountMinor = 450
		e.Description = "bus"
		e.OwnerID = 999
		require.NoError(t, store.Save(ctx, e))

		got, err := store.Find(ctx, *e.ID)
		require.NoError(t, err)
		require.Equal(t, int64(102), got.OwnerID)
		require.Equal(t, "transport", got.Category)
		require.Equal(t, int64(450), got.AmountMinor)
		require.Equal(t, "bus", got.Description)
	})

	t.Run("save with unknown id returns ErrNotFound", func(t *testing.T) {
		store := newStore(t)
		id := int64(987654321)
		e := newExpense(103, date(2024, 5, 3), "groceries", 100, "x")
		e.ID = &id
		require.ErrorIs(t, store.Save(context.Background(), e), ErrNotFound)
	})

	t.Run("delete removes and second delete fails", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		e := mustSave(t, ctx, store, newExpense(104, date(2024, 5, 3), "groceries", 100, "x"))
		require.NoError(t, store.Delete(ctx, *e.ID))
		_, err := store.Find(ctx, *e.ID)
		require.ErrorIs(t, err, ErrNotFound)
		require.ErrorIs(t, store.Delete(ctx, *e.ID), ErrNotFound)
	})

	t.Run("findBy orders newest first and pages", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		mustSave(t, ctx, store, newExpense(105, date(2024, 5, 1), "groceries", 100, "first"))
		mustSave(t, ctx, store, newExpense(105, date(2024, 5, 20), "groceries", 200, "third"))
		mustSave(t, ctx, store, newExpense(105, date(2024, 5, 10), "groceries", 300, "second"))
		mustSave(t, ctx, store, newExpense(105, date(2024, 6, 1), "groceries", 400, "june"))
		mustSave(t, ctx, store, newExpense(106, date(2024, 5, 15), "groceries", 500, "other owner"))

		may := models.ForMonth(105, 2024, 5)
		all, err := store.FindBy(ctx, may, 0, 10)
		require.NoError(t, err)
		require.Len(t, all, 3)
		require.Equal(t, "third", all[0].Description)
		require.Equal(t, "second", all[1].Description)
		require.Equal(t, "first", all[2].Description)

		page, err := store.FindBy(ctx, may, 1, 1)
		require.NoError(t, err)
		require.Len(t, page, 1)
		require.Equal(t, "second", page[0].Description)

		beyond, err := store.FindBy(ctx, may, 10, 10)
		require.NoError(t, err)
		require.Empty(t, beyond)

		count, err := store.CountBy(ctx, may)
		require.NoError(t, err)
		require.Equal(t, 3, count)

		count, err = store.CountBy(ctx, models.ForOwner(105))
		require.NoError(t, err)
		require.Equal(t, 4, count)
	})

	t.Run("findBy rejects negative offset and limit", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		for i := range 3 {
			mustSave(t, ctx, store, newExpense(115, date(2024, 5, i+1), "groceries", 100, "row"))
		}
		c := models.ForOwner(115)

		_, err := store.FindBy(ctx, c, 0, -1)
		require.ErrorIs(t, err, ErrInvalidPage)

		_, err = store.FindBy(ctx, c, -1, 10)
		require.ErrorIs(t, err, ErrInvalidPage)

		none, err := store.FindBy(ctx, c, 0, 0)
		require.NoError(t, err)
		require.Empty(t, none)

		err = store.WithinOwnerTx(ctx, 115, func(repo ExpenseRepository) error {
			_, err := repo.FindBy(ctx, c, 0, -1)
			return err
		})
		require.ErrorIs(t, err, ErrInvalidPage)
	})

	t.Run("year filter without month", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		mustSave(t, ctx, store, newExpense(107, date(2023, 12, 31), "groceries", 100, "old"))
		mustSave(t, ctx, store, newExpense(107, date(2024, 1, 1), "groceries", 200, "new"))

		year := 2024
		count, err := store.CountBy(ctx, models.Criteria{OwnerID: 107, Year: &year})
		require.NoError(t, err)
		require.Equal(t, 1, count)
	})

	t.Run("expenditure years are distinct and descending", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		mustSave(t, ctx, store, newExpense(108, date(2022, 3, 1), "groceries", 100, "a"))
		mustSave(t, ctx, store, newExpense(108, date(2024, 3, 1), "groceries", 100, "b"))
		mustSave(t, ctx, store, newExpense(108, date(2024, 7, 1), "groceries", 100, "c"))
		mustSave(t, ctx, store, newExpense(109, date(2020, 3, 1), "groceries", 100, "d"))

		years, err := store.ListExpenditureYears(ctx, 108)
		require.NoError(t, err)
		require.Equal(t, []int{2024, 2022}, years)

		years, err = store.ListExpenditureYears(ctx, 110)
		require.NoError(t, err)
		require.Empty(t, years)
	})

	t.Run("category aggregates keep first-recorded order", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		mustSave(t, ctx, store, newExpense(111, date(2024, 5, 3), "transport", 1500, "train"))
		mustSave(t, ctx, store, newExpense(111, date(2024, 5, 1), "groceries", 3000, "shop"))
		mustSave(t, ctx, store, newExpense(111, date(2024, 5, 9), "transport", 500, "bus"))
		mustSave(t, ctx, store, newExpense(111, date(2024, 4, 9), "health", 9900, "april"))

		may := models.ForMonth(111, 2024, 5)
		sums, err := store.SumAmountsByCategory(ctx, may)
		require.NoError(t, err)
		require.Equal(t, []models.CategoryAmount{
			{Category: "transport", Minor: 2000},
			{Category: "groceries", Minor: 3000},
		}, sums)

		avgs, err := store.AverageAmountsByCategory(ctx, may)
		require.NoError(t, err)
		require.Len(t, avgs, 2)
		require.Equal(t, "transport", avgs[0].Category)
		require.True(t, avgs[0].Minor.Equal(decimal.NewFromInt(1000)), avgs[0].Minor.String())
		require.Equal(t, "groceries", avgs[1].Category)
		require.True(t, avgs[1].Minor.Equal(decimal.NewFromInt(3000)), avgs[1].Minor.String())

		total, err := store.SumAmounts(ctx, may)
		require.NoError(t, err)
		require.Equal(t, int64(5000), total)
	})

	t.Run("aggregates over no records", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		empty := models.ForMonth(112, 2024, 2)
		total, err := store.SumAmounts(ctx, empty)
		require.NoError(t, err)
		require.Zero(t, total)

		sums, err := store.SumAmountsByCategory(ctx, empty)
		require.NoError(t, err)
		require.Empty(t, sums)

		avgs, err := store.AverageAmountsByCategory(ctx, empty)
		require.NoError(t, err)
		require.Empty(t, avgs)
	})

	t.Run("transaction commits on success", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		err := store.WithinOwnerTx(ctx, 113, func(repo ExpenseRepository) error {
			mustSave(t, ctx, repo, newExpense(113, date(2024, 5, 3), "groceries", 100, "a"))
			mustSave(t, ctx, repo, newExpense(113, date(2024, 5, 4), "groceries", 200, "b"))
			return nil
		})
		require.NoError(t, err)

		count, err := store.CountBy(ctx, models.ForOwner(113))
		require.NoError(t, err)
		require.Equal(t, 2, count)
	})

	t.Run("transaction rolls back on error", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		kept := mustSave(t, ctx, store, newExpense(114, date(2024, 5, 1), "groceries", 100, "kept"))
		boom := errors.New("boom")

		err := store.WithinOwnerTx(ctx, 114, func(repo ExpenseRepository) error {
			mustSave(t, ctx, repo, newExpense(114, date(2024, 5, 3), "groceries", 100, "discarded"))
			require.NoError(t, repo.Delete(ctx, *kept.ID))

			count, err := repo.CountBy(ctx, models.ForOwner(114))
			require.NoError(t, err)
			require.Equal(t, 1, count)
			return boom
		})
		require.ErrorIs(t, err, boom)

		rows, err := store.FindBy(ctx, models.ForOwner(114), 0, 10)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		require.Equal(t, "kept", rows[0].Description)
	})
}
