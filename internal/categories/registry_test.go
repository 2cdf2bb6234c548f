package categories

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gitlab.com/yelinaung/expense-ledger/internal/models"
)

func TestDefault(t *testing.T) {
	t.Parallel()

	r := Default()

	t.Run("keeps registry order", func(t *testing.T) {
		t.Parallel()
		keys := r.Keys()
		require.Equal(t, "groceries", keys[0])
		require.Equal(t, "other", keys[len(keys)-1])
		require.Len(t, r.All(), len(keys))
	})

	t.Run("membership is case-sensitive", func(t *testing.T) {
		t.Parallel()
		require.True(t, r.Contains("groceries"))
		require.True(t, r.Contains("transport"))
		require.False(t, r.Contains("Groceries"))
		require.False(t, r.Contains(" groceries"))
		require.False(t, r.Contains(""))
	})

	t.Run("labels", func(t *testing.T) {
		t.Parallel()
		require.Equal(t, "Dining Out", r.Label("dining"))
		require.Equal(t, "unknown", r.Label("unknown"))
	})

	t.Run("All returns a copy", func(t *testing.T) {
		t.Parallel()
		all := r.All()
		all[0].Key = "changed"
		require.True(t, r.Contains("groceries"))
		require.Equal(t, "groceries", r.Keys()[0])
	})
}

func TestNew_IgnoresDuplicates(t *testing.T) {
	t.Parallel()

	r := New([]models.Category{
		{Key: "a", Label: "A"},
		{Key: "b", Label: "B"},
		{Key: "a", Label: "Again"},
	})

	require.Equal(t, []string{"a", "b"}, r.Keys())
	require.Equal(t, "A", r.Label("a"))
}

func TestBudgetKey(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"groceries":    "Groceries",
		"GROCERIES":    "Groceries",
		"gRoCeRiEs":    "Groceries",
		"dining out":   "Dining out",
		"Dining Out":   "Dining out",
		"":             "",
		"é":            "É",
		"1st category": "1st category",
	}

	for in, want := range tests {
		require.Equal(t, want, BudgetKey(in), "BudgetKey(%q)", in)
	}
}
