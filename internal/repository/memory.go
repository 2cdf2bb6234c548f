package repository

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/expense-ledger/internal/models"
)

// MemoryStore keeps expenses in process memory. It implements the full Store
// contract and is safe for concurrent use.
type MemoryStore struct {
	mu     sync.RWMutex
	rows   map[int64]models.Expense
	nextID int64
	now    func() time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rows:   make(map[int64]models.Expense),
		nextID: 1,
		now:    time.Now,
	}
}

// WithinOwnerTx runs fn with the store locked. Writes made by fn are undone if it fails.
func (s *MemoryStore) WithinOwnerTx(ctx context.Context, _ int64, fn func(ExpenseRepository) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows := maps.Clone(s.rows)
	nextID := s.nextID

	if err := fn(memoryTx{s}); err != nil {
		s.rows = rows
		s.nextID = nextID
		return err
	}
	return nil
}

// Save inserts or overwrites an expense.
func (s *MemoryStore) Save(ctx context.Context, e *models.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, e)
}

// Delete removes an expense by ID.
func (s *MemoryStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.delete(ctx, id)
}

// Find retrieves an expense by ID.
func (s *MemoryStore) Find(ctx context.Context, id int64) (*models.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.find(ctx, id)
}

// FindBy retrieves a page of matching expenses, newest first.
func (s *MemoryStore) FindBy(ctx context.Context, c models.Criteria, offset, limit int) ([]models.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findBy(ctx, c, offset, limit)
}

// CountBy counts matching expenses.
func (s *MemoryStore) CountBy(ctx context.Context, c models.Criteria) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.countBy(ctx, c)
}

// ListExpenditureYears lists the years with expenses, newest first.
func (s *MemoryStore) ListExpenditureYears(ctx context.Context, ownerID int64) ([]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listExpenditureYears(ctx, ownerID)
}

// SumAmountsByCategory sums matching amounts per category.
func (s *MemoryStore) SumAmountsByCategory(ctx context.Context, c models.Criteria) ([]models.CategoryAmount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sumAmountsByCategory(ctx, c)
}

// AverageAmountsByCategory averages matching amounts per category.
func (s *MemoryStore) AverageAmountsByCategory(ctx context.Context, c models.Criteria) ([]models.CategoryAverage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.averageAmountsByCategory(ctx, c)
}

// SumAmounts sums matching amounts.
func (s *MemoryStore) SumAmounts(ctx context.Context, c models.Criteria) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sumAmounts(ctx, c)
}

// The lowercase methods below expect the caller to hold s.mu.

func (s *MemoryStore) save(ctx context.Context, e *models.Expense) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	now := s.now()
	if !e.IsPersisted() {
		id := s.nextID
		s.nextID++
		e.ID = &id
		e.CreatedAt = now
		e.UpdatedAt = now
		s.rows[id] = cloneExpense(*e)
		return nil
	}

	stored, ok := s.rows[*e.ID]
	if !ok {
		return ErrNotFound
	}
	stored.OccurredOn = e.OccurredOn
	stored.Category = e.Category
	stored.AmountMinor = e.AmountMinor
	stored.Description = e.Description
	stored.UpdatedAt = now
	s.rows[*e.ID] = stored
	e.UpdatedAt = now
	return nil
}

func (s *MemoryStore) delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, ok := s.rows[id]; !ok {
		return ErrNotFound
	}
	delete(s.rows, id)
	return nil
}

func (s *MemoryStore) find(ctx context.Context, id int64) (*models.Expense, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e, ok := s.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := cloneExpense(e)
	return &out, nil
}

// matching returns the expenses satisfying c in insertion order.
func (s *MemoryStore) matching(c models.Criteria) []models.Expense {
	ids := slices.Sorted(maps.Keys(s.rows))
	out := make([]models.Expense, 0, len(ids))
	for _, id := range ids {
		e := s.rows[id]
		if c.Matches(&e) {
			out = append(out, cloneExpense(e))
		}
	}
	return out
}

func (s *MemoryStore) findBy(ctx context.Context, c models.Criteria, offset, limit int) ([]models.Expense, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkPage(offset, limit); err != nil {
		return nil, err
	}
	rows := s.matching(c)
	slices.SortStableFunc(rows, func(a, b models.Expense) int {
		if n := b.OccurredOn.Compare(a.OccurredOn); n != 0 {
			return n
		}
		return cmp.Compare(*b.ID, *a.ID)
	})

	if offset >= len(rows) {
		return []models.Expense{}, nil
	}
	rows = rows[offset:]
	if limit < len(rows) {
		rows = rows[:limit]
	}
	return rows, nil
}

func (s *MemoryStore) countBy(ctx context.Context, c models.Criteria) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return len(s.matching(c)), nil
}

func (s *MemoryStore) listExpenditureYears(ctx context.Context, ownerID int64) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	seen := make(map[int]struct{})
	for _, e := range s.matching(models.ForOwner(ownerID)) {
		seen[e.OccurredOn.Year()] = struct{}{}
	}
	years := slices.Sorted(maps.Keys(seen))
	slices.Reverse(years)
	return years, nil
}

type categoryGroup struct {
	category string
	sum      int64
	count    int64
}

// groupByCategory groups matching expenses by category in first-seen order.
func (s *MemoryStore) groupByCategory(c models.Criteria) []categoryGroup {
	var groups []categoryGroup
	index := make(map[string]int)
	for _, e := range s.matching(c) {
		i, ok := index[e.Category]
		if !ok {
			i = len(groups)
			index[e.Category] = i
			groups = append(groups, categoryGroup{category: e.Category})
		}
		groups[i].sum += e.AmountMinor
		groups[i].count++
	}
	return groups
}

func (s *MemoryStore) sumAmountsByCategory(ctx context.Context, c models.Criteria) ([]models.CategoryAmount, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	groups := s.groupByCategory(c)
	out := make([]models.CategoryAmount, len(groups))
	for i, g := range groups {
		out[i] = models.CategoryAmount{Category: g.category, Minor: g.sum}
	}
	return out, nil
}

func (s *MemoryStore) averageAmountsByCategory(ctx context.Context, c models.Criteria) ([]models.CategoryAverage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	groups := s.groupByCategory(c)
	out := make([]models.CategoryAverage, len(groups))
	for i, g := range groups {
		avg := decimal.NewFromInt(g.sum).DivRound(decimal.NewFromInt(g.count), 16)
		out[i] = models.CategoryAverage{Category: g.category, Minor: avg}
	}
	return out, nil
}

func (s *MemoryStore) sumAmounts(ctx context.Context, c models.Criteria) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var total int64
	for _, e := range s.matching(c) {
		total += e.AmountMinor
	}
	return total, nil
}

func cloneExpense(e models.Expense) models.Expense {
	if e.ID != nil {
		id := *e.ID
		e.ID = &id
	}
	return e
}

// memoryTx is the view handed to WithinOwnerTx callbacks. The store lock is already held.
type memoryTx struct {
	s *MemoryStore
}

func (t memoryTx) Save(ctx context.Context, e *models.Expense) error {
	return t.s.save(ctx, e)
}

func (t memoryTx) Delete(ctx context.Context, id int64) error {
	return t.s.delete(ctx, id)
}

func (t memoryTx) Find(ctx context.Context, id int64) (*models.Expense, error) {
	return t.s.find(ctx, id)
}

func (t memoryTx) FindBy(ctx context.Context, c models.Criteria, offset, limit int) ([]models.Expense, error) {
	return t.s.findBy(ctx, c, offset, limit)
}

func (t memoryTx) CountBy(ctx context.Context, c models.Criteria) (int, error) {
	return t.s.countBy(ctx, c)
}

func (t memoryTx) ListExpenditureYears(ctx context.Context, ownerID int64) ([]int, error) {
	return t.s.listExpenditureYears(ctx, ownerID)
}

func (t memoryTx) SumAmountsByCategory(ctx context.Context, c models.Criteria) ([]models.CategoryAmount, error) {
	return t.s.sumAmountsByCategory(ctx, c)
}

func (t memoryTx) AverageAmountsByCategory(ctx context.Context, c models.Criteria) ([]models.CategoryAverage, error) {
	return t.s.averageAmountsByCategory(ctx, c)
}

func (t memoryTx) SumAmounts(ctx context.Context, c models.Criteria) (int64, error) {
	return t.s.sumAmounts(ctx, c)
}
