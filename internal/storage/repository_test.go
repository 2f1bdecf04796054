package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"budgetbook/internal/core"
	"budgetbook/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type SQLiteRepositoryTestSuite struct {
	suite.Suite
	repo    *SQLiteRepository
	ctx     context.Context
	changes []store.Change
}

func (s *SQLiteRepositoryTestSuite) SetupTest() {
	repo, err := NewSQLiteRepository(filepath.Join(s.T().TempDir(), "data", "budget.db"))
	s.Require().NoError(err)
	repo.now = func() time.Time { return time.Date(2026, 10, 15, 8, 30, 0, 0, time.UTC) }
	s.repo = repo
	s.ctx = context.Background()
	s.changes = nil
	repo.Subscribe(func(_ context.Context, c store.Change) { s.changes = append(s.changes, c) })
}

func (s *SQLiteRepositoryTestSuite) TearDownTest() {
	s.NoError(s.repo.Close())
}

func TestSQLiteRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(SQLiteRepositoryTestSuite))
}

func (s *SQLiteRepositoryTestSuite) TestTransactionLifecycle() {
	saved, err := s.repo.UpsertTransaction(s.ctx, core.Transaction{
		Type: core.Expense, Amount: 42.1, Category: "Food", Description: "Lunch", Date: "2026-10-14",
	})
	s.Require().NoError(err)
	s.NotEmpty(saved.ID)

	saved.Amount = 50
	_, err = s.repo.UpsertTransaction(s.ctx, saved)
	s.Require().NoError(err)

	list, err := s.repo.ListTransactions(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal(50.0, list[0].Amount)
	s.Equal("Lunch", list[0].Description)
	s.True(list[0].CreatedAt.Equal(saved.CreatedAt))

	s.Require().NoError(s.repo.DeleteTransaction(s.ctx, saved.ID))
	s.ErrorIs(s.repo.DeleteTransaction(s.ctx, saved.ID), store.ErrNotFound)

	s.Len(s.changes, 3)
}

func (s *SQLiteRepositoryTestSuite) TestInvalidTransactionIsRejected() {
	_, err := s.repo.UpsertTransaction(s.ctx, core.Transaction{Type: core.Income, Amount: -1, Category: "Pay", Date: "2026-10-01"})
	s.ErrorIs(err, core.ErrInvalidTransaction)
	s.Empty(s.changes)
}

func (s *SQLiteRepositoryTestSuite) TestBudgetReplacesCategories() {
	_, err := s.repo.UpsertBudget(s.ctx, core.MonthlyBudget{
		Month:      "2026-01",
		Categories: map[string]float64{"Food": 500, "Transport": 300},
	})
	s.Require().NoError(err)
	_, err = s.repo.UpsertBudget(s.ctx, core.MonthlyBudget{
		Month:      "2026-01",
		Categories: map[string]float64{"Food": 450},
	})
	s.Require().NoError(err)
	_, err = s.repo.UpsertBudget(s.ctx, core.MonthlyBudget{Month: "2025-12"})
	s.Require().NoError(err)

	b, err := s.repo.GetBudget(s.ctx, "2026-01")
	s.Require().NoError(err)
	s.Equal(map[string]float64{"Food": 450}, b.Categories)

	all, err := s.repo.ListBudgets(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(all, 2)
	s.Equal("2025-12", all[0].Month)
	s.Empty(all[0].Categories)

	s.Require().NoError(s.repo.DeleteBudget(s.ctx, "2026-01"))
	_, err = s.repo.GetBudget(s.ctx, "2026-01")
	s.ErrorIs(err, store.ErrNotFound)
	s.ErrorIs(s.repo.DeleteBudget(s.ctx, "2026-01"), store.ErrNotFound)
}

func (s *SQLiteRepositoryTestSuite) TestSubscriptionRoundTrip() {
	saved, err := s.repo.UpsertSubscription(s.ctx, core.Subscription{
		ServiceName:       "Cloud",
		DefaultPrice:      30,
		ActualPrice:       20,
		ParticipantCount:  2,
		Currency:          core.USD,
		BillingCycle:      core.Custom,
		CustomCycleMonths: 3,
		BillingStartDate:  "2026-01-31",
	})
	s.Require().NoError(err)

	list, err := s.repo.ListSubscriptions(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal(saved.ID, list[0].ID)
	s.Equal(3, list[0].CustomCycleMonths)
	s.Equal(core.USD, list[0].Currency)

	s.Require().NoError(s.repo.DeleteSubscription(s.ctx, saved.ID))
	s.True(errors.Is(s.repo.DeleteSubscription(s.ctx, saved.ID), store.ErrNotFound))
}

func (s *SQLiteRepositoryTestSuite) TestLegacySubscriptionRowsAreUpgraded() {
	_, err := s.repo.db.ExecContext(s.ctx, `
		INSERT INTO subscriptions (id, schema_version, payload, created_at, updated_at)
		VALUES ('old', 1, ?, '2024-01-01T00:00:00Z', '2024-01-01T00:00:00Z'),
		       ('broken', 1, 'not json', '2024-01-01T00:00:00Z', '2024-01-01T00:00:00Z')`,
		`{"name":"Gym","price":60000,"members":2,"cycle":"custom","months":6,"startDate":"2024-01-10"}`)
	s.Require().NoError(err)

	list, err := s.repo.ListSubscriptions(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal("old", list[0].ID)
	s.Equal("Gym", list[0].ServiceName)
	s.Equal(core.Custom, list[0].BillingCycle)
	s.Equal(6, list[0].CustomCycleMonths)
	s.Equal(2, list[0].ParticipantCount)
}

func TestNewSQLiteRepositoryReopensExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "budget.db")

	first, err := NewSQLiteRepository(path)
	require.NoError(t, err)
	_, err = first.UpsertBudget(context.Background(), core.MonthlyBudget{Month: "2026-03", Categories: map[string]float64{"Rent": 900}})
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := NewSQLiteRepository(path)
	require.NoError(t, err)
	defer second.Close()

	b, err := second.GetBudget(context.Background(), "2026-03")
	require.NoError(t, err)
	assert.Equal(t, 900.0, b.Categories["Rent"])
}
