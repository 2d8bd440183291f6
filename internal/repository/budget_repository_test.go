package repository

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"gitlab.com/minthway/splitledger/internal/database"
	"gitlab.com/minthway/splitledger/internal/models"
)

func setupBudgetTest(t *testing.T) (*BudgetRepository, *MemberRepository, context.Context) {
	t.Helper()

	pool := database.TestDB(t)
	ctx := context.Background()

	err := database.RunMigrations(ctx, pool)
	require.NoError(t, err)
	database.CleanupTables(t, pool)

	return NewBudgetRepository(pool), NewMemberRepository(pool), ctx
}

func TestBudgetRepository_Create(t *testing.T) {
	budgetRepo, memberRepo, ctx := setupBudgetTest(t)

	member := &models.Member{Name: "Taylor"}
	require.NoError(t, memberRepo.Create(ctx, member))

	budget := &models.Budget{
		MemberID: member.ID,
		Category: "food",
		Amount:   decimal.NewFromInt(500),
	}
	err := budgetRepo.Create(ctx, budget)
	require.NoError(t, err)
	require.NotZero(t, budget.ID)

	t.Run("same category updates the limit", func(t *testing.T) {
		replacement := &models.Budget{
			MemberID: member.ID,
			Category: "food",
			Amount:   decimal.NewFromInt(600),
		}
		err := budgetRepo.Create(ctx, replacement)
		require.NoError(t, err)
		require.Equal(t, budget.ID, replacement.ID)

		budgets, err := budgetRepo.ListByMember(ctx, member.ID)
		require.NoError(t, err)
		require.Len(t, budgets, 1)
		require.True(t, budgets[0].Amount.Equal(decimal.NewFromInt(600)))
	})
}

func TestBudgetRepository_GetByID(t *testing.T) {
	budgetRepo, memberRepo, ctx := setupBudgetTest(t)

	member := &models.Member{Name: "Morgan"}
	require.NoError(t, memberRepo.Create(ctx, member))

	budget := &models.Budget{
		MemberID: member.ID,
		Category: "transport",
		Amount:   decimal.NewFromInt(150),
	}
	require.NoError(t, budgetRepo.Create(ctx, budget))

	t.Run("retrieves existing budget", func(t *testing.T) {
		fetched, err := budgetRepo.GetByID(ctx, budget.ID)
		require.NoError(t, err)
		require.Equal(t, "transport", fetched.Category)
		require.True(t, fetched.Amount.Equal(decimal.NewFromInt(150)))
	})

	t.Run("returns not found for unknown budget", func(t *testing.T) {
		_, err := budgetRepo.GetByID(ctx, 99999)
		require.Error(t, err)
		require.True(t, models.IsNotFound(err))
	})
}

func TestBudgetRepository_ListByMember(t *testing.T) {
	budgetRepo, memberRepo, ctx := setupBudgetTest(t)

	member := &models.Member{Name: "Quinn"}
	require.NoError(t, memberRepo.Create(ctx, member))

	for _, category := range []string{"shopping", "food", "bills"} {
		budget := &models.Budget{
			MemberID: member.ID,
			Category: category,
			Amount:   decimal.NewFromInt(100),
		}
		require.NoError(t, budgetRepo.Create(ctx, budget))
	}

	budgets, err := budgetRepo.ListByMember(ctx, member.ID)
	require.NoError(t, err)
	require.Len(t, budgets, 3)
	require.Equal(t, "bills", budgets[0].Category)
	require.Equal(t, "food", budgets[1].Category)
	require.Equal(t, "shopping", budgets[2].Category)
}

func TestBudgetRepository_Delete(t *testing.T) {
	budgetRepo, memberRepo, ctx := setupBudgetTest(t)

	member := &models.Member{Name: "Drew"}
	require.NoError(t, memberRepo.Create(ctx, member))

	budget := &models.Budget{
		MemberID: member.ID,
		Category: "health",
		Amount:   decimal.NewFromInt(80),
	}
	require.NoError(t, budgetRepo.Create(ctx, budget))

	require.NoError(t, budgetRepo.Delete(ctx, budget.ID))

	_, err := budgetRepo.GetByID(ctx, budget.ID)
	require.True(t, models.IsNotFound(err))

	err = budgetRepo.Delete(ctx, budget.ID)
	require.True(t, models.IsNotFound(err))
}
