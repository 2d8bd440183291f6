package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"

	"gitlab.com/minthway/splitledger/internal/database"
	"gitlab.com/minthway/splitledger/internal/models"
)

// BudgetRepository handles per-category budget database operations.
type BudgetRepository struct {
	db database.PGXDB
}

// NewBudgetRepository creates a new BudgetRepository.
func NewBudgetRepository(db database.PGXDB) *BudgetRepository {
	return &BudgetRepository{db: db}
}

// Create adds a budget. A member gets one budget per category; a second
// insert for the same category updates the limit instead.
func (r *BudgetRepository) Create(ctx context.Context, budget *models.Budget) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO budgets (member_id, category, amount)
		VALUES ($1, $2, $3)
		ON CONFLICT (member_id, category)
		DO UPDATE SET amount = EXCLUDED.amount, updated_at = NOW()
		RETURNING id, created_at, updated_at
	`, budget.MemberID, budget.Category, budget.Amount).
		Scan(&budget.ID, &budget.CreatedAt, &budget.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create budget: %w", err)
	}
	return nil
}

// GetByID retrieves a budget by ID.
func (r *BudgetRepository) GetByID(ctx context.Context, id int) (*models.Budget, error) {
	var b models.Budget
	err := r.db.QueryRow(ctx, `
		SELECT id, member_id, category, amount, created_at, updated_at
		FROM budgets WHERE id = $1
	`, id).Scan(&b.ID, &b.MemberID, &b.Category, &b.Amount, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.NotFound("budget", strconv.Itoa(id))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get budget: %w", err)
	}
	return &b, nil
}

// ListByMember retrieves all budgets for a member.
func (r *BudgetRepository) ListByMember(ctx context.Context, memberID string) ([]models.Budget, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, member_id, category, amount, created_at, updated_at
		FROM budgets
		WHERE member_id = $1
		ORDER BY category
	`, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to query budgets: %w", err)
	}
	defer rows.Close()

	var budgets []models.Budget
	for rows.Next() {
		var b models.Budget
		if err := rows.Scan(&b.ID, &b.MemberID, &b.Category, &b.Amount, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan budget: %w", err)
		}
		budgets = append(budgets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating budgets: %w", err)
	}
	return budgets, nil
}

// Delete removes a budget by ID.
func (r *BudgetRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM budgets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete budget: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.NotFound("budget", strconv.Itoa(id))
	}
	return nil
}
