package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"gitlab.com/minthway/splitledger/internal/database"
	"gitlab.com/minthway/splitledger/internal/models"
)

// ExpenseRepository handles personal expense database operations.
type ExpenseRepository struct {
	db database.PGXDB
}

// NewExpenseRepository creates a new ExpenseRepository.
func NewExpenseRepository(db database.PGXDB) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

// Create adds a new expense.
func (r *ExpenseRepository) Create(ctx context.Context, expense *models.Expense) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO expenses (member_id, amount, category, spent_on, description, is_recurring, payment_method)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, expense.MemberID, expense.Amount, expense.Category, expense.SpentOn,
		expense.Description, expense.IsRecurring, expense.PaymentMethod,
	).Scan(&expense.ID, &expense.CreatedAt, &expense.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create expense: %w", err)
	}
	return nil
}

// GetByID retrieves an expense by ID.
func (r *ExpenseRepository) GetByID(ctx context.Context, id int) (*models.Expense, error) {
	var exp models.Expense
	err := r.db.QueryRow(ctx, `
		SELECT id, member_id, amount, category, spent_on, description, is_recurring, payment_method, created_at, updated_at
		FROM expenses WHERE id = $1
	`, id).Scan(&exp.ID, &exp.MemberID, &exp.Amount, &exp.Category, &exp.SpentOn,
		&exp.Description, &exp.IsRecurring, &exp.PaymentMethod, &exp.CreatedAt, &exp.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.NotFound("expense", strconv.Itoa(id))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	return &exp, nil
}

// GetByMemberID retrieves a member's expenses, newest first.
func (r *ExpenseRepository) GetByMemberID(ctx context.Context, memberID string, limit int) ([]models.Expense, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, member_id, amount, category, spent_on, description, is_recurring, payment_method, created_at, updated_at
		FROM expenses
		WHERE member_id = $1
		ORDER BY spent_on DESC, id DESC
		LIMIT $2
	`, memberID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer rows.Close()

	var expenses []models.Expense
	for rows.Next() {
		var exp models.Expense
		if err := rows.Scan(&exp.ID, &exp.MemberID, &exp.Amount, &exp.Category, &exp.SpentOn,
			&exp.Description, &exp.IsRecurring, &exp.PaymentMethod, &exp.CreatedAt, &exp.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, exp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expenses: %w", err)
	}
	return expenses, nil
}

// GetTotalByMemberAndCategory calculates a member's total spending in a
// category. Budgets derive their spent amount from this.
func (r *ExpenseRepository) GetTotalByMemberAndCategory(ctx context.Context, memberID, category string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM expenses
		WHERE member_id = $1 AND category = $2
	`, memberID, category).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get total by category: %w", err)
	}
	return total, nil
}

// Delete removes an expense by ID.
func (r *ExpenseRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.NotFound("expense", strconv.Itoa(id))
	}
	return nil
}
