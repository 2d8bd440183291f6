package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"gitlab.com/minthway/splitledger/internal/database"
	"gitlab.com/minthway/splitledger/internal/models"
)

// GroupRepository handles group ledger database operations. It needs a
// TxDB because payment recording writes the group row and its member
// rows as a single transaction.
type GroupRepository struct {
	db database.TxDB
}

// NewGroupRepository creates a new GroupRepository.
func NewGroupRepository(db database.TxDB) *GroupRepository {
	return &GroupRepository{db: db}
}

// Create persists a new group with its member allocations.
func (r *GroupRepository) Create(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.NewString()
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO groups (id, name, description, category, total_amount, occurred_on, settled)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING version, created_at, updated_at
	`, group.ID, group.Name, group.Description, group.Category,
		group.TotalAmount, group.OccurredOn, group.Settled,
	).Scan(&group.Version, &group.CreatedAt, &group.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create group: %w", err)
	}

	for i := range group.Members {
		m := &group.Members[i]
		m.Position = i
		_, err := tx.Exec(ctx, `
			INSERT INTO group_members (group_id, member_id, owed_amount, paid, paid_at, payment_method, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, group.ID, m.MemberID, m.OwedAmount, m.Paid, m.PaidAt, m.PaymentMethod, m.Position)
		if err != nil {
			return fmt.Errorf("failed to create group member %s: %w", m.MemberID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit group: %w", err)
	}
	return nil
}

// GetByID retrieves a group with its members in allocation order.
func (r *GroupRepository) GetByID(ctx context.Context, id string) (*models.Group, error) {
	var g models.Group
	err := r.db.QueryRow(ctx, `
		SELECT id, name, description, category, total_amount, occurred_on, settled, version, created_at, updated_at
		FROM groups WHERE id = $1
	`, id).Scan(&g.ID, &g.Name, &g.Description, &g.Category, &g.TotalAmount,
		&g.OccurredOn, &g.Settled, &g.Version, &g.CreatedAt, &g.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.NotFound("group", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	members, err := r.loadMembers(ctx, g.ID)
	if err != nil {
		return nil, err
	}
	g.Members = members
	return &g, nil
}

// ListByMember retrieves all groups a member participates in, newest
// first.
func (r *GroupRepository) ListByMember(ctx context.Context, memberID string) ([]models.Group, error) {
	rows, err := r.db.Query(ctx, `
		SELECT g.id, g.name, g.description, g.category, g.total_amount, g.occurred_on, g.settled, g.version, g.created_at, g.updated_at
		FROM groups g
		JOIN group_members gm ON gm.group_id = g.id
		WHERE gm.member_id = $1
		ORDER BY g.occurred_on DESC, g.id
	`, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to query groups: %w", err)
	}
	defer rows.Close()

	var groups []models.Group
	for rows.Next() {
		var g models.Group
		if err := rows.Scan(&g.ID, &g.Name, &g.Description, &g.Category, &g.TotalAmount,
			&g.OccurredOn, &g.Settled, &g.Version, &g.CreatedAt, &g.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating groups: %w", err)
	}

	for i := range groups {
		members, err := r.loadMembers(ctx, groups[i].ID)
		if err != nil {
			return nil, err
		}
		groups[i].Members = members
	}
	return groups, nil
}

// Update persists group and member state with an optimistic version
// check. group.Version must hold the version the caller read; a stale
// version returns models.ErrConflict and the caller may re-read and
// retry.
func (r *GroupRepository) Update(ctx context.Context, group *models.Group) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE groups SET settled = $2, version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $3
	`, group.ID, group.Settled, group.Version)
	if err != nil {
		return fmt.Errorf("failed to update group: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Either the group vanished or someone else won the race.
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM groups WHERE id = $1)`, group.ID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check group existence: %w", err)
		}
		if !exists {
			return models.NotFound("group", group.ID)
		}
		return models.ErrConflict
	}

	for i := range group.Members {
		m := &group.Members[i]
		_, err := tx.Exec(ctx, `
			UPDATE group_members SET paid = $3, paid_at = $4, payment_method = $5
			WHERE group_id = $1 AND member_id = $2
		`, group.ID, m.MemberID, m.Paid, m.PaidAt, m.PaymentMethod)
		if err != nil {
			return fmt.Errorf("failed to update group member %s: %w", m.MemberID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit group update: %w", err)
	}
	group.Version++
	return nil
}

// Delete removes a group and, via cascade, its member rows.
func (r *GroupRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM groups WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.NotFound("group", id)
	}
	return nil
}

func (r *GroupRepository) loadMembers(ctx context.Context, groupID string) ([]models.GroupMember, error) {
	rows, err := r.db.Query(ctx, `
		SELECT member_id, owed_amount, paid, paid_at, payment_method, position
		FROM group_members
		WHERE group_id = $1
		ORDER BY position
	`, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to query group members: %w", err)
	}
	defer rows.Close()

	var members []models.GroupMember
	for rows.Next() {
		var m models.GroupMember
		if err := rows.Scan(&m.MemberID, &m.OwedAmount, &m.Paid, &m.PaidAt, &m.PaymentMethod, &m.Position); err != nil {
			return nil, fmt.Errorf("failed to scan group member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating group members: %w", err)
	}
	return members, nil
}
