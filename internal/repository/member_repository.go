// Package repository contains the persistence layer for the split ledger.
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

// MemberRepository handles member database operations.
type MemberRepository struct {
	db database.PGXDB
}

// NewMemberRepository creates a new MemberRepository.
func NewMemberRepository(db database.PGXDB) *MemberRepository {
	return &MemberRepository{db: db}
}

// Create adds a new member. An ID is generated when the caller leaves it
// empty.
func (r *MemberRepository) Create(ctx context.Context, member *models.Member) error {
	if member.ID == "" {
		member.ID = uuid.NewString()
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO members (id, name, email)
		VALUES ($1, $2, $3)
		RETURNING created_at, updated_at
	`, member.ID, member.Name, member.Email).Scan(&member.CreatedAt, &member.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create member: %w", err)
	}
	return nil
}

// GetByID retrieves a member by ID.
func (r *MemberRepository) GetByID(ctx context.Context, id string) (*models.Member, error) {
	var m models.Member
	err := r.db.QueryRow(ctx, `
		SELECT id, name, COALESCE(email, ''), created_at, updated_at
		FROM members WHERE id = $1
	`, id).Scan(&m.ID, &m.Name, &m.Email, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.NotFound("member", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	return &m, nil
}

// List retrieves all members ordered by name.
func (r *MemberRepository) List(ctx context.Context) ([]models.Member, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, COALESCE(email, ''), created_at, updated_at
		FROM members ORDER BY name, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query members: %w", err)
	}
	defer rows.Close()

	var members []models.Member
	for rows.Next() {
		var m models.Member
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating members: %w", err)
	}
	return members, nil
}

// Update modifies a member's name and email. Members referenced by
// groups are never deleted, so update is the only mutation.
func (r *MemberRepository) Update(ctx context.Context, member *models.Member) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE members SET name = $2, email = $3, updated_at = NOW()
		WHERE id = $1
	`, member.ID, member.Name, member.Email)
	if err != nil {
		return fmt.Errorf("failed to update member: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.NotFound("member", member.ID)
	}
	return nil
}
