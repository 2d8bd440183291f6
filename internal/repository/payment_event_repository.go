package repository

import (
	"context"
	"fmt"

	"gitlab.com/minthway/splitledger/internal/database"
	"gitlab.com/minthway/splitledger/internal/models"
)

// PaymentEventRepository handles the append-only payment event log.
type PaymentEventRepository struct {
	db database.PGXDB
}

// NewPaymentEventRepository creates a new PaymentEventRepository.
func NewPaymentEventRepository(db database.PGXDB) *PaymentEventRepository {
	return &PaymentEventRepository{db: db}
}

// Append records a payment event. Events are never updated or deleted;
// reliability scores are recomputed from the full log.
func (r *PaymentEventRepository) Append(ctx context.Context, event *models.PaymentEvent) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO payment_events (group_id, member_id, paid_at, on_time)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, event.GroupID, event.MemberID, event.PaidAt, event.OnTime).Scan(&event.ID)
	if err != nil {
		return fmt.Errorf("failed to append payment event: %w", err)
	}
	return nil
}

// ListByMember retrieves a member's payment events across all groups,
// oldest first.
func (r *PaymentEventRepository) ListByMember(ctx context.Context, memberID string) ([]models.PaymentEvent, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, group_id, member_id, paid_at, on_time
		FROM payment_events
		WHERE member_id = $1
		ORDER BY paid_at, id
	`, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to query payment events: %w", err)
	}
	defer rows.Close()

	var events []models.PaymentEvent
	for rows.Next() {
		var ev models.PaymentEvent
		if err := rows.Scan(&ev.ID, &ev.GroupID, &ev.MemberID, &ev.PaidAt, &ev.OnTime); err != nil {
			return nil, fmt.Errorf("failed to scan payment event: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payment events: %w", err)
	}
	return events, nil
}
