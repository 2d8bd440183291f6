// Package settlement implements group expense allocation, payment
// recording, and the group status state machine.
package settlement

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"gitlab.com/minthway/splitledger/internal/models"
	"gitlab.com/minthway/splitledger/internal/notify"
	"gitlab.com/minthway/splitledger/internal/reliability"
	"gitlab.com/minthway/splitledger/internal/split"
)

// GroupStore persists groups and their member allocations.
type GroupStore interface {
	Create(ctx context.Context, group *models.Group) error
	GetByID(ctx context.Context, id string) (*models.Group, error)
	// Update applies group state with an optimistic version check and
	// returns models.ErrConflict on a stale version.
	Update(ctx context.Context, group *models.Group) error
}

// EventStore persists the append-only payment event log.
type EventStore interface {
	Append(ctx context.Context, event *models.PaymentEvent) error
	ListByMember(ctx context.Context, memberID string) ([]models.PaymentEvent, error)
}

// MemberStore resolves member identities. Identity management itself is
// external to the engine.
type MemberStore interface {
	GetByID(ctx context.Context, id string) (*models.Member, error)
}

// Engine coordinates allocation, payment recording, and scoring. All
// operations are synchronous; per-group atomicity comes from the
// GroupStore's transactional update.
type Engine struct {
	groups  GroupStore
	events  EventStore
	members MemberStore
	sink    notify.Sink
	dueDays int
	now     func() time.Time
}

// New creates an Engine with the given collaborators and due-day policy.
func New(groups GroupStore, events EventStore, members MemberStore, sink notify.Sink, dueDays int) *Engine {
	return &Engine{
		groups:  groups,
		events:  events,
		members: members,
		sink:    sink,
		dueDays: dueDays,
		now:     time.Now,
	}
}

// CreateGroupParams are the inputs for creating a group. A nil
// CustomAmounts means equal split; otherwise every member must have an
// entry and the amounts must sum exactly to TotalAmount.
type CreateGroupParams struct {
	Name          string
	Description   string
	Category      string
	TotalAmount   decimal.Decimal
	Date          time.Time
	MemberIDs     []string
	CustomAmounts map[string]decimal.Decimal
}

// CreateGroup validates the request, allocates the total across members,
// and persists the new group. Creation is silent: no notification is
// published.
func (e *Engine) CreateGroup(ctx context.Context, p CreateGroupParams) (*models.Group, error) {
	if strings.TrimSpace(p.Name) == "" {
		return nil, models.Validationf("group name must not be empty")
	}
	if len(p.Name) > models.MaxNameLength {
		return nil, models.Validationf("group name exceeds %d characters", models.MaxNameLength)
	}
	if !models.ValidCategory(p.Category) {
		return nil, models.Validationf("unknown category %q", p.Category)
	}

	for _, id := range p.MemberIDs {
		if _, err := e.members.GetByID(ctx, id); err != nil {
			return nil, fmt.Errorf("resolving member %s: %w", id, err)
		}
	}

	var shares []split.Share
	var err error
	if p.CustomAmounts == nil {
		shares, err = split.Equal(p.TotalAmount, p.MemberIDs)
	} else {
		shares, err = split.Custom(p.TotalAmount, p.MemberIDs, p.CustomAmounts)
	}
	if err != nil {
		return nil, err
	}

	group := &models.Group{
		Name:        strings.TrimSpace(p.Name),
		Description: p.Description,
		Category:    p.Category,
		TotalAmount: p.TotalAmount.Round(2),
		OccurredOn:  p.Date,
		Members:     make([]models.GroupMember, len(shares)),
	}
	for i, s := range shares {
		group.Members[i] = models.GroupMember{
			MemberID:   s.MemberID,
			OwedAmount: s.Amount,
			Position:   i,
		}
	}

	if err := e.groups.Create(ctx, group); err != nil {
		return nil, fmt.Errorf("creating group: %w", err)
	}
	return group, nil
}

// GetGroup loads a group by ID.
func (e *Engine) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	return e.groups.GetByID(ctx, groupID)
}

// Status derives the group's current state under the engine's due-day
// policy. Overdue is always computed at read time; nothing schedules it.
func (e *Engine) Status(g *models.Group) models.GroupStatus {
	return g.StatusAt(e.now(), e.dueDays)
}

// RecordPayment marks a member's share as paid, recomputes the group
// status, appends a payment event, and notifies the sink. Paying twice
// is an AlreadyPaidError; a concurrent update surfaces as
// models.ErrConflict, which the caller may retry after re-reading.
func (e *Engine) RecordPayment(ctx context.Context, groupID, memberID, paymentMethod string) (*models.Group, error) {
	at := e.now()

	group, err := e.groups.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}

	member := group.FindMember(memberID)
	if member == nil {
		return nil, models.NotFound("group member", memberID)
	}
	if member.Paid {
		return nil, &models.AlreadyPaidError{GroupID: groupID, MemberID: memberID}
	}

	member.Paid = true
	member.PaidAt = &at
	member.PaymentMethod = paymentMethod
	if group.AllPaid() {
		group.Settled = true
	}

	if err := e.groups.Update(ctx, group); err != nil {
		return nil, err
	}

	onTime := !at.After(group.DueAt(e.dueDays))
	event := &models.PaymentEvent{
		GroupID:  groupID,
		MemberID: memberID,
		PaidAt:   at,
		OnTime:   onTime,
	}
	if err := e.events.Append(ctx, event); err != nil {
		return nil, fmt.Errorf("recording payment event: %w", err)
	}

	e.publishPayment(ctx, group, memberID, onTime)
	return group, nil
}

// Score computes the member's reliability score from their full payment
// history.
func (e *Engine) Score(ctx context.Context, memberID string) (reliability.Score, error) {
	if _, err := e.members.GetByID(ctx, memberID); err != nil {
		return reliability.Score{}, err
	}
	events, err := e.events.ListByMember(ctx, memberID)
	if err != nil {
		return reliability.Score{}, fmt.Errorf("listing payment events: %w", err)
	}
	return reliability.Compute(memberID, events), nil
}

func (e *Engine) publishPayment(ctx context.Context, group *models.Group, memberID string, onTime bool) {
	kind := notify.TypeInfo
	message := fmt.Sprintf("A share of %s was paid in %q", group.TotalAmount.StringFixed(2), group.Name)
	if !onTime {
		kind = notify.TypeWarning
		message = fmt.Sprintf("A late share was paid in %q", group.Name)
	}
	e.sink.Publish(ctx, notify.Notification{
		Title:    "Payment recorded",
		Message:  message,
		Type:     kind,
		MemberID: memberID,
	})

	if group.Settled {
		e.sink.Publish(ctx, notify.Notification{
			Title:   "Group settled",
			Message: fmt.Sprintf("%q is fully settled", group.Name),
			Type:    notify.TypeSuccess,
		})
	}
}
