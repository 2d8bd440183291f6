// Package models defines the domain entities for the split ledger.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaxNameLength is the maximum allowed length for member and group names.
const MaxNameLength = 100

// ExpenseCategories lists all supported expense categories.
var ExpenseCategories = map[string]string{
	"food":          "Food",
	"transport":     "Transport",
	"shopping":      "Shopping",
	"entertainment": "Entertainment",
	"bills":         "Bills",
	"health":        "Health",
	"education":     "Education",
	"housing":       "Housing",
	"other":         "Other",
}

// ValidCategory reports whether name is a supported expense category.
func ValidCategory(name string) bool {
	_, ok := ExpenseCategories[name]
	return ok
}

// Member represents a person who can log expenses and join groups.
type Member struct {
	ID        string
	Name      string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Expense represents a single personal expense entry.
type Expense struct {
	ID            int
	MemberID      string
	Amount        decimal.Decimal
	Category      string
	SpentOn       time.Time
	Description   string
	IsRecurring   bool
	PaymentMethod string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// GroupStatus is the settlement state of a group.
type GroupStatus string

const (
	GroupStatusPending GroupStatus = "pending"
	GroupStatusSettled GroupStatus = "settled"
	GroupStatusOverdue GroupStatus = "overdue"
)

// GroupMember is one member's participation record within a group.
type GroupMember struct {
	MemberID      string
	OwedAmount    decimal.Decimal
	Paid          bool
	PaidAt        *time.Time
	PaymentMethod string
	// Position is the insertion order at allocation time. Remainder cents
	// go to the lowest positions, so it must be stable.
	Position int
}

// Group represents a shared expense split among members.
type Group struct {
	ID          string
	Name        string
	Description string
	Category    string
	TotalAmount decimal.Decimal
	OccurredOn  time.Time
	Members     []GroupMember
	// Settled is the persisted terminal flag. Pending vs overdue is
	// derived on read, see StatusAt.
	Settled bool
	// Version increments on every group mutation. Used for optimistic
	// concurrency control on payment recording.
	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AllPaid reports whether every member has paid their share.
func (g *Group) AllPaid() bool {
	for _, m := range g.Members {
		if !m.Paid {
			return false
		}
	}
	return len(g.Members) > 0
}

// DueAt returns the settlement deadline for the group under the given
// due-day policy.
func (g *Group) DueAt(dueDays int) time.Time {
	return g.OccurredOn.AddDate(0, 0, dueDays)
}

// StatusAt derives the group status at the given instant. Settled is
// terminal; an unsettled group past its deadline is overdue. There is no
// background scheduler, so callers evaluate this on every read.
func (g *Group) StatusAt(now time.Time, dueDays int) GroupStatus {
	if g.Settled {
		return GroupStatusSettled
	}
	if now.After(g.DueAt(dueDays)) {
		return GroupStatusOverdue
	}
	return GroupStatusPending
}

// FindMember returns the participation record for memberID, or nil.
func (g *Group) FindMember(memberID string) *GroupMember {
	for i := range g.Members {
		if g.Members[i].MemberID == memberID {
			return &g.Members[i]
		}
	}
	return nil
}

// PaymentEvent records one member settling their share of a group.
// Reliability scores are computed from the full event history.
type PaymentEvent struct {
	ID       int
	GroupID  string
	MemberID string
	PaidAt   time.Time
	OnTime   bool
}

// Budget is a per-member spending limit for one expense category.
type Budget struct {
	ID        int
	MemberID  string
	Category  string
	Amount    decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BudgetStatus classifies spending against a budget.
type BudgetStatus string

const (
	BudgetOnTrack BudgetStatus = "on-track"
	BudgetWarning BudgetStatus = "warning"
	BudgetOver    BudgetStatus = "over-budget"
)

// budgetWarningRatio is the spent/limit ratio at which a budget starts
// warning.
var budgetWarningRatio = decimal.NewFromFloat(0.8)

// Status classifies spent against the budget limit: below 80% of the
// limit is on track, from 80% up to the limit is a warning, beyond the
// limit is over.
func (b *Budget) Status(spent decimal.Decimal) BudgetStatus {
	if spent.GreaterThan(b.Amount) {
		return BudgetOver
	}
	if b.Amount.IsPositive() && spent.GreaterThanOrEqual(b.Amount.Mul(budgetWarningRatio)) {
		return BudgetWarning
	}
	return BudgetOnTrack
}
