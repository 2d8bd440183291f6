// Package split allocates a group total across members.
//
// All arithmetic happens in integer cents so an allocation always sums
// back to the stated total. Floating the shares instead is how ledgers
// drift by a cent.
package split

import (
	"github.com/shopspring/decimal"

	"gitlab.com/minthway/splitledger/internal/models"
)

// Share is one member's allocation of a group total.
type Share struct {
	MemberID string
	Amount   decimal.Decimal
}

var cent = decimal.NewFromInt(100)

// Equal divides total evenly among memberIDs. Every member gets the
// floored per-head share; the remainder is handed out one cent at a time
// to members in input order until the shares sum exactly to total. The
// first-in-order tie-break is deliberate and must stay deterministic.
func Equal(total decimal.Decimal, memberIDs []string) ([]Share, error) {
	if err := validate(total, memberIDs); err != nil {
		return nil, err
	}

	n := int64(len(memberIDs))
	totalCents := total.Mul(cent).IntPart()
	base := totalCents / n
	remainder := totalCents % n

	shares := make([]Share, len(memberIDs))
	for i, id := range memberIDs {
		amount := base
		if int64(i) < remainder {
			amount++
		}
		shares[i] = Share{
			MemberID: id,
			Amount:   decimal.New(amount, -2),
		}
	}
	return shares, nil
}

// Custom allocates caller-specified amounts. Every member must have an
// entry and the amounts must sum exactly to total, with no tolerance.
func Custom(total decimal.Decimal, memberIDs []string, amounts map[string]decimal.Decimal) ([]Share, error) {
	if err := validate(total, memberIDs); err != nil {
		return nil, err
	}

	shares := make([]Share, len(memberIDs))
	sum := decimal.Zero
	for i, id := range memberIDs {
		amount, ok := amounts[id]
		if !ok {
			return nil, models.Validationf("no split amount for member %s", id)
		}
		if amount.IsNegative() {
			return nil, models.Validationf("split amount for member %s must not be negative, got %s", id, amount)
		}
		if !amount.Mul(cent).IsInteger() {
			return nil, models.Validationf("split amount for member %s has sub-cent precision: %s", id, amount)
		}
		shares[i] = Share{MemberID: id, Amount: amount.Round(2)}
		sum = sum.Add(amount)
	}
	if !sum.Equal(total) {
		return nil, models.Validationf("split amounts sum to %s, want %s", sum, total)
	}
	return shares, nil
}

func validate(total decimal.Decimal, memberIDs []string) error {
	if !total.IsPositive() {
		return models.Validationf("total must be positive, got %s", total)
	}
	if !total.Mul(cent).IsInteger() {
		return models.Validationf("total has sub-cent precision: %s", total)
	}
	if len(memberIDs) == 0 {
		return models.Validationf("at least one member required")
	}
	seen := make(map[string]bool, len(memberIDs))
	for _, id := range memberIDs {
		if id == "" {
			return models.Validationf("member id must not be empty")
		}
		if seen[id] {
			return models.Validationf("duplicate member %s", id)
		}
		seen[id] = true
	}
	return nil
}
