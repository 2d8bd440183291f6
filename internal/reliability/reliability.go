// Package reliability derives a member's payment reliability score from
// their group payment history.
package reliability

import (
	"math"

	"gitlab.com/minthway/splitledger/internal/models"
)

// Baseline is the score assigned to members with no payment history. A
// neutral starting point: absence of data neither rewards nor penalizes.
const Baseline = 70

// Score summarizes a member's on-time payment record across all groups.
type Score struct {
	MemberID    string
	Score       int
	Rating      string
	OnTimeCount int
	LateCount   int
	TotalCount  int
}

// Compute derives the score for memberID from its full payment event
// history. The score is the rounded on-time percentage; with no history
// it is the baseline. Pure function of the events, safe to recompute on
// every read.
func Compute(memberID string, events []models.PaymentEvent) Score {
	s := Score{MemberID: memberID, Score: Baseline}
	for _, ev := range events {
		if ev.MemberID != memberID {
			continue
		}
		s.TotalCount++
		if ev.OnTime {
			s.OnTimeCount++
		} else {
			s.LateCount++
		}
	}
	if s.TotalCount > 0 {
		s.Score = int(math.Round(100 * float64(s.OnTimeCount) / float64(s.TotalCount)))
	}
	s.Rating = Rating(s.Score)
	return s
}

// Rating maps a score to its display bucket.
func Rating(score int) string {
	switch {
	case score >= 90:
		return "Excellent"
	case score >= 80:
		return "Very Good"
	case score >= 70:
		return "Good"
	case score >= 60:
		return "Fair"
	case score >= 50:
		return "Poor"
	default:
		return "Very Poor"
	}
}
