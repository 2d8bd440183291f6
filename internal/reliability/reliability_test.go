package reliability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"gitlab.com/minthway/splitledger/internal/models"
)

func event(memberID string, onTime bool) models.PaymentEvent {
	return models.PaymentEvent{
		GroupID:  "g1",
		MemberID: memberID,
		PaidAt:   time.Now(),
		OnTime:   onTime,
	}
}

func TestCompute(t *testing.T) {
	t.Parallel()

	t.Run("no history returns the baseline", func(t *testing.T) {
		t.Parallel()
		s := Compute("m1", nil)
		require.Equal(t, Baseline, s.Score)
		require.Equal(t, "Good", s.Rating)
		require.Zero(t, s.TotalCount)
	})

	t.Run("all on time scores 100", func(t *testing.T) {
		t.Parallel()
		s := Compute("m1", []models.PaymentEvent{
			event("m1", true), event("m1", true), event("m1", true),
		})
		require.Equal(t, 100, s.Score)
		require.Equal(t, "Excellent", s.Rating)
		require.Equal(t, 3, s.OnTimeCount)
		require.Zero(t, s.LateCount)
	})

	t.Run("all late scores 0", func(t *testing.T) {
		t.Parallel()
		s := Compute("m1", []models.PaymentEvent{event("m1", false)})
		require.Equal(t, 0, s.Score)
		require.Equal(t, "Very Poor", s.Rating)
	})

	t.Run("ratio rounds half up", func(t *testing.T) {
		t.Parallel()
		// 2 of 3 on time: 66.67 -> 67.
		s := Compute("m1", []models.PaymentEvent{
			event("m1", true), event("m1", true), event("m1", false),
		})
		require.Equal(t, 67, s.Score)
		require.Equal(t, "Fair", s.Rating)
	})

	t.Run("other members' events are ignored", func(t *testing.T) {
		t.Parallel()
		s := Compute("m1", []models.PaymentEvent{
			event("m2", false), event("m2", false), event("m1", true),
		})
		require.Equal(t, 100, s.Score)
		require.Equal(t, 1, s.TotalCount)
	})
}

func TestRating(t *testing.T) {
	t.Parallel()

	tests := []struct {
		score int
		want  string
	}{
		{100, "Excellent"},
		{90, "Excellent"},
		{89, "Very Good"},
		{80, "Very Good"},
		{79, "Good"},
		{70, "Good"},
		{69, "Fair"},
		{60, "Fair"},
		{59, "Poor"},
		{50, "Poor"},
		{49, "Very Poor"},
		{0, "Very Poor"},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, Rating(tt.score), "score %d", tt.score)
	}
}

// TestComputeBounds checks that the score stays in [0, 100] for any mix
// of on-time and late events.
func TestComputeBounds(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		count := rapid.IntRange(0, 200).Draw(t, "count")
		events := make([]models.PaymentEvent, count)
		for i := range events {
			events[i] = event("m1", rapid.Bool().Draw(t, "onTime"))
		}

		s := Compute("m1", events)
		if s.Score < 0 || s.Score > 100 {
			t.Fatalf("score %d out of bounds", s.Score)
		}
		if s.OnTimeCount+s.LateCount != s.TotalCount {
			t.Fatalf("counts disagree: %d + %d != %d", s.OnTimeCount, s.LateCount, s.TotalCount)
		}
		if count == 0 && s.Score != Baseline {
			t.Fatalf("empty history should score the baseline, got %d", s.Score)
		}
		if count > 0 && s.OnTimeCount == count && s.Score != 100 {
			t.Fatalf("perfect history should score 100, got %d", s.Score)
		}
	})
}
