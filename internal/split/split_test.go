package split

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"gitlab.com/minthway/splitledger/internal/models"
)

func amounts(shares []Share) []string {
	out := make([]string, len(shares))
	for i, s := range shares {
		out[i] = s.Amount.StringFixed(2)
	}
	return out
}

func sum(shares []Share) decimal.Decimal {
	total := decimal.Zero
	for _, s := range shares {
		total = total.Add(s.Amount)
	}
	return total
}

func TestEqual(t *testing.T) {
	t.Parallel()

	t.Run("divides evenly when possible", func(t *testing.T) {
		t.Parallel()
		shares, err := Equal(decimal.NewFromInt(90), []string{"a", "b", "c"})
		require.NoError(t, err)
		require.Equal(t, []string{"30.00", "30.00", "30.00"}, amounts(shares))
	})

	t.Run("first members absorb the remainder cents", func(t *testing.T) {
		t.Parallel()
		shares, err := Equal(decimal.NewFromInt(100), []string{"a", "b", "c"})
		require.NoError(t, err)
		require.Equal(t, []string{"33.34", "33.33", "33.33"}, amounts(shares))
		require.True(t, sum(shares).Equal(decimal.NewFromInt(100)))
	})

	t.Run("two remainder cents across four members", func(t *testing.T) {
		t.Parallel()
		shares, err := Equal(decimal.NewFromFloat(10.02), []string{"a", "b", "c", "d"})
		require.NoError(t, err)
		require.Equal(t, []string{"2.51", "2.51", "2.50", "2.50"}, amounts(shares))
	})

	t.Run("single member takes the whole total", func(t *testing.T) {
		t.Parallel()
		shares, err := Equal(decimal.NewFromFloat(42.37), []string{"solo"})
		require.NoError(t, err)
		require.Equal(t, []string{"42.37"}, amounts(shares))
	})

	t.Run("rejects non-positive totals", func(t *testing.T) {
		t.Parallel()
		_, err := Equal(decimal.Zero, []string{"a"})
		require.True(t, models.IsValidation(err))
		_, err = Equal(decimal.NewFromInt(-5), []string{"a"})
		require.True(t, models.IsValidation(err))
	})

	t.Run("rejects empty member list", func(t *testing.T) {
		t.Parallel()
		_, err := Equal(decimal.NewFromInt(10), nil)
		require.True(t, models.IsValidation(err))
		require.Contains(t, err.Error(), "at least one member")
	})

	t.Run("rejects duplicate members", func(t *testing.T) {
		t.Parallel()
		_, err := Equal(decimal.NewFromInt(10), []string{"a", "a"})
		require.True(t, models.IsValidation(err))
	})

	t.Run("rejects sub-cent totals", func(t *testing.T) {
		t.Parallel()
		_, err := Equal(decimal.NewFromFloat(10.005), []string{"a", "b"})
		require.True(t, models.IsValidation(err))
	})
}

func TestCustom(t *testing.T) {
	t.Parallel()

	t.Run("accepts an exact allocation", func(t *testing.T) {
		t.Parallel()
		shares, err := Custom(decimal.NewFromInt(100), []string{"a", "b"}, map[string]decimal.Decimal{
			"a": decimal.NewFromInt(40),
			"b": decimal.NewFromInt(60),
		})
		require.NoError(t, err)
		require.Equal(t, []string{"40.00", "60.00"}, amounts(shares))
	})

	t.Run("rejects a mismatched sum with no tolerance", func(t *testing.T) {
		t.Parallel()
		_, err := Custom(decimal.NewFromInt(100), []string{"a", "b"}, map[string]decimal.Decimal{
			"a": decimal.NewFromInt(40),
			"b": decimal.NewFromInt(50),
		})
		require.True(t, models.IsValidation(err))
		require.Contains(t, err.Error(), "sum to 90")
	})

	t.Run("rejects a missing member entry", func(t *testing.T) {
		t.Parallel()
		_, err := Custom(decimal.NewFromInt(100), []string{"a", "b"}, map[string]decimal.Decimal{
			"a": decimal.NewFromInt(100),
		})
		require.True(t, models.IsValidation(err))
		require.Contains(t, err.Error(), "no split amount for member b")
	})

	t.Run("rejects negative amounts", func(t *testing.T) {
		t.Parallel()
		_, err := Custom(decimal.NewFromInt(10), []string{"a", "b"}, map[string]decimal.Decimal{
			"a": decimal.NewFromInt(20),
			"b": decimal.NewFromInt(-10),
		})
		require.True(t, models.IsValidation(err))
	})

	t.Run("allows a zero share for one member", func(t *testing.T) {
		t.Parallel()
		shares, err := Custom(decimal.NewFromInt(10), []string{"a", "b"}, map[string]decimal.Decimal{
			"a": decimal.NewFromInt(10),
			"b": decimal.Zero,
		})
		require.NoError(t, err)
		require.Equal(t, []string{"10.00", "0.00"}, amounts(shares))
	})
}

// TestEqualProperties checks the allocation invariants over random totals
// and member counts: shares always sum back to the total, no share is
// negative, and shares differ by at most one cent.
func TestEqualProperties(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		cents := rapid.Int64Range(1, 10_000_000).Draw(t, "cents")
		n := rapid.IntRange(1, 50).Draw(t, "members")

		total := decimal.New(cents, -2)
		ids := make([]string, n)
		for i := range ids {
			ids[i] = fmt.Sprintf("m%d", i)
		}

		shares, err := Equal(total, ids)
		if err != nil {
			t.Fatalf("Equal(%s, %d members) failed: %v", total, n, err)
		}

		if !sum(shares).Equal(total) {
			t.Fatalf("shares sum to %s, want %s", sum(shares), total)
		}

		min, max := shares[0].Amount, shares[0].Amount
		for _, s := range shares {
			if s.Amount.IsNegative() {
				t.Fatalf("negative share %s", s.Amount)
			}
			if s.Amount.LessThan(min) {
				min = s.Amount
			}
			if s.Amount.GreaterThan(max) {
				max = s.Amount
			}
		}
		if max.Sub(min).GreaterThan(decimal.New(1, -2)) {
			t.Fatalf("shares spread more than one cent: min %s max %s", min, max)
		}

		// Later members never get more than earlier ones.
		for i := 1; i < len(shares); i++ {
			if shares[i].Amount.GreaterThan(shares[i-1].Amount) {
				t.Fatalf("share %d (%s) exceeds share %d (%s)", i, shares[i].Amount, i-1, shares[i-1].Amount)
			}
		}
	})
}
