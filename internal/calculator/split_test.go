package calculator

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func amounts(shares []Share) []string {
	out := make([]string, len(shares))
	for i, s := range shares {
		out[i] = s.Member + "=" + s.Amount.StringFixed(2)
	}
	return out
}

func TestComputeSplits(t *testing.T) {
	tests := []struct {
		name    string
		amount  decimal.Decimal
		members []string
		policy  SplitPolicy
		custom  []Share
		want    []string
		wantErr error
	}{
		{
			name:    "equal three-way split",
			amount:  d("300"),
			members: []string{"A", "B", "C"},
			policy:  PolicyEqual,
			want:    []string{"A=100.00", "B=100.00", "C=100.00"},
		},
		{
			name:    "equal split keeps member order",
			amount:  d("90"),
			members: []string{"C", "A", "B"},
			policy:  PolicyEqual,
			want:    []string{"C=30.00", "A=30.00", "B=30.00"},
		},
		{
			name:    "equal split rounds each share without redistributing",
			amount:  d("100"),
			members: []string{"A", "B", "C"},
			policy:  PolicyEqual,
			want:    []string{"A=33.33", "B=33.33", "C=33.33"},
		},
		{
			name:    "equal split rounds half away from zero",
			amount:  d("0.05"),
			members: []string{"A", "B"},
			policy:  PolicyEqual,
			want:    []string{"A=0.03", "B=0.03"},
		},
		{
			name:    "single member owes everything",
			amount:  d("12.34"),
			members: []string{"A"},
			policy:  PolicyEqual,
			want:    []string{"A=12.34"},
		},
		{
			name:    "custom split accepted",
			amount:  d("100"),
			members: []string{"A", "B"},
			policy:  PolicyCustom,
			custom:  []Share{{"A", d("60")}, {"B", d("40")}},
			want:    []string{"A=60.00", "B=40.00"},
		},
		{
			name:    "custom split follows custom order",
			amount:  d("100"),
			members: []string{"A", "B"},
			policy:  PolicyCustom,
			custom:  []Share{{"B", d("40")}, {"A", d("60")}},
			want:    []string{"B=40.00", "A=60.00"},
		},
		{
			name:    "custom split within tolerance is rounded",
			amount:  d("10"),
			members: []string{"A", "B"},
			policy:  PolicyCustom,
			custom:  []Share{{"A", d("3.333")}, {"B", d("6.666")}},
			want:    []string{"A=3.33", "B=6.67"},
		},
		{
			name:    "custom zero share allowed",
			amount:  d("25"),
			members: []string{"A", "B"},
			policy:  PolicyCustom,
			custom:  []Share{{"A", d("25")}, {"B", d("0")}},
			want:    []string{"A=25.00", "B=0.00"},
		},
		{
			name:    "custom sum off by one",
			amount:  d("100"),
			members: []string{"A", "B"},
			policy:  PolicyCustom,
			custom:  []Share{{"A", d("60")}, {"B", d("41")}},
			wantErr: ErrSplitSumMismatch,
		},
		{
			name:    "custom sub-cent shares round out of tolerance",
			amount:  d("1.00"),
			members: []string{"A", "B"},
			policy:  PolicyCustom,
			custom:  []Share{{"A", d("0.505")}, {"B", d("0.505")}},
			wantErr: ErrSplitSumMismatch,
		},
		{
			name:    "custom sub-cent shares that round within tolerance",
			amount:  d("1.00"),
			members: []string{"A", "B"},
			policy:  PolicyCustom,
			custom:  []Share{{"A", d("0.504")}, {"B", d("0.496")}},
			want:    []string{"A=0.50", "B=0.50"},
		},
		{
			name:    "custom missing member",
			amount:  d("100"),
			members: []string{"A", "B"},
			policy:  PolicyCustom,
			custom:  []Share{{"A", d("100")}},
			wantErr: ErrSplitMismatch,
		},
		{
			name:    "custom foreign member",
			amount:  d("100"),
			members: []string{"A", "B"},
			policy:  PolicyCustom,
			custom:  []Share{{"A", d("50")}, {"Z", d("50")}},
			wantErr: ErrSplitMismatch,
		},
		{
			name:    "custom duplicate member",
			amount:  d("100"),
			members: []string{"A", "B"},
			policy:  PolicyCustom,
			custom:  []Share{{"A", d("50")}, {"A", d("50")}},
			wantErr: ErrSplitMismatch,
		},
		{
			name:    "custom without splits",
			amount:  d("100"),
			members: []string{"A", "B"},
			policy:  PolicyCustom,
			wantErr: ErrSplitMismatch,
		},
		{
			name:    "custom negative share",
			amount:  d("100"),
			members: []string{"A", "B"},
			policy:  PolicyCustom,
			custom:  []Share{{"A", d("110")}, {"B", d("-10")}},
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "zero amount",
			amount:  d("0"),
			members: []string{"A"},
			policy:  PolicyEqual,
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "negative amount",
			amount:  d("-5"),
			members: []string{"A"},
			policy:  PolicyEqual,
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "no members",
			amount:  d("10"),
			policy:  PolicyEqual,
			wantErr: ErrInvalidMembers,
		},
		{
			name:    "duplicate members",
			amount:  d("10"),
			members: []string{"A", "A"},
			policy:  PolicyEqual,
			wantErr: ErrInvalidMembers,
		},
		{
			name:    "empty member id",
			amount:  d("10"),
			members: []string{"A", ""},
			policy:  PolicyEqual,
			wantErr: ErrInvalidMembers,
		},
		{
			name:    "unknown policy",
			amount:  d("10"),
			members: []string{"A"},
			policy:  SplitPolicy("percentage"),
			wantErr: ErrInvalidPolicy,
		},
		{
			name:    "policy is case sensitive",
			amount:  d("10"),
			members: []string{"A"},
			policy:  SplitPolicy("Equal"),
			wantErr: ErrInvalidPolicy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeSplits(tt.amount, tt.members, tt.policy, tt.custom)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, amounts(got))
		})
	}
}

func TestComputeSplits_EqualProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 500; i++ {
		cents := rng.Int63n(1_000_000) + 1
		amount := decimal.New(cents, -2)
		n := rng.Intn(12) + 1
		members := make([]string, n)
		for j := range members {
			members[j] = fmt.Sprintf("m%d", j)
		}

		splits, err := ComputeSplits(amount, members, PolicyEqual, nil)
		require.NoError(t, err)
		require.Len(t, splits, n)

		seen := make(map[string]bool, n)
		for j, s := range splits {
			assert.Equal(t, members[j], s.Member)
			assert.False(t, seen[s.Member], "member %s appears twice", s.Member)
			seen[s.Member] = true
			assert.True(t, s.Amount.Equal(RoundAmount(s.Amount)), "share %s has more than two decimals", s.Amount)
		}

		drift := sum(splits).Sub(amount).Abs()
		maxDrift := Tolerance.Mul(decimal.NewFromInt(int64(n - 1)))
		assert.True(t, drift.LessThanOrEqual(maxDrift),
			"amount %s over %d members drifted by %s", amount, n, drift)
		require.NoError(t, ValidateSplits(amount, members, splits))
	}
}

func TestAmountFromFloat(t *testing.T) {
	for _, f := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := AmountFromFloat(f)
		assert.ErrorIs(t, err, ErrInvalidAmount, "value %v", f)
	}

	got, err := AmountFromFloat(19.99)
	require.NoError(t, err)
	assert.Equal(t, "19.99", got.String())
}

func TestValidateSplits(t *testing.T) {
	members := []string{"A", "B"}

	assert.NoError(t, ValidateSplits(d("10"), members, []Share{{"A", d("5")}, {"B", d("5")}}))
	assert.ErrorIs(t, ValidateSplits(d("10"), members, []Share{{"A", d("10")}}), ErrSplitMismatch)
	assert.ErrorIs(t, ValidateSplits(d("10"), members, []Share{{"A", d("5")}, {"A", d("5")}}), ErrSplitMismatch)
	assert.ErrorIs(t, ValidateSplits(d("10"), members, []Share{{"A", d("11")}, {"B", d("-1")}}), ErrInvalidAmount)
	assert.ErrorIs(t, ValidateSplits(d("10"), members, []Share{{"A", d("5")}, {"B", d("5.02")}}), ErrSplitSumMismatch)
}
