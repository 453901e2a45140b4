package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// SplitPolicy selects how an expense amount is divided among its members.
type SplitPolicy string

const (
	// PolicyEqual divides the amount evenly among the involved members.
	PolicyEqual SplitPolicy = "equal"
	// PolicyCustom uses the per-member amounts supplied by the caller.
	PolicyCustom SplitPolicy = "custom"
)

// Valid reports whether p is one of the recognized policies.
func (p SplitPolicy) Valid() bool {
	return p == PolicyEqual || p == PolicyCustom
}

// Share is one member's portion of an expense.
type Share struct {
	Member string
	Amount decimal.Decimal
}

// ComputeSplits partitions amount among membersInvolved under the given policy.
//
// Equal splits round each share half away from zero to two decimal places and
// do not redistribute the remainder, so the shares may differ from amount by up
// to 0.01 per member beyond the first. Custom splits must list every involved
// member exactly once and add up to amount within 0.01.
//
// All input is validated before any share is produced; on error the returned
// slice is nil.
func ComputeSplits(amount decimal.Decimal, membersInvolved []string, policy SplitPolicy, customSplits []Share) ([]Share, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: got %s", ErrInvalidAmount, amount)
	}
	if err := validateMembers(membersInvolved); err != nil {
		return nil, err
	}

	switch policy {
	case PolicyEqual:
		return equalSplits(amount, membersInvolved), nil
	case PolicyCustom:
		return customSplitsFor(amount, membersInvolved, customSplits)
	default:
		return nil, fmt.Errorf("%w: got %q", ErrInvalidPolicy, string(policy))
	}
}

func validateMembers(members []string) error {
	if len(members) == 0 {
		return ErrInvalidMembers
	}
	seen := make(map[string]struct{}, len(members))
	for _, m := range members {
		if m == "" {
			return fmt.Errorf("%w: empty member id", ErrInvalidMembers)
		}
		if _, dup := seen[m]; dup {
			return fmt.Errorf("%w: %q listed more than once", ErrInvalidMembers, m)
		}
		seen[m] = struct{}{}
	}
	return nil
}

func equalSplits(amount decimal.Decimal, members []string) []Share {
	share := amount.DivRound(decimal.NewFromInt(int64(len(members))), Precision)

	splits := make([]Share, len(members))
	for i, m := range members {
		splits[i] = Share{Member: m, Amount: share}
	}
	return splits
}

func customSplitsFor(amount decimal.Decimal, members []string, custom []Share) ([]Share, error) {
	if len(custom) != len(members) {
		return nil, fmt.Errorf("%w: got %d splits for %d members", ErrSplitMismatch, len(custom), len(members))
	}

	involved := make(map[string]bool, len(members))
	for _, m := range members {
		involved[m] = false
	}
	for _, s := range custom {
		seen, ok := involved[s.Member]
		if !ok {
			return nil, fmt.Errorf("%w: %q is not an involved member", ErrSplitMismatch, s.Member)
		}
		if seen {
			return nil, fmt.Errorf("%w: %q listed more than once", ErrSplitMismatch, s.Member)
		}
		involved[s.Member] = true

		if s.Amount.IsNegative() {
			return nil, fmt.Errorf("%w: split for %q is %s", ErrInvalidAmount, s.Member, s.Amount)
		}
	}

	total := sum(custom)
	if total.Sub(amount).Abs().GreaterThan(Tolerance) {
		return nil, fmt.Errorf("%w: splits add up to %s, expense is %s", ErrSplitSumMismatch, total, amount)
	}

	splits := make([]Share, len(custom))
	for i, s := range custom {
		splits[i] = Share{Member: s.Member, Amount: RoundAmount(s.Amount)}
	}
	// Rounding sub-cent shares can push the sum back out of tolerance.
	if rounded := sum(splits); rounded.Sub(amount).Abs().GreaterThan(Tolerance) {
		return nil, fmt.Errorf("%w: rounded splits add up to %s, expense is %s", ErrSplitSumMismatch, rounded, amount)
	}
	return splits, nil
}

// ValidateSplits checks that splits hold one non-negative entry per involved
// member and add up to amount. The allowed drift is 0.01 per member beyond the
// first, which covers the rounding of equal splits.
func ValidateSplits(amount decimal.Decimal, membersInvolved []string, splits []Share) error {
	if len(splits) != len(membersInvolved) {
		return fmt.Errorf("%w: got %d splits for %d members", ErrSplitMismatch, len(splits), len(membersInvolved))
	}
	remaining := make(map[string]struct{}, len(membersInvolved))
	for _, m := range membersInvolved {
		remaining[m] = struct{}{}
	}
	for _, s := range splits {
		if _, ok := remaining[s.Member]; !ok {
			return fmt.Errorf("%w: unexpected split for %q", ErrSplitMismatch, s.Member)
		}
		delete(remaining, s.Member)
		if s.Amount.IsNegative() {
			return fmt.Errorf("%w: split for %q is %s", ErrInvalidAmount, s.Member, s.Amount)
		}
	}

	allowed := Tolerance
	if n := len(membersInvolved); n > 1 {
		allowed = Tolerance.Mul(decimal.NewFromInt(int64(n - 1)))
	}
	if total := sum(splits); total.Sub(amount).Abs().GreaterThan(allowed) {
		return fmt.Errorf("%w: splits add up to %s, expense is %s", ErrSplitSumMismatch, total, amount)
	}
	return nil
}
