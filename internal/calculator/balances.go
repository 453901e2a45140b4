package calculator

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// ExpenseForBalance represents an expense with the minimal information needed for balance calculations.
type ExpenseForBalance struct {
	ID     string // optional, only used in error messages
	Amount decimal.Decimal
	PaidBy string
	Splits []Share
}

// MemberBalance represents the balance information for one group member.
type MemberBalance struct {
	Member     string
	NetBalance decimal.Decimal // Positive = owed money, Negative = owes money
	TotalPaid  decimal.Decimal // Total amount fronted across all expenses
	TotalOwed  decimal.Decimal // Sum of this member's splits
}

// DebtEdge represents a debt from one person to another.
type DebtEdge struct {
	From   string // Person who owes
	To     string // Person who is owed
	Amount decimal.Decimal
}

// ComputeBalances folds a group's expense history into one net balance per member.
//
// Algorithm:
// - For each expense: payer contributed +amount, each split member owes their split
// - Aggregate: net_balance = total_paid - total_owed
//
// Every member that paid for or shares in at least one expense is returned,
// including members whose balance is zero. The result is sorted by member and
// does not depend on the order of expenses. A single malformed expense fails
// the whole computation.
func ComputeBalances(expenses []ExpenseForBalance) ([]MemberBalance, error) {
	for i := range expenses {
		if err := checkExpense(i, &expenses[i]); err != nil {
			return nil, err
		}
	}

	balances := make(map[string]*MemberBalance)
	account := func(member string) *MemberBalance {
		bal, ok := balances[member]
		if !ok {
			bal = &MemberBalance{
				Member:     member,
				NetBalance: decimal.Zero,
				TotalPaid:  decimal.Zero,
				TotalOwed:  decimal.Zero,
			}
			balances[member] = bal
		}
		return bal
	}

	for _, exp := range expenses {
		for _, split := range exp.Splits {
			bal := account(split.Member)
			bal.TotalOwed = bal.TotalOwed.Add(split.Amount)
		}
		payer := account(exp.PaidBy)
		payer.TotalPaid = payer.TotalPaid.Add(exp.Amount)
	}

	memberBalances := make([]MemberBalance, 0, len(balances))
	for _, bal := range balances {
		bal.NetBalance = bal.TotalPaid.Sub(bal.TotalOwed)
		memberBalances = append(memberBalances, *bal)
	}
	sort.Slice(memberBalances, func(i, j int) bool {
		return memberBalances[i].Member < memberBalances[j].Member
	})

	return memberBalances, nil
}

func checkExpense(i int, exp *ExpenseForBalance) error {
	ref := fmt.Sprintf("expense #%d", i)
	if exp.ID != "" {
		ref = fmt.Sprintf("expense %s", exp.ID)
	}
	if !exp.Amount.IsPositive() {
		return fmt.Errorf("%w: %s has non-positive amount %s", ErrMalformedExpense, ref, exp.Amount)
	}
	if exp.PaidBy == "" {
		return fmt.Errorf("%w: %s has no payer", ErrMalformedExpense, ref)
	}
	if len(exp.Splits) == 0 {
		return fmt.Errorf("%w: %s has no splits", ErrMalformedExpense, ref)
	}
	for _, s := range exp.Splits {
		if s.Member == "" {
			return fmt.Errorf("%w: %s has a split without a member", ErrMalformedExpense, ref)
		}
		if s.Amount.IsNegative() {
			return fmt.Errorf("%w: %s has negative split %s for %s", ErrMalformedExpense, ref, s.Amount, s.Member)
		}
	}
	return nil
}

// SimplifyDebts turns net balances into a short list of payments that settles them.
//
// Debtors are matched with creditors greedily, largest amounts first. Amounts
// below 0.01 are treated as settled.
func SimplifyDebts(balances []MemberBalance) []DebtEdge {
	var creditors, debtors []MemberBalance
	for _, bal := range balances {
		if bal.NetBalance.IsPositive() {
			creditors = append(creditors, bal)
		} else if bal.NetBalance.IsNegative() {
			debtors = append(debtors, bal)
		}
	}
	byMagnitude := func(s []MemberBalance) func(i, j int) bool {
		return func(i, j int) bool {
			ai, aj := s[i].NetBalance.Abs(), s[j].NetBalance.Abs()
			if !ai.Equal(aj) {
				return ai.GreaterThan(aj)
			}
			return s[i].Member < s[j].Member
		}
	}
	sort.Slice(creditors, byMagnitude(creditors))
	sort.Slice(debtors, byMagnitude(debtors))

	debtorBalance := make(map[string]decimal.Decimal, len(debtors))
	creditorBalance := make(map[string]decimal.Decimal, len(creditors))
	for _, debtor := range debtors {
		debtorBalance[debtor.Member] = debtor.NetBalance.Neg() // Make positive
	}
	for _, creditor := range creditors {
		creditorBalance[creditor.Member] = creditor.NetBalance
	}

	var edges []DebtEdge
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		debtor := debtors[i].Member
		creditor := creditors[j].Member

		// Amount to settle is minimum of what debtor owes and creditor is owed
		amount := decimal.Min(debtorBalance[debtor], creditorBalance[creditor])
		if amount.GreaterThanOrEqual(Tolerance) {
			edges = append(edges, DebtEdge{From: debtor, To: creditor, Amount: amount})
		}

		debtorBalance[debtor] = debtorBalance[debtor].Sub(amount)
		creditorBalance[creditor] = creditorBalance[creditor].Sub(amount)

		if debtorBalance[debtor].LessThan(Tolerance) {
			i++
		}
		if creditorBalance[creditor].LessThan(Tolerance) {
			j++
		}
	}

	return edges
}
