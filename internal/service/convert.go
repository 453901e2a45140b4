package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/eatnsplit/internal/calculator"
	"github.com/mmynk/eatnsplit/internal/models"
	"github.com/mmynk/eatnsplit/pkg/api"
)

func toAPIUser(user *models.User) *api.User {
	return &api.User{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
}

// toAPIGroup resolves member display names from users; IDs missing from
// users are returned without a name.
func toAPIGroup(group *models.Group, users map[string]*models.User) *api.Group {
	members := make([]*api.Member, len(group.Members))
	for i, id := range group.Members {
		members[i] = &api.Member{ID: id}
		if u, ok := users[id]; ok {
			members[i].Name = u.Name
		}
	}
	return &api.Group{
		ID:        group.ID,
		Name:      group.Name,
		Members:   members,
		CreatedBy: group.CreatedBy,
		CreatedAt: group.CreatedAt,
	}
}

func toAPIExpense(expense *models.Expense) *api.Expense {
	splits := make([]*api.SplitAmount, len(expense.Splits))
	for i, s := range expense.Splits {
		splits[i] = &api.SplitAmount{Member: s.Member, Amount: toFloat(s.Amount)}
	}
	return &api.Expense{
		ID:              expense.ID,
		GroupID:         expense.GroupID,
		Name:            expense.Name,
		Amount:          toFloat(expense.Amount),
		PaidBy:          expense.PaidBy,
		MembersInvolved: expense.MembersInvolved,
		Category:        string(expense.Category),
		SplitPolicy:     string(expense.SplitPolicy),
		Splits:          splits,
		CreatedBy:       expense.CreatedBy,
		CreatedAt:       expense.CreatedAt,
	}
}

func toAPIShares(shares []calculator.Share) []*api.SplitAmount {
	out := make([]*api.SplitAmount, len(shares))
	for i, s := range shares {
		out[i] = &api.SplitAmount{Member: s.Member, Amount: toFloat(s.Amount)}
	}
	return out
}

func toAPIBalances(balances []calculator.MemberBalance) []*api.MemberBalance {
	out := make([]*api.MemberBalance, len(balances))
	for i, b := range balances {
		out[i] = &api.MemberBalance{
			Member:    b.Member,
			NetAmount: toFloat(b.NetBalance),
			TotalPaid: toFloat(b.TotalPaid),
			TotalOwed: toFloat(b.TotalOwed),
		}
	}
	return out
}

func toAPIDebts(debts []calculator.DebtEdge) []*api.DebtEdge {
	out := make([]*api.DebtEdge, len(debts))
	for i, d := range debts {
		out[i] = &api.DebtEdge{From: d.From, To: d.To, Amount: toFloat(d.Amount)}
	}
	return out
}

// fromAPIShares converts wire splits to calculator shares.
// A null entry is rejected rather than dropped.
func fromAPIShares(splits []*api.SplitAmount) ([]calculator.Share, error) {
	shares := make([]calculator.Share, 0, len(splits))
	for i, s := range splits {
		if s == nil {
			return nil, fmt.Errorf("%w: custom split #%d is null", calculator.ErrSplitMismatch, i)
		}
		amount, err := calculator.AmountFromFloat(s.Amount)
		if err != nil {
			return nil, err
		}
		shares = append(shares, calculator.Share{Member: s.Member, Amount: amount})
	}
	return shares, nil
}

func toFloat(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}
