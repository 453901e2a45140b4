package models

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/eatnsplit/internal/calculator"
)

// Category classifies an expense.
type Category string

const (
	CategoryFood          Category = "Food"
	CategoryTransport     Category = "Transport"
	CategoryAccommodation Category = "Accommodation"
	CategoryOther         Category = "Other"
)

// ParseCategory validates a category name. An empty name means CategoryOther.
func ParseCategory(s string) (Category, error) {
	switch c := Category(s); c {
	case "":
		return CategoryOther, nil
	case CategoryFood, CategoryTransport, CategoryAccommodation, CategoryOther:
		return c, nil
	default:
		return "", fmt.Errorf("invalid category %q", s)
	}
}

// Expense represents a single payment made by one member on behalf of a set of members.
// Expenses are immutable once created.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// GroupID is the group this expense belongs to.
	GroupID string

	// Name is the human-readable label (e.g., "Groceries").
	Name string

	// Amount is the total paid.
	Amount decimal.Decimal

	// PaidBy is the user ID of the member who fronted the money.
	PaidBy string

	// MembersInvolved is the list of user IDs sharing the cost.
	MembersInvolved []string

	// Category is one of the fixed expense categories.
	Category Category

	// SplitPolicy is the rule used to compute Splits.
	SplitPolicy calculator.SplitPolicy

	// Splits are the per-member shares computed when the expense was created.
	// Every member in MembersInvolved appears exactly once.
	Splits []Split

	// CreatedBy is the user ID that recorded the expense.
	CreatedBy string

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64
}

// Split represents one member's share of an expense.
type Split struct {
	Member string
	Amount decimal.Decimal
}

// SplitsFromShares converts calculator output into model splits.
func SplitsFromShares(shares []calculator.Share) []Split {
	splits := make([]Split, len(shares))
	for i, s := range shares {
		splits[i] = Split{Member: s.Member, Amount: s.Amount}
	}
	return splits
}

// ForBalance returns the view of the expense the balance aggregator works on.
func (e *Expense) ForBalance() calculator.ExpenseForBalance {
	shares := make([]calculator.Share, len(e.Splits))
	for i, s := range e.Splits {
		shares[i] = calculator.Share{Member: s.Member, Amount: s.Amount}
	}
	return calculator.ExpenseForBalance{
		ID:     e.ID,
		Amount: e.Amount,
		PaidBy: e.PaidBy,
		Splits: shares,
	}
}
