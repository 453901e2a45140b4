package events

import (
	"encoding/json"
	"time"

	"github.com/mmynk/eatnsplit/internal/models"
)

// RoutingKeyExpenseCreated is the routing key for ExpenseCreated messages.
const RoutingKeyExpenseCreated = "expense.created"

// ExpenseCreated announces a newly stored expense. Amounts are decimal
// strings so consumers never see float rounding.
type ExpenseCreated struct {
	ExpenseID string            `json:"expense_id"`
	GroupID   string            `json:"group_id"`
	Name      string            `json:"name"`
	Amount    string            `json:"amount"`
	PaidBy    string            `json:"paid_by"`
	Category  string            `json:"category"`
	Splits    map[string]string `json:"splits"`
	CreatedBy string            `json:"created_by"`
	Timestamp time.Time         `json:"timestamp"`
}

// NewExpenseCreated builds the event for a stored expense.
func NewExpenseCreated(expense *models.Expense) *ExpenseCreated {
	splits := make(map[string]string, len(expense.Splits))
	for _, s := range expense.Splits {
		splits[s.Member] = s.Amount.StringFixed(2)
	}
	return &ExpenseCreated{
		ExpenseID: expense.ID,
		GroupID:   expense.GroupID,
		Name:      expense.Name,
		Amount:    expense.Amount.StringFixed(2),
		PaidBy:    expense.PaidBy,
		Category:  string(expense.Category),
		Splits:    splits,
		CreatedBy: expense.CreatedBy,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ExpenseCreated) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExpenseCreatedFromJSON decodes a message published by ExpenseCreated.ToJSON.
func ExpenseCreatedFromJSON(data []byte) (*ExpenseCreated, error) {
	var msg ExpenseCreated
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
