package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/eatnsplit/internal/calculator"
	"github.com/mmynk/eatnsplit/internal/models"
	"github.com/mmynk/eatnsplit/internal/storage"
)

const expenseColumns = "id, group_id, name, amount, paid_by, category, split_policy, created_by, created_at"

// CreateExpense persists a new expense with its members and splits in one transaction.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO expenses ("+expenseColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		expense.ID, expense.GroupID, expense.Name, expense.Amount, expense.PaidBy,
		string(expense.Category), string(expense.SplitPolicy), expense.CreatedBy, expense.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	for i, userID := range expense.MembersInvolved {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO expense_members (expense_id, user_id, position) VALUES (?, ?, ?)",
			expense.ID, userID, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert expense member: %w", err)
		}
	}

	for i, split := range expense.Splits {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO expense_splits (expense_id, user_id, amount, position) VALUES (?, ?, ?, ?)",
			expense.ID, split.Member, split.Amount, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert expense split: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetExpense retrieves an expense by ID, including members and splits.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	expense, err := scanExpense(s.db.QueryRowContext(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE id = ?", expenseID,
	))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	byID := map[string]*models.Expense{expense.ID: expense}
	if err := s.loadExpenseMembers(ctx, "WHERE expense_id = ?", expenseID, byID); err != nil {
		return nil, err
	}
	if err := s.loadExpenseSplits(ctx, "WHERE expense_id = ?", expenseID, byID); err != nil {
		return nil, err
	}
	return expense, nil
}

// ListExpensesByGroup retrieves all expenses of a group, newest first.
// Members and splits are loaded with one query each for the whole group.
func (s *SQLiteStore) ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE group_id = ? ORDER BY created_at DESC, rowid DESC",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses by group: %w", err)
	}
	defer rows.Close()

	var expenses []*models.Expense
	byID := make(map[string]*models.Expense)
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
		byID[expense.ID] = expense
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	if len(expenses) == 0 {
		return expenses, nil
	}

	const inGroup = "WHERE expense_id IN (SELECT id FROM expenses WHERE group_id = ?)"
	if err := s.loadExpenseMembers(ctx, inGroup, groupID, byID); err != nil {
		return nil, err
	}
	if err := s.loadExpenseSplits(ctx, inGroup, groupID, byID); err != nil {
		return nil, err
	}
	return expenses, nil
}

func (s *SQLiteStore) loadExpenseMembers(ctx context.Context, where string, arg any, byID map[string]*models.Expense) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT expense_id, user_id FROM expense_members "+where+" ORDER BY expense_id, position",
		arg,
	)
	if err != nil {
		return fmt.Errorf("failed to get expense members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var expenseID, userID string
		if err := rows.Scan(&expenseID, &userID); err != nil {
			return fmt.Errorf("failed to scan expense member: %w", err)
		}
		if expense, ok := byID[expenseID]; ok {
			expense.MembersInvolved = append(expense.MembersInvolved, userID)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate expense members: %w", err)
	}
	return nil
}

func (s *SQLiteStore) loadExpenseSplits(ctx context.Context, where string, arg any, byID map[string]*models.Expense) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT expense_id, user_id, amount FROM expense_splits "+where+" ORDER BY expense_id, position",
		arg,
	)
	if err != nil {
		return fmt.Errorf("failed to get expense splits: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			expenseID string
			split     models.Split
		)
		if err := rows.Scan(&expenseID, &split.Member, &split.Amount); err != nil {
			return fmt.Errorf("failed to scan expense split: %w", err)
		}
		if expense, ok := byID[expenseID]; ok {
			expense.Splits = append(expense.Splits, split)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate expense splits: %w", err)
	}
	return nil
}

func scanExpense(row rowScanner) (*models.Expense, error) {
	var (
		expense  models.Expense
		amount   decimal.Decimal
		category string
		policy   string
	)
	err := row.Scan(
		&expense.ID,
		&expense.GroupID,
		&expense.Name,
		&amount,
		&expense.PaidBy,
		&category,
		&policy,
		&expense.CreatedBy,
		&expense.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	expense.Amount = amount
	expense.Category = models.Category(category)
	expense.SplitPolicy = calculator.SplitPolicy(policy)
	return &expense, nil
}
