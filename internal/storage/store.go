// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/eatnsplit/internal/models"
)

// ErrNotFound is returned (wrapped) when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the interface for storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	UserStore

	// CreateGroup persists a new group with its members.
	// The group.ID and group.CreatedAt fields are populated by the store when empty.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group with its members.
	// Returns an error wrapping ErrNotFound if the group does not exist.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// ListGroupsByMember returns every group the user belongs to, newest first.
	ListGroupsByMember(ctx context.Context, userID string) ([]*models.Group, error)

	// AddGroupMembers adds members to a group. Existing members are ignored.
	AddGroupMembers(ctx context.Context, groupID string, members []string) error

	// CreateExpense persists an expense together with its splits in one transaction.
	// The expense.ID and expense.CreatedAt fields are populated by the store when empty.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// GetExpense retrieves an expense with its members and splits.
	// Returns an error wrapping ErrNotFound if the expense does not exist.
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)

	// ListExpensesByGroup returns every expense of a group with members and splits, newest first.
	ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error)

	// Close releases any resources held by the store.
	Close() error
}

// UserStore defines user persistence operations.
type UserStore interface {
	// CreateUser persists a new user.
	// Returns an error wrapping ErrEmailTaken if the email is already registered.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail returns the user with the given email, or an error wrapping ErrNotFound.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID returns the user with the given ID, or an error wrapping ErrNotFound.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// GetUsersByIDs returns the users that exist among ids, keyed by ID.
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)
}

// ErrEmailTaken is returned (wrapped) when registering an email that already exists.
var ErrEmailTaken = errors.New("email already registered")
