package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmynk/eatnsplit/internal/calculator"
	"github.com/mmynk/eatnsplit/internal/models"
	"github.com/mmynk/eatnsplit/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "eatnsplit-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore_Users(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := models.NewUser("Alice", "Alice@Example.com", "hash")
	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	t.Run("GetUserByEmail uses normalized email", func(t *testing.T) {
		got, err := store.GetUserByEmail(ctx, "alice@example.com")
		if err != nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		if got.ID != user.ID || got.Name != "Alice" {
			t.Errorf("got %+v, want %+v", got, user)
		}
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		err := store.CreateUser(ctx, models.NewUser("Other", "alice@example.com", "hash"))
		if !errors.Is(err, storage.ErrEmailTaken) {
			t.Errorf("expected ErrEmailTaken, got %v", err)
		}
	})

	t.Run("unknown user is not found", func(t *testing.T) {
		if _, err := store.GetUserByID(ctx, "nope"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
		if _, err := store.GetUserByEmail(ctx, "nope@example.com"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("GetUsersByIDs skips missing users", func(t *testing.T) {
		users, err := store.GetUsersByIDs(ctx, []string{user.ID, "missing"})
		if err != nil {
			t.Fatalf("GetUsersByIDs failed: %v", err)
		}
		if len(users) != 1 || users[user.ID] == nil {
			t.Errorf("expected only %s, got %v", user.ID, users)
		}
	})
}

func TestSQLiteStore_Groups(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	group := &models.Group{
		Name:      "Roommates",
		Members:   []string{"u1", "u2"},
		CreatedBy: "u1",
	}
	if err := store.CreateGroup(ctx, group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	if group.ID == "" || group.CreatedAt == 0 {
		t.Fatalf("expected ID and CreatedAt to be generated, got %+v", group)
	}

	t.Run("AddGroupMembers appends and ignores existing", func(t *testing.T) {
		if err := store.AddGroupMembers(ctx, group.ID, []string{"u2", "u3"}); err != nil {
			t.Fatalf("AddGroupMembers failed: %v", err)
		}
		got, err := store.GetGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}
		want := []string{"u1", "u2", "u3"}
		if len(got.Members) != len(want) {
			t.Fatalf("members = %v, want %v", got.Members, want)
		}
		for i := range want {
			if got.Members[i] != want[i] {
				t.Errorf("members[%d] = %s, want %s", i, got.Members[i], want[i])
			}
		}
	})

	t.Run("AddGroupMembers on missing group", func(t *testing.T) {
		err := store.AddGroupMembers(ctx, "missing", []string{"u1"})
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("ListGroupsByMember", func(t *testing.T) {
		other := &models.Group{Name: "Work", Members: []string{"u3"}, CreatedBy: "u3"}
		if err := store.CreateGroup(ctx, other); err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}

		groups, err := store.ListGroupsByMember(ctx, "u3")
		if err != nil {
			t.Fatalf("ListGroupsByMember failed: %v", err)
		}
		if len(groups) != 2 {
			t.Fatalf("expected 2 groups for u3, got %d", len(groups))
		}
		for _, g := range groups {
			if len(g.Members) == 0 {
				t.Errorf("group %s loaded without members", g.Name)
			}
		}

		groups, err = store.ListGroupsByMember(ctx, "u1")
		if err != nil {
			t.Fatalf("ListGroupsByMember failed: %v", err)
		}
		if len(groups) != 1 || groups[0].ID != group.ID {
			t.Errorf("expected only %s for u1, got %v", group.ID, groups)
		}
	})

	t.Run("GetGroup returns ErrNotFound", func(t *testing.T) {
		if _, err := store.GetGroup(ctx, "nonexistent-id"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestSQLiteStore_Expenses(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	group := &models.Group{Name: "Trip", Members: []string{"a", "b", "c"}, CreatedBy: "a"}
	if err := store.CreateGroup(ctx, group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	amount := decimal.RequireFromString("100")
	members := []string{"c", "a", "b"}
	shares, err := calculator.ComputeSplits(amount, members, calculator.PolicyEqual, nil)
	if err != nil {
		t.Fatalf("ComputeSplits failed: %v", err)
	}

	expense := &models.Expense{
		GroupID:         group.ID,
		Name:            "Dinner",
		Amount:          amount,
		PaidBy:          "a",
		MembersInvolved: members,
		Category:        models.CategoryFood,
		SplitPolicy:     calculator.PolicyEqual,
		Splits:          models.SplitsFromShares(shares),
		CreatedBy:       "a",
	}
	if err := store.CreateExpense(ctx, expense); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	t.Run("GetExpense round-trips amounts and order", func(t *testing.T) {
		got, err := store.GetExpense(ctx, expense.ID)
		if err != nil {
			t.Fatalf("GetExpense failed: %v", err)
		}
		if !got.Amount.Equal(amount) {
			t.Errorf("amount = %s, want %s", got.Amount, amount)
		}
		if got.Category != models.CategoryFood || got.SplitPolicy != calculator.PolicyEqual {
			t.Errorf("category/policy = %s/%s", got.Category, got.SplitPolicy)
		}
		for i, m := range members {
			if got.MembersInvolved[i] != m {
				t.Errorf("members[%d] = %s, want %s", i, got.MembersInvolved[i], m)
			}
			if got.Splits[i].Member != m {
				t.Errorf("splits[%d].Member = %s, want %s", i, got.Splits[i].Member, m)
			}
			if got.Splits[i].Amount.String() != "33.33" {
				t.Errorf("splits[%d].Amount = %s, want 33.33", i, got.Splits[i].Amount)
			}
		}
	})

	t.Run("ListExpensesByGroup loads splits for every expense", func(t *testing.T) {
		second := &models.Expense{
			GroupID:         group.ID,
			Name:            "Taxi",
			Amount:          decimal.RequireFromString("12.50"),
			PaidBy:          "b",
			MembersInvolved: []string{"b"},
			Category:        models.CategoryTransport,
			SplitPolicy:     calculator.PolicyCustom,
			Splits:          []models.Split{{Member: "b", Amount: decimal.RequireFromString("12.50")}},
			CreatedBy:       "b",
			CreatedAt:       expense.CreatedAt + 10,
		}
		if err := store.CreateExpense(ctx, second); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}

		expenses, err := store.ListExpensesByGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("ListExpensesByGroup failed: %v", err)
		}
		if len(expenses) != 2 {
			t.Fatalf("expected 2 expenses, got %d", len(expenses))
		}
		if expenses[0].ID != second.ID {
			t.Errorf("expected newest expense first, got %s", expenses[0].Name)
		}
		for _, e := range expenses {
			if err := calculator.ValidateSplits(e.Amount, e.MembersInvolved, e.ForBalance().Splits); err != nil {
				t.Errorf("expense %s: %v", e.Name, err)
			}
		}
	})

	t.Run("ListExpensesByGroup on empty group", func(t *testing.T) {
		expenses, err := store.ListExpensesByGroup(ctx, "no-such-group")
		if err != nil {
			t.Fatalf("ListExpensesByGroup failed: %v", err)
		}
		if len(expenses) != 0 {
			t.Errorf("expected no expenses, got %d", len(expenses))
		}
	})

	t.Run("expense for missing group violates foreign key", func(t *testing.T) {
		orphan := &models.Expense{
			GroupID:         "missing",
			Name:            "Orphan",
			Amount:          decimal.RequireFromString("1"),
			PaidBy:          "a",
			MembersInvolved: []string{"a"},
			Category:        models.CategoryOther,
			SplitPolicy:     calculator.PolicyEqual,
			Splits:          []models.Split{{Member: "a", Amount: decimal.RequireFromString("1")}},
		}
		if err := store.CreateExpense(ctx, orphan); err == nil {
			t.Error("expected foreign key error, got nil")
		}
	})

	t.Run("GetExpense returns ErrNotFound", func(t *testing.T) {
		if _, err := store.GetExpense(ctx, "nope"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestPlaceholders(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, ""},
		{1, "?"},
		{3, "?, ?, ?"},
	}
	for _, tt := range tests {
		if got := placeholders(tt.n); got != tt.want {
			t.Errorf("placeholders(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
