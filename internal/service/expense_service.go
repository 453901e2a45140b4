package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/mmynk/eatnsplit/internal/calculator"
	"github.com/mmynk/eatnsplit/internal/events"
	"github.com/mmynk/eatnsplit/internal/metrics"
	"github.com/mmynk/eatnsplit/internal/middleware"
	"github.com/mmynk/eatnsplit/internal/models"
	"github.com/mmynk/eatnsplit/internal/storage"
	"github.com/mmynk/eatnsplit/pkg/api"
)

// ExpenseService implements the Connect ExpenseService: split previews,
// recording expenses, and group balances.
type ExpenseService struct {
	store     storage.Store
	publisher events.Publisher
	metrics   *metrics.Metrics
}

var _ api.ExpenseServiceHandler = (*ExpenseService)(nil)

// NewExpenseService creates a new ExpenseService. A nil publisher disables events.
func NewExpenseService(store storage.Store, publisher events.Publisher, m *metrics.Metrics) *ExpenseService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &ExpenseService{store: store, publisher: publisher, metrics: m}
}

// CalculateSplit previews the splits of an expense without storing anything.
func (s *ExpenseService) CalculateSplit(ctx context.Context, req *connect.Request[api.CalculateSplitRequest]) (*connect.Response[api.CalculateSplitResponse], error) {
	slog.Debug("CalculateSplit request received",
		"amount", req.Msg.Amount,
		"members_count", len(req.Msg.MembersInvolved),
		"split_policy", req.Msg.SplitPolicy,
	)

	_, shares, err := computeShares(req.Msg.Amount, req.Msg.MembersInvolved, req.Msg.SplitPolicy, req.Msg.CustomSplits)
	if err != nil {
		slog.Warn("CalculateSplit failed", "error", err)
		return nil, toConnectError(err)
	}

	total := decimal.Zero
	for _, sh := range shares {
		total = total.Add(sh.Amount)
	}
	return connect.NewResponse(&api.CalculateSplitResponse{
		Splits: toAPIShares(shares),
		Total:  toFloat(total),
	}), nil
}

// AddExpense validates and stores an expense, computing its splits once.
func (s *ExpenseService) AddExpense(ctx context.Context, req *connect.Request[api.AddExpenseRequest]) (*connect.Response[api.AddExpenseResponse], error) {
	userID := middleware.GetUserID(ctx)
	msg := req.Msg
	slog.Info("AddExpense request received",
		"group_id", msg.GroupID,
		"amount", msg.Amount,
		"paid_by", msg.PaidBy,
		"members_count", len(msg.MembersInvolved),
	)

	name := strings.TrimSpace(msg.Name)
	if len(name) < 2 {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("expense name must be at least 2 characters"))
	}
	category, err := models.ParseCategory(msg.Category)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	group, err := groupForMember(ctx, s.store, msg.GroupID, userID)
	if err != nil {
		slog.Warn("AddExpense rejected", "group_id", msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}
	if msg.PaidBy == "" || !group.HasMember(msg.PaidBy) {
		return nil, connect.NewError(connect.CodeInvalidArgument,
			fmt.Errorf("paid_by %q must be a member of the group", msg.PaidBy))
	}
	for _, m := range msg.MembersInvolved {
		if !group.HasMember(m) {
			return nil, connect.NewError(connect.CodeInvalidArgument,
				fmt.Errorf("member %q is not in the group", m))
		}
	}

	policy := splitPolicyOrDefault(msg.SplitPolicy)
	amount, shares, err := computeShares(msg.Amount, msg.MembersInvolved, string(policy), msg.CustomSplits)
	if err != nil {
		slog.Warn("AddExpense split failed", "group_id", group.ID, "error", err)
		return nil, toConnectError(err)
	}

	if err := calculator.ValidateSplits(amount, msg.MembersInvolved, shares); err != nil {
		slog.Error("AddExpense computed inconsistent splits", "group_id", group.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	expense := &models.Expense{
		GroupID:         group.ID,
		Name:            name,
		Amount:          amount,
		PaidBy:          msg.PaidBy,
		MembersInvolved: msg.MembersInvolved,
		Category:        category,
		SplitPolicy:     policy,
		Splits:          models.SplitsFromShares(shares),
		CreatedBy:       userID,
	}
	if err := s.store.CreateExpense(ctx, expense); err != nil {
		slog.Error("AddExpense failed", "group_id", group.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	s.metrics.ExpenseCreated(string(expense.Category))

	// The expense is stored; a broker outage must not fail the request.
	if err := s.publisher.PublishExpenseCreated(ctx, expense); err != nil {
		s.metrics.EventPublishFailed()
		slog.Error("Failed to publish expense event", "expense_id", expense.ID, "error", err)
	}

	slog.Info("Expense created", "expense_id", expense.ID, "group_id", group.ID)

	return connect.NewResponse(&api.AddExpenseResponse{
		Expense: toAPIExpense(expense),
	}), nil
}

// ListGroupExpenses returns a group's expenses, newest first.
func (s *ExpenseService) ListGroupExpenses(ctx context.Context, req *connect.Request[api.ListGroupExpensesRequest]) (*connect.Response[api.ListGroupExpensesResponse], error) {
	slog.Info("ListGroupExpenses request received", "group_id", req.Msg.GroupID)

	group, err := groupForMember(ctx, s.store, req.Msg.GroupID, middleware.GetUserID(ctx))
	if err != nil {
		slog.Warn("ListGroupExpenses failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	expenses, err := s.store.ListExpensesByGroup(ctx, group.ID)
	if err != nil {
		slog.Error("ListGroupExpenses failed", "group_id", group.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	out := make([]*api.Expense, len(expenses))
	for i, e := range expenses {
		out[i] = toAPIExpense(e)
	}

	slog.Info("ListGroupExpenses successful", "group_id", group.ID, "count", len(out))

	return connect.NewResponse(&api.ListGroupExpensesResponse{
		Expenses: out,
	}), nil
}

// GetGroupBalances folds every stored expense of a group into member
// balances and a simplified list of suggested payments.
func (s *ExpenseService) GetGroupBalances(ctx context.Context, req *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error) {
	groupID := req.Msg.GroupID
	userID := middleware.GetUserID(ctx)
	slog.Info("GetGroupBalances request received", "group_id", groupID)

	if groupID == "" {
		return nil, toConnectError(errGroupIDRequired)
	}

	var (
		group    *models.Group
		expenses []*models.Expense
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		group, err = s.store.GetGroup(gctx, groupID)
		return err
	})
	g.Go(func() error {
		var err error
		expenses, err = s.store.ListExpensesByGroup(gctx, groupID)
		return err
	})
	if err := g.Wait(); err != nil {
		slog.Error("GetGroupBalances failed to load group", "group_id", groupID, "error", err)
		return nil, toConnectError(err)
	}
	if !group.HasMember(userID) {
		return nil, toConnectError(fmt.Errorf("group %s: %w", groupID, errNotGroupMember))
	}

	forBalance := make([]calculator.ExpenseForBalance, len(expenses))
	for i, e := range expenses {
		forBalance[i] = e.ForBalance()
	}

	balances, err := calculator.ComputeBalances(forBalance)
	if err != nil {
		slog.Error("GetGroupBalances failed - calculation error", "group_id", groupID, "error", err)
		return nil, toConnectError(err)
	}
	debts := calculator.SimplifyDebts(balances)
	s.metrics.BalancesComputed()

	slog.Info("GetGroupBalances successful",
		"group_id", groupID,
		"expenses_count", len(expenses),
		"members_count", len(balances),
		"debts_count", len(debts),
	)

	return connect.NewResponse(&api.GetGroupBalancesResponse{
		Balances: toAPIBalances(balances),
		Debts:    toAPIDebts(debts),
	}), nil
}

// splitPolicyOrDefault treats an empty policy as equal. Anything else is
// passed through and validated by the calculator.
func splitPolicyOrDefault(p string) calculator.SplitPolicy {
	if p == "" {
		return calculator.PolicyEqual
	}
	return calculator.SplitPolicy(p)
}

// computeShares rounds the wire amount to cents and runs the split calculator.
// It returns the rounded amount with the shares.
func computeShares(amount float64, members []string, policy string, custom []*api.SplitAmount) (decimal.Decimal, []calculator.Share, error) {
	total, err := calculator.AmountFromFloat(amount)
	if err != nil {
		return decimal.Zero, nil, err
	}
	total = calculator.RoundAmount(total)

	customShares, err := fromAPIShares(custom)
	if err != nil {
		return decimal.Zero, nil, err
	}
	shares, err := calculator.ComputeSplits(total, members, calculator.SplitPolicy(policy), customShares)
	if err != nil {
		return decimal.Zero, nil, err
	}
	return total, shares, nil
}
