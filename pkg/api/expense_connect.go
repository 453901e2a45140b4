package api

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
)

const (
	// ExpenseServiceName is the fully-qualified name of the ExpenseService.
	ExpenseServiceName = "eatnsplit.v1.ExpenseService"

	ExpenseServiceCalculateSplitProcedure    = "/eatnsplit.v1.ExpenseService/CalculateSplit"
	ExpenseServiceAddExpenseProcedure        = "/eatnsplit.v1.ExpenseService/AddExpense"
	ExpenseServiceListGroupExpensesProcedure = "/eatnsplit.v1.ExpenseService/ListGroupExpenses"
	ExpenseServiceGetGroupBalancesProcedure  = "/eatnsplit.v1.ExpenseService/GetGroupBalances"
)

// ExpenseServiceHandler is implemented by the server side of the ExpenseService.
type ExpenseServiceHandler interface {
	CalculateSplit(context.Context, *connect.Request[CalculateSplitRequest]) (*connect.Response[CalculateSplitResponse], error)
	AddExpense(context.Context, *connect.Request[AddExpenseRequest]) (*connect.Response[AddExpenseResponse], error)
	ListGroupExpenses(context.Context, *connect.Request[ListGroupExpensesRequest]) (*connect.Response[ListGroupExpensesResponse], error)
	GetGroupBalances(context.Context, *connect.Request[GetGroupBalancesRequest]) (*connect.Response[GetGroupBalancesResponse], error)
}

// NewExpenseServiceHandler builds an HTTP handler for the ExpenseService.
func NewExpenseServiceHandler(svc ExpenseServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{WithJSON()}, opts...)
	calculateSplit := connect.NewUnaryHandler(ExpenseServiceCalculateSplitProcedure, svc.CalculateSplit, opts...)
	addExpense := connect.NewUnaryHandler(ExpenseServiceAddExpenseProcedure, svc.AddExpense, opts...)
	listGroupExpenses := connect.NewUnaryHandler(ExpenseServiceListGroupExpensesProcedure, svc.ListGroupExpenses, opts...)
	getGroupBalances := connect.NewUnaryHandler(ExpenseServiceGetGroupBalancesProcedure, svc.GetGroupBalances, opts...)

	return "/" + ExpenseServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case ExpenseServiceCalculateSplitProcedure:
			calculateSplit.ServeHTTP(w, r)
		case ExpenseServiceAddExpenseProcedure:
			addExpense.ServeHTTP(w, r)
		case ExpenseServiceListGroupExpensesProcedure:
			listGroupExpenses.ServeHTTP(w, r)
		case ExpenseServiceGetGroupBalancesProcedure:
			getGroupBalances.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// ExpenseServiceClient is a client for the ExpenseService.
type ExpenseServiceClient interface {
	CalculateSplit(context.Context, *connect.Request[CalculateSplitRequest]) (*connect.Response[CalculateSplitResponse], error)
	AddExpense(context.Context, *connect.Request[AddExpenseRequest]) (*connect.Response[AddExpenseResponse], error)
	ListGroupExpenses(context.Context, *connect.Request[ListGroupExpensesRequest]) (*connect.Response[ListGroupExpensesResponse], error)
	GetGroupBalances(context.Context, *connect.Request[GetGroupBalancesRequest]) (*connect.Response[GetGroupBalancesResponse], error)
}

// NewExpenseServiceClient constructs a client for the ExpenseService at baseURL.
func NewExpenseServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) ExpenseServiceClient {
	opts = append([]connect.ClientOption{WithJSON()}, opts...)
	return &expenseServiceClient{
		calculateSplit:    connect.NewClient[CalculateSplitRequest, CalculateSplitResponse](httpClient, baseURL+ExpenseServiceCalculateSplitProcedure, opts...),
		addExpense:        connect.NewClient[AddExpenseRequest, AddExpenseResponse](httpClient, baseURL+ExpenseServiceAddExpenseProcedure, opts...),
		listGroupExpenses: connect.NewClient[ListGroupExpensesRequest, ListGroupExpensesResponse](httpClient, baseURL+ExpenseServiceListGroupExpensesProcedure, opts...),
		getGroupBalances:  connect.NewClient[GetGroupBalancesRequest, GetGroupBalancesResponse](httpClient, baseURL+ExpenseServiceGetGroupBalancesProcedure, opts...),
	}
}

type expenseServiceClient struct {
	calculateSplit    *connect.Client[CalculateSplitRequest, CalculateSplitResponse]
	addExpense        *connect.Client[AddExpenseRequest, AddExpenseResponse]
	listGroupExpenses *connect.Client[ListGroupExpensesRequest, ListGroupExpensesResponse]
	getGroupBalances  *connect.Client[GetGroupBalancesRequest, GetGroupBalancesResponse]
}

func (c *expenseServiceClient) CalculateSplit(ctx context.Context, req *connect.Request[CalculateSplitRequest]) (*connect.Response[CalculateSplitResponse], error) {
	return c.calculateSplit.CallUnary(ctx, req)
}

func (c *expenseServiceClient) AddExpense(ctx context.Context, req *connect.Request[AddExpenseRequest]) (*connect.Response[AddExpenseResponse], error) {
	return c.addExpense.CallUnary(ctx, req)
}

func (c *expenseServiceClient) ListGroupExpenses(ctx context.Context, req *connect.Request[ListGroupExpensesRequest]) (*connect.Response[ListGroupExpensesResponse], error) {
	return c.listGroupExpenses.CallUnary(ctx, req)
}

func (c *expenseServiceClient) GetGroupBalances(ctx context.Context, req *connect.Request[GetGroupBalancesRequest]) (*connect.Response[GetGroupBalancesResponse], error) {
	return c.getGroupBalances.CallUnary(ctx, req)
}
