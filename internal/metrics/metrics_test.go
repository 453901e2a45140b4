package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.ObserveRPC("/eatnsplit.v1.ExpenseService/AddExpense", "ok", 10*time.Millisecond)
	m.ObserveRPC("/eatnsplit.v1.ExpenseService/AddExpense", "ok", 20*time.Millisecond)
	m.ObserveRPC("/eatnsplit.v1.ExpenseService/AddExpense", "invalid_argument", time.Millisecond)
	m.ExpenseCreated("Food")
	m.BalancesComputed()
	m.EventPublishFailed()

	if got := testutil.ToFloat64(m.rpcRequests.WithLabelValues("/eatnsplit.v1.ExpenseService/AddExpense", "ok")); got != 2 {
		t.Errorf("rpc ok count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.rpcRequests.WithLabelValues("/eatnsplit.v1.ExpenseService/AddExpense", "invalid_argument")); got != 1 {
		t.Errorf("rpc invalid_argument count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.expensesCreated.WithLabelValues("Food")); got != 1 {
		t.Errorf("expenses created = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.balanceComputations); got != 1 {
		t.Errorf("balance computations = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.eventPublishFailures); got != 1 {
		t.Errorf("publish failures = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(m.rpcDuration); got != 1 {
		t.Errorf("duration series = %d, want 1", got)
	}
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveRPC("p", "ok", time.Second)
	m.ExpenseCreated("Food")
	m.BalancesComputed()
	m.EventPublishFailed()
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ExpenseCreated("Transport")

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET /metrics failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !strings.Contains(string(body), `eatnsplit_expenses_created_total{category="Transport"} 1`) {
		t.Errorf("expected expenses counter in output, got:\n%s", body)
	}
}
