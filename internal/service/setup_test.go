package service

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"connectrpc.com/connect"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/eatnsplit/internal/auth"
	"github.com/mmynk/eatnsplit/internal/metrics"
	"github.com/mmynk/eatnsplit/internal/middleware"
	"github.com/mmynk/eatnsplit/internal/models"
	"github.com/mmynk/eatnsplit/internal/storage/sqlite"
	"github.com/mmynk/eatnsplit/pkg/api"
)

// recordingPublisher captures published expenses.
type recordingPublisher struct {
	mu       sync.Mutex
	expenses []*models.Expense
	err      error
}

func (p *recordingPublisher) PublishExpenseCreated(_ context.Context, expense *models.Expense) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.expenses = append(p.expenses, expense)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) published() []*models.Expense {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*models.Expense(nil), p.expenses...)
}

type testEnv struct {
	store     *sqlite.SQLiteStore
	publisher *recordingPublisher
	metrics   *metrics.Metrics

	auth    api.AuthServiceClient
	groups  api.GroupServiceClient
	expense api.ExpenseServiceClient
}

// setupTestServer serves all three services over httptest against a temp
// SQLite database, with the same interceptors as the real server.
func setupTestServer(t *testing.T) *testEnv {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "eatnsplit-service-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := sqlite.New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	jwtManager := auth.NewJWTManager("test-secret-0123456789", time.Hour)
	authenticator := auth.NewPasswordAuthenticator(store).WithCost(bcrypt.MinCost)
	m := metrics.New()
	publisher := &recordingPublisher{}

	// Register and Login are public; everything else needs a token.
	authInterceptors := connect.WithInterceptors(
		middleware.MetricsInterceptor(m),
		middleware.RequireAuth(jwtManager, api.AuthServiceRegisterProcedure, api.AuthServiceLoginProcedure),
		middleware.LoggingInterceptor(),
	)
	private := connect.WithInterceptors(
		middleware.MetricsInterceptor(m),
		middleware.RequireAuth(jwtManager),
		middleware.LoggingInterceptor(),
	)

	mux := http.NewServeMux()
	mux.Handle(api.NewAuthServiceHandler(NewAuthService(authenticator, jwtManager, store, logger), authInterceptors))
	mux.Handle(api.NewGroupServiceHandler(NewGroupService(store), private))
	mux.Handle(api.NewExpenseServiceHandler(NewExpenseService(store, publisher, m), private))

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return &testEnv{
		store:     store,
		publisher: publisher,
		metrics:   m,
		auth:      api.NewAuthServiceClient(http.DefaultClient, server.URL),
		groups:    api.NewGroupServiceClient(http.DefaultClient, server.URL),
		expense:   api.NewExpenseServiceClient(http.DefaultClient, server.URL),
	}
}

type testUser struct {
	ID    string
	Token string
}

// register creates an account and returns its ID and token.
func (e *testEnv) register(t *testing.T, name, email string) testUser {
	t.Helper()
	resp, err := e.auth.Register(context.Background(), connect.NewRequest(&api.RegisterRequest{
		Name:     name,
		Email:    email,
		Password: "secret123",
	}))
	if err != nil {
		t.Fatalf("Register(%s) failed: %v", email, err)
	}
	return testUser{ID: resp.Msg.User.ID, Token: resp.Msg.Token}
}

// createGroup creates a group owned by owner containing members.
func (e *testEnv) createGroup(t *testing.T, owner testUser, name string, members ...testUser) *api.Group {
	t.Helper()
	ids := make([]string, len(members))
	for i, m := range members {
		ids[i] = m.ID
	}
	resp, err := e.groups.CreateGroup(context.Background(), authed(owner, &api.CreateGroupRequest{
		Name:      name,
		MemberIDs: ids,
	}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	return resp.Msg.Group
}

// authed wraps msg in a request carrying the user's bearer token.
func authed[T any](user testUser, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	req.Header().Set("Authorization", "Bearer "+user.Token)
	return req
}

func assertCode(t *testing.T, err error, want connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", want)
	}
	if got := connect.CodeOf(err); got != want {
		t.Fatalf("expected code %v, got %v (%v)", want, got, err)
	}
}
