package middleware

import (
	"context"
	"errors"
	"testing"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/eatnsplit/internal/auth"
	"github.com/mmynk/eatnsplit/internal/metrics"
	"github.com/mmynk/eatnsplit/internal/models"
	"github.com/mmynk/eatnsplit/pkg/api"
)

func TestRequireAuth(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret-0123456789", time.Hour)
	token, err := jwtManager.Generate(&models.User{ID: "user-1", Email: "a@example.com", Name: "Alice"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	tests := []struct {
		name       string
		header     string
		wantUserID string
		wantCode   connect.Code
	}{
		{name: "valid bearer token", header: "Bearer " + token, wantUserID: "user-1"},
		{name: "lowercase scheme", header: "bearer " + token, wantUserID: "user-1"},
		{name: "missing header", header: "", wantCode: connect.CodeUnauthenticated},
		{name: "wrong scheme", header: "Basic " + token, wantCode: connect.CodeUnauthenticated},
		{name: "empty token", header: "Bearer ", wantCode: connect.CodeUnauthenticated},
		{name: "garbage token", header: "Bearer not-a-jwt", wantCode: connect.CodeUnauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUserID string
			next := connect.UnaryFunc(func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
				gotUserID = GetUserID(ctx)
				return connect.NewResponse(&api.GetProfileResponse{}), nil
			})

			req := connect.NewRequest(&api.GetProfileRequest{})
			if tt.header != "" {
				req.Header().Set("Authorization", tt.header)
			}

			_, err := RequireAuth(jwtManager)(next)(context.Background(), req)
			if tt.wantCode != 0 {
				if connect.CodeOf(err) != tt.wantCode {
					t.Fatalf("expected %v, got %v", tt.wantCode, err)
				}
				if gotUserID != "" {
					t.Errorf("handler should not run, saw user %q", gotUserID)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if gotUserID != tt.wantUserID {
				t.Errorf("user ID = %q, want %q", gotUserID, tt.wantUserID)
			}
		})
	}
}

func TestGetUserID_Empty(t *testing.T) {
	if got := GetUserID(context.Background()); got != "" {
		t.Errorf("expected empty user ID, got %q", got)
	}
	if got := GetUserID(WithUserID(context.Background(), "u1")); got != "u1" {
		t.Errorf("expected u1, got %q", got)
	}
}

func TestLoggingAndMetricsInterceptors_PassThrough(t *testing.T) {
	wantErr := connect.NewError(connect.CodeInvalidArgument, errors.New("bad input"))
	next := connect.UnaryFunc(func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		return nil, wantErr
	})

	handler := MetricsInterceptor(metrics.New())(LoggingInterceptor()(next))
	_, err := handler(context.Background(), connect.NewRequest(&api.ListGroupsRequest{}))
	if !errors.Is(err, wantErr) {
		t.Errorf("expected error to pass through unchanged, got %v", err)
	}
}

func TestIsServerFault(t *testing.T) {
	if !isServerFault(connect.CodeInternal) {
		t.Error("internal should be a server fault")
	}
	if isServerFault(connect.CodeNotFound) {
		t.Error("not found should not be a server fault")
	}
}
