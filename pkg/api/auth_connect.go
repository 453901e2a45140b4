package api

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
)

const (
	// AuthServiceName is the fully-qualified name of the AuthService.
	AuthServiceName = "eatnsplit.v1.AuthService"

	AuthServiceRegisterProcedure   = "/eatnsplit.v1.AuthService/Register"
	AuthServiceLoginProcedure      = "/eatnsplit.v1.AuthService/Login"
	AuthServiceGetProfileProcedure = "/eatnsplit.v1.AuthService/GetProfile"
)

// AuthServiceHandler is implemented by the server side of the AuthService.
type AuthServiceHandler interface {
	Register(context.Context, *connect.Request[RegisterRequest]) (*connect.Response[RegisterResponse], error)
	Login(context.Context, *connect.Request[LoginRequest]) (*connect.Response[LoginResponse], error)
	GetProfile(context.Context, *connect.Request[GetProfileRequest]) (*connect.Response[GetProfileResponse], error)
}

// NewAuthServiceHandler builds an HTTP handler for the AuthService.
// It returns the path on which to mount the handler and the handler itself.
func NewAuthServiceHandler(svc AuthServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{WithJSON()}, opts...)
	register := connect.NewUnaryHandler(AuthServiceRegisterProcedure, svc.Register, opts...)
	login := connect.NewUnaryHandler(AuthServiceLoginProcedure, svc.Login, opts...)
	getProfile := connect.NewUnaryHandler(AuthServiceGetProfileProcedure, svc.GetProfile, opts...)

	return "/" + AuthServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case AuthServiceRegisterProcedure:
			register.ServeHTTP(w, r)
		case AuthServiceLoginProcedure:
			login.ServeHTTP(w, r)
		case AuthServiceGetProfileProcedure:
			getProfile.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// AuthServiceClient is a client for the AuthService.
type AuthServiceClient interface {
	Register(context.Context, *connect.Request[RegisterRequest]) (*connect.Response[RegisterResponse], error)
	Login(context.Context, *connect.Request[LoginRequest]) (*connect.Response[LoginResponse], error)
	GetProfile(context.Context, *connect.Request[GetProfileRequest]) (*connect.Response[GetProfileResponse], error)
}

// NewAuthServiceClient constructs a client for the AuthService at baseURL
// (for example, http://localhost:8080).
func NewAuthServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) AuthServiceClient {
	opts = append([]connect.ClientOption{WithJSON()}, opts...)
	return &authServiceClient{
		register:   connect.NewClient[RegisterRequest, RegisterResponse](httpClient, baseURL+AuthServiceRegisterProcedure, opts...),
		login:      connect.NewClient[LoginRequest, LoginResponse](httpClient, baseURL+AuthServiceLoginProcedure, opts...),
		getProfile: connect.NewClient[GetProfileRequest, GetProfileResponse](httpClient, baseURL+AuthServiceGetProfileProcedure, opts...),
	}
}

type authServiceClient struct {
	register   *connect.Client[RegisterRequest, RegisterResponse]
	login      *connect.Client[LoginRequest, LoginResponse]
	getProfile *connect.Client[GetProfileRequest, GetProfileResponse]
}

func (c *authServiceClient) Register(ctx context.Context, req *connect.Request[RegisterRequest]) (*connect.Response[RegisterResponse], error) {
	return c.register.CallUnary(ctx, req)
}

func (c *authServiceClient) Login(ctx context.Context, req *connect.Request[LoginRequest]) (*connect.Response[LoginResponse], error) {
	return c.login.CallUnary(ctx, req)
}

func (c *authServiceClient) GetProfile(ctx context.Context, req *connect.Request[GetProfileRequest]) (*connect.Response[GetProfileResponse], error) {
	return c.getProfile.CallUnary(ctx, req)
}
