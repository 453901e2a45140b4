package api

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
)

const (
	// GroupServiceName is the fully-qualified name of the GroupService.
	GroupServiceName = "eatnsplit.v1.GroupService"

	GroupServiceCreateGroupProcedure     = "/eatnsplit.v1.GroupService/CreateGroup"
	GroupServiceListGroupsProcedure      = "/eatnsplit.v1.GroupService/ListGroups"
	GroupServiceGetGroupProcedure        = "/eatnsplit.v1.GroupService/GetGroup"
	GroupServiceAddGroupMembersProcedure = "/eatnsplit.v1.GroupService/AddGroupMembers"
)

// GroupServiceHandler is implemented by the server side of the GroupService.
type GroupServiceHandler interface {
	CreateGroup(context.Context, *connect.Request[CreateGroupRequest]) (*connect.Response[CreateGroupResponse], error)
	ListGroups(context.Context, *connect.Request[ListGroupsRequest]) (*connect.Response[ListGroupsResponse], error)
	GetGroup(context.Context, *connect.Request[GetGroupRequest]) (*connect.Response[GetGroupResponse], error)
	AddGroupMembers(context.Context, *connect.Request[AddGroupMembersRequest]) (*connect.Response[AddGroupMembersResponse], error)
}

// NewGroupServiceHandler builds an HTTP handler for the GroupService.
func NewGroupServiceHandler(svc GroupServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{WithJSON()}, opts...)
	createGroup := connect.NewUnaryHandler(GroupServiceCreateGroupProcedure, svc.CreateGroup, opts...)
	listGroups := connect.NewUnaryHandler(GroupServiceListGroupsProcedure, svc.ListGroups, opts...)
	getGroup := connect.NewUnaryHandler(GroupServiceGetGroupProcedure, svc.GetGroup, opts...)
	addGroupMembers := connect.NewUnaryHandler(GroupServiceAddGroupMembersProcedure, svc.AddGroupMembers, opts...)

	return "/" + GroupServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case GroupServiceCreateGroupProcedure:
			createGroup.ServeHTTP(w, r)
		case GroupServiceListGroupsProcedure:
			listGroups.ServeHTTP(w, r)
		case GroupServiceGetGroupProcedure:
			getGroup.ServeHTTP(w, r)
		case GroupServiceAddGroupMembersProcedure:
			addGroupMembers.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// GroupServiceClient is a client for the GroupService.
type GroupServiceClient interface {
	CreateGroup(context.Context, *connect.Request[CreateGroupRequest]) (*connect.Response[CreateGroupResponse], error)
	ListGroups(context.Context, *connect.Request[ListGroupsRequest]) (*connect.Response[ListGroupsResponse], error)
	GetGroup(context.Context, *connect.Request[GetGroupRequest]) (*connect.Response[GetGroupResponse], error)
	AddGroupMembers(context.Context, *connect.Request[AddGroupMembersRequest]) (*connect.Response[AddGroupMembersResponse], error)
}

// NewGroupServiceClient constructs a client for the GroupService at baseURL.
func NewGroupServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) GroupServiceClient {
	opts = append([]connect.ClientOption{WithJSON()}, opts...)
	return &groupServiceClient{
		createGroup:     connect.NewClient[CreateGroupRequest, CreateGroupResponse](httpClient, baseURL+GroupServiceCreateGroupProcedure, opts...),
		listGroups:      connect.NewClient[ListGroupsRequest, ListGroupsResponse](httpClient, baseURL+GroupServiceListGroupsProcedure, opts...),
		getGroup:        connect.NewClient[GetGroupRequest, GetGroupResponse](httpClient, baseURL+GroupServiceGetGroupProcedure, opts...),
		addGroupMembers: connect.NewClient[AddGroupMembersRequest, AddGroupMembersResponse](httpClient, baseURL+GroupServiceAddGroupMembersProcedure, opts...),
	}
}

type groupServiceClient struct {
	createGroup     *connect.Client[CreateGroupRequest, CreateGroupResponse]
	listGroups      *connect.Client[ListGroupsRequest, ListGroupsResponse]
	getGroup        *connect.Client[GetGroupRequest, GetGroupResponse]
	addGroupMembers *connect.Client[AddGroupMembersRequest, AddGroupMembersResponse]
}

func (c *groupServiceClient) CreateGroup(ctx context.Context, req *connect.Request[CreateGroupRequest]) (*connect.Response[CreateGroupResponse], error) {
	return c.createGroup.CallUnary(ctx, req)
}

func (c *groupServiceClient) ListGroups(ctx context.Context, req *connect.Request[ListGroupsRequest]) (*connect.Response[ListGroupsResponse], error) {
	return c.listGroups.CallUnary(ctx, req)
}

func (c *groupServiceClient) GetGroup(ctx context.Context, req *connect.Request[GetGroupRequest]) (*connect.Response[GetGroupResponse], error) {
	return c.getGroup.CallUnary(ctx, req)
}

func (c *groupServiceClient) AddGroupMembers(ctx context.Context, req *connect.Request[AddGroupMembersRequest]) (*connect.Response[AddGroupMembersResponse], error) {
	return c.addGroupMembers.CallUnary(ctx, req)
}
