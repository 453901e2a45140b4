package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/eatnsplit/internal/middleware"
	"github.com/mmynk/eatnsplit/internal/models"
	"github.com/mmynk/eatnsplit/internal/storage"
	"github.com/mmynk/eatnsplit/pkg/api"
)

// GroupService implements the Connect GroupService
type GroupService struct {
	store storage.Store
}

var _ api.GroupServiceHandler = (*GroupService)(nil)

// NewGroupService creates a new GroupService with the given storage backend.
func NewGroupService(store storage.Store) *GroupService {
	return &GroupService{store: store}
}

// CreateGroup creates a new group. The caller is always a member.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	userID := middleware.GetUserID(ctx)
	name := strings.TrimSpace(req.Msg.Name)
	slog.Info("CreateGroup request received",
		"name", name,
		"members_count", len(req.Msg.MemberIDs),
		"user_id", userID,
	)

	if name == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("group name required"))
	}

	members := uniqueMembers(append([]string{userID}, req.Msg.MemberIDs...))
	users, err := s.resolveMembers(ctx, members)
	if err != nil {
		slog.Warn("CreateGroup rejected", "error", err)
		return nil, toConnectError(err)
	}

	group := &models.Group{
		Name:      name,
		Members:   members,
		CreatedBy: userID,
	}
	if err := s.store.CreateGroup(ctx, group); err != nil {
		slog.Error("CreateGroup failed", "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	slog.Info("Group created", "group_id", group.ID)

	return connect.NewResponse(&api.CreateGroupResponse{
		Group: toAPIGroup(group, users),
	}), nil
}

// GetGroup retrieves a group the caller belongs to.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	slog.Info("GetGroup request received", "group_id", req.Msg.GroupID)

	group, err := groupForMember(ctx, s.store, req.Msg.GroupID, middleware.GetUserID(ctx))
	if err != nil {
		slog.Warn("GetGroup failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	users, err := s.store.GetUsersByIDs(ctx, group.Members)
	if err != nil {
		slog.Error("GetGroup failed to resolve members", "group_id", group.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	slog.Info("GetGroup successful", "group_id", group.ID, "name", group.Name)

	return connect.NewResponse(&api.GetGroupResponse{
		Group: toAPIGroup(group, users),
	}), nil
}

// ListGroups retrieves the groups the caller belongs to.
func (s *GroupService) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	userID := middleware.GetUserID(ctx)
	slog.Info("ListGroups request received", "user_id", userID)

	groups, err := listGroupsWithNames(ctx, s.store, userID)
	if err != nil {
		slog.Error("ListGroups failed", "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	slog.Info("ListGroups successful", "count", len(groups))

	return connect.NewResponse(&api.ListGroupsResponse{
		Groups: groups,
	}), nil
}

// AddGroupMembers adds registered users to a group the caller belongs to.
// Users already in the group are ignored.
func (s *GroupService) AddGroupMembers(ctx context.Context, req *connect.Request[api.AddGroupMembersRequest]) (*connect.Response[api.AddGroupMembersResponse], error) {
	slog.Info("AddGroupMembers request received",
		"group_id", req.Msg.GroupID,
		"members_count", len(req.Msg.MemberIDs),
	)

	group, err := groupForMember(ctx, s.store, req.Msg.GroupID, middleware.GetUserID(ctx))
	if err != nil {
		slog.Warn("AddGroupMembers failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	newMembers := uniqueMembers(req.Msg.MemberIDs)
	if len(newMembers) == 0 {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("at least one member required"))
	}
	if _, err := s.resolveMembers(ctx, newMembers); err != nil {
		slog.Warn("AddGroupMembers rejected", "group_id", group.ID, "error", err)
		return nil, toConnectError(err)
	}

	if err := s.store.AddGroupMembers(ctx, group.ID, newMembers); err != nil {
		slog.Error("AddGroupMembers failed", "group_id", group.ID, "error", err)
		return nil, toConnectError(err)
	}

	updated, err := s.store.GetGroup(ctx, group.ID)
	if err != nil {
		slog.Error("Failed to fetch updated group", "group_id", group.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	users, err := s.store.GetUsersByIDs(ctx, updated.Members)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	slog.Info("Group members added", "group_id", group.ID, "members_count", len(updated.Members))

	return connect.NewResponse(&api.AddGroupMembersResponse{
		Group: toAPIGroup(updated, users),
	}), nil
}

// resolveMembers loads the users behind ids and fails if any is not registered.
func (s *GroupService) resolveMembers(ctx context.Context, ids []string) (map[string]*models.User, error) {
	users, err := s.store.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	var unknown []string
	for _, id := range ids {
		if _, ok := users[id]; !ok {
			unknown = append(unknown, id)
		}
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("%w: %s", errUnknownMembers, strings.Join(unknown, ", "))
	}
	return users, nil
}

// groupForMember loads a group and checks that userID belongs to it.
func groupForMember(ctx context.Context, store storage.Store, groupID, userID string) (*models.Group, error) {
	if groupID == "" {
		return nil, errGroupIDRequired
	}
	group, err := store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(userID) {
		return nil, fmt.Errorf("group %s: %w", groupID, errNotGroupMember)
	}
	return group, nil
}

// listGroupsWithNames returns the user's groups with member names resolved
// in a single user lookup.
func listGroupsWithNames(ctx context.Context, store storage.Store, userID string) ([]*api.Group, error) {
	groups, err := store.ListGroupsByMember(ctx, userID)
	if err != nil {
		return nil, err
	}

	var ids []string
	for _, g := range groups {
		ids = append(ids, g.Members...)
	}
	users, err := store.GetUsersByIDs(ctx, uniqueMembers(ids))
	if err != nil {
		return nil, err
	}

	out := make([]*api.Group, len(groups))
	for i, g := range groups {
		out[i] = toAPIGroup(g, users)
	}
	return out, nil
}

// uniqueMembers trims IDs, drops empty ones and removes duplicates, keeping
// first-seen order.
func uniqueMembers(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
