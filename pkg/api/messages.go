package api

// User is the public view of an account.
type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CreatedAt int64  `json:"createdAt,omitempty"`
}

// Member is a group member with a display name resolved from the user store.
// Name is empty for IDs that do not belong to a registered user.
type Member struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

type Group struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Members   []*Member `json:"members"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt int64     `json:"createdAt"`
}

// SplitAmount is one member's share of an expense.
type SplitAmount struct {
	Member string  `json:"member"`
	Amount float64 `json:"amount"`
}

type Expense struct {
	ID              string         `json:"id"`
	GroupID         string         `json:"groupId"`
	Name            string         `json:"name"`
	Amount          float64        `json:"amount"`
	PaidBy          string         `json:"paidBy"`
	MembersInvolved []string       `json:"membersInvolved"`
	Category        string         `json:"category"`
	SplitPolicy     string         `json:"splitPolicy"`
	Splits          []*SplitAmount `json:"splits"`
	CreatedBy       string         `json:"createdBy"`
	CreatedAt       int64          `json:"createdAt"`
}

// MemberBalance is a member's net position in a group.
// Positive NetAmount means the group owes the member.
type MemberBalance struct {
	Member    string  `json:"member"`
	NetAmount float64 `json:"netAmount"`
	TotalPaid float64 `json:"totalPaid"`
	TotalOwed float64 `json:"totalOwed"`
}

// DebtEdge is a suggested payment from one member to another.
type DebtEdge struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Amount float64 `json:"amount"`
}

// Auth

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

type GetProfileRequest struct{}

type GetProfileResponse struct {
	User   *User    `json:"user"`
	Groups []*Group `json:"groups"`
}

// Groups

type CreateGroupRequest struct {
	Name      string   `json:"name"`
	MemberIDs []string `json:"members"`
}

type CreateGroupResponse struct {
	Group *Group `json:"group"`
}

type ListGroupsRequest struct{}

type ListGroupsResponse struct {
	Groups []*Group `json:"groups"`
}

type GetGroupRequest struct {
	GroupID string `json:"groupId"`
}

type GetGroupResponse struct {
	Group *Group `json:"group"`
}

type AddGroupMembersRequest struct {
	GroupID   string   `json:"groupId"`
	MemberIDs []string `json:"members"`
}

type AddGroupMembersResponse struct {
	Group *Group `json:"group"`
}

// Expenses

// CalculateSplitRequest previews the splits of an expense without storing it.
type CalculateSplitRequest struct {
	Amount          float64        `json:"amount"`
	MembersInvolved []string       `json:"membersInvolved"`
	SplitPolicy     string         `json:"splitPolicy"`
	CustomSplits    []*SplitAmount `json:"customSplits,omitempty"`
}

type CalculateSplitResponse struct {
	Splits []*SplitAmount `json:"splits"`
	// Total is the sum of the rounded splits; it can differ from the
	// requested amount by the rounding of equal shares.
	Total float64 `json:"total"`
}

type AddExpenseRequest struct {
	GroupID         string         `json:"groupId"`
	Name            string         `json:"name"`
	Amount          float64        `json:"amount"`
	PaidBy          string         `json:"paidBy"`
	MembersInvolved []string       `json:"membersInvolved"`
	Category        string         `json:"category,omitempty"`
	SplitPolicy     string         `json:"splitPolicy,omitempty"`
	CustomSplits    []*SplitAmount `json:"customSplits,omitempty"`
}

type AddExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type ListGroupExpensesRequest struct {
	GroupID string `json:"groupId"`
}

type ListGroupExpensesResponse struct {
	Expenses []*Expense `json:"expenses"`
}

type GetGroupBalancesRequest struct {
	GroupID string `json:"groupId"`
}

type GetGroupBalancesResponse struct {
	Balances []*MemberBalance `json:"balances"`
	Debts    []*DebtEdge      `json:"debts"`
}
