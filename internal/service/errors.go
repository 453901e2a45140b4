package service

import (
	"errors"

	"connectrpc.com/connect"

	"github.com/mmynk/eatnsplit/internal/auth"
	"github.com/mmynk/eatnsplit/internal/calculator"
	"github.com/mmynk/eatnsplit/internal/storage"
)

var (
	errGroupIDRequired = errors.New("group_id required")
	errNotGroupMember  = errors.New("not a member of this group")
	errGroupNotFound   = errors.New("group not found")
	errUnknownMembers  = errors.New("members must be registered users")
)

// codeFor maps domain errors to Connect codes. Unrecognized errors are internal.
func codeFor(err error) connect.Code {
	switch {
	case errors.Is(err, calculator.ErrMalformedExpense):
		return connect.CodeInternal
	case errors.Is(err, calculator.ErrInvalidAmount),
		errors.Is(err, calculator.ErrInvalidMembers),
		errors.Is(err, calculator.ErrInvalidPolicy),
		errors.Is(err, calculator.ErrSplitMismatch),
		errors.Is(err, calculator.ErrSplitSumMismatch),
		errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, auth.ErrInvalidEmail),
		errors.Is(err, auth.ErrInvalidName),
		errors.Is(err, errGroupIDRequired),
		errors.Is(err, errUnknownMembers):
		return connect.CodeInvalidArgument
	case errors.Is(err, auth.ErrEmailExists):
		return connect.CodeAlreadyExists
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidToken):
		return connect.CodeUnauthenticated
	case errors.Is(err, errNotGroupMember):
		return connect.CodePermissionDenied
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, errGroupNotFound):
		return connect.CodeNotFound
	default:
		return connect.CodeInternal
	}
}

func toConnectError(err error) *connect.Error {
	return connect.NewError(codeFor(err), err)
}
