package member

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrMemberNotFound indicates no member has the given id or login id
	ErrMemberNotFound = errors.New("member not found")

	// ErrDuplicateLoginID indicates the login id is already registered
	ErrDuplicateLoginID = errors.New("login id already registered")

	// ErrInvalidCredentials indicates a wrong login id or password
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrMemberDisabled indicates the account was disabled by an admin
	ErrMemberDisabled = errors.New("member disabled")

	// ErrEmptyMemberList indicates an admin batch without ids
	ErrEmptyMemberList = errors.New("member list is empty")

	// ErrInvalidRequest indicates malformed input
	ErrInvalidRequest = errors.New("invalid request")
)

// MemberError represents an error related to a single member
type MemberError struct {
	MemberID uuid.UUID
	Op       string
	Err      error
}

func (e *MemberError) Error() string {
	return fmt.Sprintf("member operation %s failed for member %s: %v", e.Op, e.MemberID, e.Err)
}

func (e *MemberError) Unwrap() error {
	return e.Err
}
