// Package member manages accounts of the community: registration, login and
// the admin workflows that enable accounts and approve pro and seller
// applications.
package member

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role is the authorization role of a member
type Role string

const (
	RoleMember Role = "MEMBER"
	RolePro    Role = "PRO"
	RoleSeller Role = "SELLER"
	RoleAdmin  Role = "ADMIN"
)

// ApprovalStatus tracks a pro or seller application
type ApprovalStatus string

const (
	StatusNone     ApprovalStatus = "NONE"
	StatusPending  ApprovalStatus = "PENDING"
	StatusApproved ApprovalStatus = "APPROVED"
	StatusRejected ApprovalStatus = "REJECTED"
)

// ParseApprovalStatus validates a status value, case-insensitively
func ParseApprovalStatus(s string) (ApprovalStatus, error) {
	switch status := ApprovalStatus(strings.ToUpper(strings.TrimSpace(s))); status {
	case StatusNone, StatusPending, StatusApproved, StatusRejected:
		return status, nil
	}
	return "", fmt.Errorf("%w: unknown status %q", ErrInvalidRequest, s)
}

// ListType names the admin list a batch of member ids was selected from
type ListType string

const (
	ListMembers ListType = "member"
	ListPro     ListType = "pro"
	ListSeller  ListType = "seller"
)

// ParseListType validates a list type value
func ParseListType(s string) (ListType, error) {
	switch lt := ListType(strings.ToLower(strings.TrimSpace(s))); lt {
	case ListMembers, ListPro, ListSeller:
		return lt, nil
	}
	return "", fmt.Errorf("%w: unknown list type %q", ErrInvalidRequest, s)
}

// ParseAvailable reads the enabled flag of an admin form: any strconv.ParseBool
// value or Y/N.
func ParseAvailable(s string) (bool, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "Y":
		return true, nil
	case "N":
		return false, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return false, fmt.Errorf("%w: invalid available flag %q", ErrInvalidRequest, s)
	}
	return b, nil
}

// Member represents an account
type Member struct {
	ID           uuid.UUID      `json:"id"`
	LoginID      string         `json:"login_id"`
	PasswordHash string         `json:"-"`
	Gender       string         `json:"gender,omitempty"`
	Role         Role           `json:"role"`
	Enabled      bool           `json:"enabled"`
	ProStatus    ApprovalStatus `json:"pro_status"`
	SellStatus   ApprovalStatus `json:"sell_status"`
	ProfileName  string         `json:"profile_name"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// InList reports whether the member appears on the given admin list
func (m *Member) InList(lt ListType) bool {
	switch lt {
	case ListPro:
		return m.ProStatus != StatusNone
	case ListSeller:
		return m.SellStatus != StatusNone
	}
	return true
}

// ListFilter selects members for the admin lists
type ListFilter struct {
	// ProApplicants keeps members whose ProStatus is not NONE
	ProApplicants bool
	// SellApplicants keeps members whose SellStatus is not NONE
	SellApplicants bool
}

// Matches reports whether m passes the filter
func (f ListFilter) Matches(m *Member) bool {
	if f.ProApplicants && m.ProStatus == StatusNone {
		return false
	}
	if f.SellApplicants && m.SellStatus == StatusNone {
		return false
	}
	return true
}

// ParseIDList splits a comma separated list of member ids
func ParseIDList(s string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := uuid.Parse(part)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid member id %q", ErrInvalidRequest, part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
