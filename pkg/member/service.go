package member

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for member persistence
type Repository interface {
	// CreateMember returns ErrDuplicateLoginID for a taken login id
	CreateMember(ctx context.Context, m *Member) error
	GetMember(ctx context.Context, id uuid.UUID) (*Member, error)
	GetMemberByLoginID(ctx context.Context, loginID string) (*Member, error)
	UpdateMember(ctx context.Context, m *Member) error

	// UpdateMembers stores every member or none of them
	UpdateMembers(ctx context.Context, members []*Member) error

	// ListMembers returns matching members, oldest first
	ListMembers(ctx context.Context, filter ListFilter) ([]*Member, error)
}

// Service defines the account operations
type Service interface {
	RegisterMember(ctx context.Context, req RegisterRequest) (*Member, error)
	Authenticate(ctx context.Context, loginID, password string) (*Member, error)
	GetMember(ctx context.Context, id uuid.UUID) (*Member, error)

	ApplyPro(ctx context.Context, id uuid.UUID) error
	ApplySeller(ctx context.Context, id uuid.UUID) error

	// Admin lists
	ListMembers(ctx context.Context) ([]*Member, error)
	ListProMembers(ctx context.Context) ([]*Member, error)
	ListSellers(ctx context.Context) ([]*Member, error)

	// Admin batch updates
	UpdateEnabled(ctx context.Context, ids []uuid.UUID, listType ListType, enabled bool) error
	UpdateProStatus(ctx context.Context, ids []uuid.UUID, listType ListType, status ApprovalStatus) error
	UpdateSellStatus(ctx context.Context, ids []uuid.UUID, listType ListType, status ApprovalStatus) error
}

// RegisterRequest contains the sign-up form
type RegisterRequest struct {
	LoginID  string `json:"login_id"`
	Password string `json:"password"`
	Gender   string `json:"gender"`
}
