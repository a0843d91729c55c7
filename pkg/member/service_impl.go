package member

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type service struct {
	repository Repository
	cost       int
	logger     *slog.Logger
	now        func() time.Time
}

// Option configures the member service
type Option func(*service)

// WithRepository sets the member repository
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repository = repo
	}
}

// WithPasswordCost sets the bcrypt cost. Tests use bcrypt.MinCost.
func WithPasswordCost(cost int) Option {
	return func(s *service) {
		s.cost = cost
	}
}

// WithLogger sets the structured logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *service) {
		s.logger = logger
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		s.now = now
	}
}

// New creates a member service
func New(options ...Option) (Service, error) {
	s := &service{
		cost:   bcrypt.DefaultCost,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, option := range options {
		option(s)
	}

	if s.repository == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if s.cost < bcrypt.MinCost || s.cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range", s.cost)
	}
	return s, nil
}

func (s *service) RegisterMember(ctx context.Context, req RegisterRequest) (*Member, error) {
	loginID := strings.TrimSpace(req.LoginID)
	if loginID == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: login id and password are required", ErrInvalidRequest)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, fmt.Errorf("%w: password longer than 72 bytes", ErrInvalidRequest)
	}
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	m := &Member{
		ID:           uuid.New(),
		LoginID:      loginID,
		PasswordHash: string(hash),
		Gender:       req.Gender,
		Role:         RoleMember,
		Enabled:      true,
		ProStatus:    StatusNone,
		SellStatus:   StatusNone,
		ProfileName:  loginID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repository.CreateMember(ctx, m); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "member registered", "member_id", m.ID, "login_id", m.LoginID)
	return m, nil
}

// EnsureAdmin creates the admin account when loginID is not registered yet.
// An existing account is left untouched.
func EnsureAdmin(ctx context.Context, repo Repository, loginID, password string) error {
	if _, err := repo.GetMemberByLoginID(ctx, loginID); err == nil {
		return nil
	} else if !errors.Is(err, ErrMemberNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	err = repo.CreateMember(ctx, &Member{
		ID:           uuid.New(),
		LoginID:      loginID,
		PasswordHash: string(hash),
		Role:         RoleAdmin,
		Enabled:      true,
		ProStatus:    StatusNone,
		SellStatus:   StatusNone,
		ProfileName:  loginID,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if errors.Is(err, ErrDuplicateLoginID) {
		return nil
	}
	return err
}

func (s *service) Authenticate(ctx context.Context, loginID, password string) (*Member, error) {
	m, err := s.repository.GetMemberByLoginID(ctx, strings.TrimSpace(loginID))
	if err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(m.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !m.Enabled {
		return nil, ErrMemberDisabled
	}
	return m, nil
}

func (s *service) GetMember(ctx context.Context, id uuid.UUID) (*Member, error) {
	return s.repository.GetMember(ctx, id)
}

func (s *service) ApplyPro(ctx context.Context, id uuid.UUID) error {
	return s.apply(ctx, id, "apply_pro", func(m *Member) *ApprovalStatus { return &m.ProStatus })
}

func (s *service) ApplySeller(ctx context.Context, id uuid.UUID) error {
	return s.apply(ctx, id, "apply_seller", func(m *Member) *ApprovalStatus { return &m.SellStatus })
}

func (s *service) apply(ctx context.Context, id uuid.UUID, op string, field func(*Member) *ApprovalStatus) error {
	m, err := s.repository.GetMember(ctx, id)
	if err != nil {
		return err
	}

	status := field(m)
	if *status == StatusApproved {
		return &MemberError{MemberID: id, Op: op, Err: fmt.Errorf("%w: already approved", ErrInvalidRequest)}
	}
	*status = StatusPending
	m.UpdatedAt = s.now().UTC()

	if err := s.repository.UpdateMember(ctx, m); err != nil {
		return &MemberError{MemberID: id, Op: op, Err: err}
	}
	return nil
}

func (s *service) ListMembers(ctx context.Context) ([]*Member, error) {
	return s.repository.ListMembers(ctx, ListFilter{})
}

func (s *service) ListProMembers(ctx context.Context) ([]*Member, error) {
	return s.repository.ListMembers(ctx, ListFilter{ProApplicants: true})
}

func (s *service) ListSellers(ctx context.Context) ([]*Member, error) {
	return s.repository.ListMembers(ctx, ListFilter{SellApplicants: true})
}

func (s *service) UpdateEnabled(ctx context.Context, ids []uuid.UUID, listType ListType, enabled bool) error {
	return s.updateBatch(ctx, ids, listType, "update_enabled", func(m *Member) {
		m.Enabled = enabled
	})
}

func (s *service) UpdateProStatus(ctx context.Context, ids []uuid.UUID, listType ListType, status ApprovalStatus) error {
	status, err := ParseApprovalStatus(string(status))
	if err != nil {
		return err
	}
	return s.updateBatch(ctx, ids, listType, "update_pro_status", func(m *Member) {
		m.ProStatus = status
		m.Role = roleAfterDecision(m.Role, RolePro, status)
	})
}

func (s *service) UpdateSellStatus(ctx context.Context, ids []uuid.UUID, listType ListType, status ApprovalStatus) error {
	status, err := ParseApprovalStatus(string(status))
	if err != nil {
		return err
	}
	return s.updateBatch(ctx, ids, listType, "update_sell_status", func(m *Member) {
		m.SellStatus = status
		m.Role = roleAfterDecision(m.Role, RoleSeller, status)
	})
}

// roleAfterDecision grants granted on approval and takes it back otherwise.
// Admins keep their role.
func roleAfterDecision(current, granted Role, status ApprovalStatus) Role {
	if current == RoleAdmin {
		return current
	}
	if status == StatusApproved {
		return granted
	}
	if current == granted {
		return RoleMember
	}
	return current
}

func (s *service) updateBatch(ctx context.Context, ids []uuid.UUID, listType ListType, op string, mutate func(*Member)) error {
	if len(ids) == 0 {
		return ErrEmptyMemberList
	}
	if _, err := ParseListType(string(listType)); err != nil {
		return err
	}

	now := s.now().UTC()
	members := make([]*Member, 0, len(ids))
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		m, err := s.repository.GetMember(ctx, id)
		if err != nil {
			return &MemberError{MemberID: id, Op: op, Err: err}
		}
		if !m.InList(listType) {
			return &MemberError{MemberID: id, Op: op, Err: fmt.Errorf("%w: not on the %s list", ErrInvalidRequest, listType)}
		}
		mutate(m)
		m.UpdatedAt = now
		members = append(members, m)
	}

	if err := s.repository.UpdateMembers(ctx, members); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.logger.InfoContext(ctx, "members updated", "op", op, "list", listType, "count", len(members))
	return nil
}
