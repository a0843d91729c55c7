package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/sulbao/community/pkg/board"
	"github.com/sulbao/community/pkg/member"
)

// Member operations

func (r *Repository) CreateMember(ctx context.Context, m *member.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byLoginID[m.LoginID]; taken {
		return member.ErrDuplicateLoginID
	}

	memberCopy := *m
	r.members[m.ID] = &memberCopy
	r.byLoginID[m.LoginID] = m.ID
	return nil
}

func (r *Repository) GetMember(ctx context.Context, id uuid.UUID) (*member.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, exists := r.members[id]
	if !exists {
		return nil, member.ErrMemberNotFound
	}
	memberCopy := *m
	return &memberCopy, nil
}

func (r *Repository) GetMemberByLoginID(ctx context.Context, loginID string) (*member.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, exists := r.byLoginID[loginID]
	if !exists {
		return nil, member.ErrMemberNotFound
	}
	memberCopy := *r.members[id]
	return &memberCopy, nil
}

func (r *Repository) UpdateMember(ctx context.Context, m *member.Member) error {
	return r.UpdateMembers(ctx, []*member.Member{m})
}

func (r *Repository) UpdateMembers(ctx context.Context, members []*member.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range members {
		existing, exists := r.members[m.ID]
		if !exists {
			return member.ErrMemberNotFound
		}
		if existing.LoginID != m.LoginID {
			if _, taken := r.byLoginID[m.LoginID]; taken {
				return member.ErrDuplicateLoginID
			}
		}
	}

	for _, m := range members {
		delete(r.byLoginID, r.members[m.ID].LoginID)
		memberCopy := *m
		r.members[m.ID] = &memberCopy
		r.byLoginID[m.LoginID] = m.ID
	}
	return nil
}

func (r *Repository) ListMembers(ctx context.Context, filter member.ListFilter) ([]*member.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*member.Member, 0, len(r.members))
	for _, m := range r.members {
		if filter.Matches(m) {
			memberCopy := *m
			result = append(result, &memberCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].LoginID < result[j].LoginID
	})
	return result, nil
}

// GetUser exposes members as board authors
func (r *Repository) GetUser(ctx context.Context, id uuid.UUID) (*board.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, exists := r.members[id]
	if !exists {
		return nil, board.ErrUserNotFound
	}
	return &board.User{
		ID:          m.ID,
		LoginID:     m.LoginID,
		ProfileName: m.ProfileName,
	}, nil
}
