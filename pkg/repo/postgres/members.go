package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sulbao/community/pkg/board"
	"github.com/sulbao/community/pkg/member"
)

const memberColumns = `id, login_id, password, gender, role, enabled, pro_status, sell_status, profile_name, created_at, updated_at`

// Member operations

func (r *Repository) CreateMember(ctx context.Context, m *member.Member) error {
	query := `
		INSERT INTO members (` + memberColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.db.Exec(ctx, query,
		m.ID, m.LoginID, m.PasswordHash, m.Gender, string(m.Role), m.Enabled,
		string(m.ProStatus), string(m.SellStatus), m.ProfileName, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("create member", err)
	}
	return nil
}

func (r *Repository) GetMember(ctx context.Context, id uuid.UUID) (*member.Member, error) {
	return r.getMember(ctx, `SELECT `+memberColumns+` FROM members WHERE id = $1`, id)
}

func (r *Repository) GetMemberByLoginID(ctx context.Context, loginID string) (*member.Member, error) {
	return r.getMember(ctx, `SELECT `+memberColumns+` FROM members WHERE login_id = $1`, loginID)
}

func (r *Repository) getMember(ctx context.Context, query string, arg interface{}) (*member.Member, error) {
	m, err := scanMember(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, member.ErrMemberNotFound
		}
		return nil, r.handlePostgresError("get member", err)
	}
	return m, nil
}

func (r *Repository) UpdateMember(ctx context.Context, m *member.Member) error {
	return updateMember(ctx, r.db, m, r.handlePostgresError)
}

// UpdateMembers applies every update in one transaction
func (r *Repository) UpdateMembers(ctx context.Context, members []*member.Member) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return r.handlePostgresError("begin update members", err)
	}
	defer tx.Rollback(ctx)

	for _, m := range members {
		if err := updateMember(ctx, tx, m, r.handlePostgresError); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return r.handlePostgresError("commit update members", err)
	}
	return nil
}

func updateMember(ctx context.Context, db DBTX, m *member.Member, handle func(string, error) error) error {
	query := `
		UPDATE members SET
			login_id = $2, password = $3, gender = $4, role = $5, enabled = $6,
			pro_status = $7, sell_status = $8, profile_name = $9, updated_at = $10
		WHERE id = $1`

	tag, err := db.Exec(ctx, query,
		m.ID, m.LoginID, m.PasswordHash, m.Gender, string(m.Role), m.Enabled,
		string(m.ProStatus), string(m.SellStatus), m.ProfileName, m.UpdatedAt)
	if err != nil {
		return handle("update member", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update member %s: %w", m.ID, member.ErrMemberNotFound)
	}
	return nil
}

func (r *Repository) ListMembers(ctx context.Context, filter member.ListFilter) ([]*member.Member, error) {
	query := `
		SELECT ` + memberColumns + ` FROM members
		WHERE ($1 = FALSE OR pro_status <> 'NONE')
		  AND ($2 = FALSE OR sell_status <> 'NONE')
		ORDER BY created_at, login_id`

	rows, err := r.db.Query(ctx, query, filter.ProApplicants, filter.SellApplicants)
	if err != nil {
		return nil, r.handlePostgresError("list members", err)
	}
	defer rows.Close()

	members := make([]*member.Member, 0)
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, r.handlePostgresError("list members", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("list members", err)
	}
	return members, nil
}

// GetUser exposes members as board authors
func (r *Repository) GetUser(ctx context.Context, id uuid.UUID) (*board.User, error) {
	var u board.User
	err := r.db.QueryRow(ctx, `SELECT id, login_id, profile_name FROM members WHERE id = $1`, id).
		Scan(&u.ID, &u.LoginID, &u.ProfileName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, board.ErrUserNotFound
		}
		return nil, r.handlePostgresError("get user", err)
	}
	return &u, nil
}

func scanMember(row pgx.Row) (*member.Member, error) {
	var (
		m                           member.Member
		role, proStatus, sellStatus string
	)
	err := row.Scan(
		&m.ID, &m.LoginID, &m.PasswordHash, &m.Gender, &role, &m.Enabled,
		&proStatus, &sellStatus, &m.ProfileName, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	m.Role = member.Role(role)
	m.ProStatus = member.ApprovalStatus(proStatus)
	m.SellStatus = member.ApprovalStatus(sellStatus)
	return &m, nil
}
