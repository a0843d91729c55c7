package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/jwtauth"
	"github.com/google/uuid"
	"github.com/sulbao/community/pkg/member"
)

const (
	claimUserID = "user_id"
	claimRole   = "role"
)

// Auth issues and verifies HS256 bearer tokens
type Auth struct {
	jwt *jwtauth.JWTAuth
	ttl time.Duration
	now func() time.Time
}

// NewAuth creates an Auth signing with secret. Tokens expire after ttl.
func NewAuth(secret string, ttl time.Duration) *Auth {
	return &Auth{
		jwt: jwtauth.New("HS256", []byte(secret), nil),
		ttl: ttl,
		now: time.Now,
	}
}

// IssueToken creates a signed token carrying the member id and role
func (a *Auth) IssueToken(m *member.Member) (string, error) {
	now := a.now()
	claims := map[string]interface{}{
		claimUserID: m.ID.String(),
		claimRole:   string(m.Role),
	}
	jwtauth.SetIssuedAt(claims, now)
	jwtauth.SetExpiry(claims, now.Add(a.ttl))

	_, token, err := a.jwt.Encode(claims)
	if err != nil {
		return "", fmt.Errorf("encode token: %w", err)
	}
	return token, nil
}

// Verifier finds and validates the bearer token of a request.
// Requests without a valid token are rejected with 401.
func (a *Auth) Verifier() func(http.Handler) http.Handler {
	verify := jwtauth.Verifier(a.jwt)
	return func(next http.Handler) http.Handler {
		return verify(jwtauth.Authenticator(next))
	}
}

// Principal is the authenticated caller
type Principal struct {
	UserID uuid.UUID
	Role   member.Role
}

// IsAdmin reports whether the caller holds the admin role
func (p Principal) IsAdmin() bool {
	return p.Role == member.RoleAdmin
}

// CanModify reports whether the caller may change content owned by authorID
func (p Principal) CanModify(authorID uuid.UUID) bool {
	return p.IsAdmin() || p.UserID == authorID
}

// PrincipalFromContext reads the caller out of the verified token claims
func PrincipalFromContext(ctx context.Context) (Principal, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return Principal{}, err
	}

	raw, _ := claims[claimUserID].(string)
	id, err := uuid.Parse(raw)
	if err != nil {
		return Principal{}, fmt.Errorf("invalid %s claim: %w", claimUserID, err)
	}
	role, _ := claims[claimRole].(string)

	return Principal{UserID: id, Role: member.Role(role)}, nil
}

// RequireAdmin rejects callers without the admin role. It must run after Verifier.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, err := PrincipalFromContext(r.Context())
		if err != nil {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		if !p.IsAdmin() {
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
