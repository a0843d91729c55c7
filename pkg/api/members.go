package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/sulbao/community/pkg/member"
)

// LoginRequest is the request body for logging in
type LoginRequest struct {
	LoginID  string `json:"login_id"`
	Password string `json:"password"`
}

// LoginResponse carries the issued bearer token
type LoginResponse struct {
	Token  string         `json:"token"`
	Member *member.Member `json:"member"`
}

// MemberHandler handles registration, login and member applications
type MemberHandler struct {
	service member.Service
	auth    *Auth
}

// NewMemberHandler creates a new member handler
func NewMemberHandler(service member.Service, auth *Auth) *MemberHandler {
	return &MemberHandler{
		service: service,
		auth:    auth,
	}
}

// PublicRoutes mounts registration and login
func (h *MemberHandler) PublicRoutes(r chi.Router) {
	r.Post("/members", h.Register)
	r.Post("/login", h.Login)
}

// MemberRoutes mounts the routes of the authenticated member
func (h *MemberHandler) MemberRoutes(r chi.Router) {
	r.Get("/members/me", h.Me)
	r.Post("/members/me/pro-application", h.ApplyPro)
	r.Post("/members/me/seller-application", h.ApplySeller)
}

// Register creates a member account
func (h *MemberHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req member.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, r, "Invalid request body", err)
		return
	}

	m, err := h.service.RegisterMember(r.Context(), req)
	if err != nil {
		writeError(w, r, "Failed to register member", err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, m)
}

// Login checks the credentials and issues a bearer token
func (h *MemberHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, r, "Invalid request body", err)
		return
	}

	m, err := h.service.Authenticate(r.Context(), req.LoginID, req.Password)
	if err != nil {
		writeError(w, r, "Login failed", err)
		return
	}

	token, err := h.auth.IssueToken(m)
	if err != nil {
		writeError(w, r, "Failed to issue token", err)
		return
	}

	slog.InfoContext(r.Context(), "Member logged in", "member_id", m.ID.String())
	render.JSON(w, r, LoginResponse{Token: token, Member: m})
}

// Me returns the authenticated member
func (h *MemberHandler) Me(w http.ResponseWriter, r *http.Request) {
	caller, ok := principal(w, r)
	if !ok {
		return
	}

	m, err := h.service.GetMember(r.Context(), caller.UserID)
	if err != nil {
		writeError(w, r, "Failed to get member", err)
		return
	}
	render.JSON(w, r, m)
}

// ApplyPro files a pro application for the caller
func (h *MemberHandler) ApplyPro(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, "pro", h.service.ApplyPro)
}

// ApplySeller files a seller application for the caller
func (h *MemberHandler) ApplySeller(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, "seller", h.service.ApplySeller)
}

func (h *MemberHandler) apply(w http.ResponseWriter, r *http.Request, kind string, apply func(context.Context, uuid.UUID) error) {
	caller, ok := principal(w, r)
	if !ok {
		return
	}

	if err := apply(r.Context(), caller.UserID); err != nil {
		writeError(w, r, "Failed to apply for "+kind, err)
		return
	}

	slog.InfoContext(r.Context(), "Application filed", "member_id", caller.UserID.String(), "kind", kind)
	w.WriteHeader(http.StatusAccepted)
}
