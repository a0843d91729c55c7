package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/sulbao/community/pkg/member"
)

const (
	replySuccess = "success"
	replyFail    = "fail"
)

// AdminHandler serves the member administration pages
type AdminHandler struct {
	service member.Service
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(service member.Service) *AdminHandler {
	return &AdminHandler{service: service}
}

// Routes mounts the admin routes. Callers must be verified admins.
func (h *AdminHandler) Routes(r chi.Router) {
	r.Get("/members", h.list(h.service.ListMembers))
	r.Get("/members/pro", h.list(h.service.ListProMembers))
	r.Get("/sellers", h.list(h.service.ListSellers))

	r.Put("/members/enable", h.UpdateEnabled)
	r.Put("/members/pro-status", h.UpdateProStatus)
	r.Put("/sellers/sell-status", h.UpdateSellStatus)
}

func (h *AdminHandler) list(load func(context.Context) ([]*member.Member, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		members, err := load(r.Context())
		if err != nil {
			writeError(w, r, "Failed to list members", err)
			return
		}
		if members == nil {
			members = []*member.Member{}
		}
		render.JSON(w, r, members)
	}
}

// UpdateEnabled enables or disables the members of form value memberList
func (h *AdminHandler) UpdateEnabled(w http.ResponseWriter, r *http.Request) {
	h.batch(w, r, "update enabled", func(ctx context.Context, ids []uuid.UUID, lt member.ListType) error {
		enabled, err := member.ParseAvailable(r.FormValue("available"))
		if err != nil {
			return err
		}
		return h.service.UpdateEnabled(ctx, ids, lt, enabled)
	})
}

// UpdateProStatus decides the pro applications of form value memberList
func (h *AdminHandler) UpdateProStatus(w http.ResponseWriter, r *http.Request) {
	h.batch(w, r, "update pro status", func(ctx context.Context, ids []uuid.UUID, lt member.ListType) error {
		status, err := member.ParseApprovalStatus(r.FormValue("proStatus"))
		if err != nil {
			return err
		}
		return h.service.UpdateProStatus(ctx, ids, lt, status)
	})
}

// UpdateSellStatus decides the seller applications of form value memberList
func (h *AdminHandler) UpdateSellStatus(w http.ResponseWriter, r *http.Request) {
	h.batch(w, r, "update sell status", func(ctx context.Context, ids []uuid.UUID, lt member.ListType) error {
		status, err := member.ParseApprovalStatus(r.FormValue("sellStatus"))
		if err != nil {
			return err
		}
		return h.service.UpdateSellStatus(ctx, ids, lt, status)
	})
}

// batch parses memberList and type, runs apply and replies with a plain
// "success" or "fail".
func (h *AdminHandler) batch(w http.ResponseWriter, r *http.Request, op string,
	apply func(ctx context.Context, ids []uuid.UUID, lt member.ListType) error) {
	err := func() error {
		ids, err := member.ParseIDList(r.FormValue("memberList"))
		if err != nil {
			return err
		}
		lt, err := member.ParseListType(r.FormValue("type"))
		if err != nil {
			return err
		}
		return apply(r.Context(), ids, lt)
	}()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err != nil {
		status, _ := statusFor(err)
		slog.WarnContext(r.Context(), "Admin batch failed", "op", op, "status", status, "error", err)
		w.WriteHeader(status)
		w.Write([]byte(replyFail))
		return
	}

	slog.InfoContext(r.Context(), "Admin batch applied", "op", op)
	w.Write([]byte(replySuccess))
}
