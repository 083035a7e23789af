package admin

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ropeartlab/ropeartlab/internal/api"
	"github.com/ropeartlab/ropeartlab/internal/domain"
	"github.com/ropeartlab/ropeartlab/internal/orders"
	"github.com/ropeartlab/ropeartlab/internal/store"
)

type Handler struct {
	store  store.Store
	engine *orders.Engine
	logger *slog.Logger
}

func NewHandler(st store.Store, engine *orders.Engine, logger *slog.Logger) *Handler {
	return &Handler{store: st, engine: engine, logger: logger}
}

// Register mounts the admin routes on mux, each wrapped in the token gate.
func (h *Handler) Register(mux *http.ServeMux, token string) {
	gate := func(fn http.HandlerFunc) http.Handler {
		return RequireToken(token, h.logger, fn)
	}
	mux.Handle("GET /api/admin/dashboard", gate(h.HandleDashboard))
	mux.Handle("GET /api/admin/users", gate(h.HandleUsers))
	mux.Handle("GET /api/admin/orders", gate(h.HandleOrders))
	mux.Handle("GET /api/admin/reports", gate(h.HandleReports))
	mux.Handle("GET /api/admin/drafts", gate(h.HandleDrafts))
	mux.Handle("POST /api/admin/drafts/{id}/confirm", gate(h.HandleConfirmDraft))
}

type dashboard struct {
	Products     *domain.CatalogStats `json:"products"`
	Users        *domain.UserStats    `json:"users"`
	Orders       *domain.OrderStats   `json:"orders"`
	RecentOrders []domain.Order       `json:"recentOrders"`
	RecentUsers  []domain.User        `json:"recentUsers"`
}

func (h *Handler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	catalogStats, err := h.store.CatalogStats(ctx)
	if err != nil {
		api.Fail(w, h.logger, err)
		return
	}
	userStats, err := h.store.UserStats(ctx, nil)
	if err != nil {
		api.Fail(w, h.logger, err)
		return
	}
	orderStats, err := h.store.OrderStats(ctx, nil)
	if err != nil {
		api.Fail(w, h.logger, err)
		return
	}
	recentOrders, err := h.store.ListOrders(ctx, store.OrderFilter{Limit: 10})
	if err != nil {
		api.Fail(w, h.logger, err)
		return
	}
	recentUsers, err := h.store.ListUsers(ctx, 10)
	if err != nil {
		api.Fail(w, h.logger, err)
		return
	}

	api.OK(w, h.logger, dashboard{
		Products:     catalogStats,
		Users:        userStats,
		Orders:       orderStats,
		RecentOrders: recentOrders,
		RecentUsers:  recentUsers,
	})
}

func (h *Handler) HandleUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context(), 0)
	if err != nil {
		api.Fail(w, h.logger, err)
		return
	}
	api.List(w, h.logger, users)
}

func (h *Handler) HandleOrders(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.ListOrders(r.Context(), store.OrderFilter{})
	if err != nil {
		api.Fail(w, h.logger, err)
		return
	}
	api.List(w, h.logger, list)
}

// HandleReports serves the windowed aggregates: type=general|products|users,
// period=N days (default 30).
func (h *Handler) HandleReports(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	days := 30
	if p := r.URL.Query().Get("period"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || n <= 0 {
			api.Fail(w, h.logger, &domain.ValidationError{Field: "period", Reason: "must be a positive day count"})
			return
		}
		days = n
	}
	since := time.Now().UTC().AddDate(0, 0, -days)

	switch r.URL.Query().Get("type") {
	case "", "general":
		stats, err := h.store.OrderStats(ctx, &since)
		if err != nil {
			api.Fail(w, h.logger, err)
			return
		}
		api.OK(w, h.logger, stats)
	case "products":
		sales, err := h.store.ProductSales(ctx, &since)
		if err != nil {
			api.Fail(w, h.logger, err)
			return
		}
		api.List(w, h.logger, sales)
	case "users":
		stats, err := h.store.UserStats(ctx, &since)
		if err != nil {
			api.Fail(w, h.logger, err)
			return
		}
		api.OK(w, h.logger, stats)
	default:
		api.Fail(w, h.logger, &domain.ValidationError{Field: "type", Reason: "must be general, products or users"})
	}
}

func (h *Handler) HandleDrafts(w http.ResponseWriter, r *http.Request) {
	drafts, err := h.store.ListDrafts(r.Context())
	if err != nil {
		api.Fail(w, h.logger, err)
		return
	}
	api.List(w, h.logger, drafts)
}

// HandleConfirmDraft promotes a WhatsApp draft into a real pending order
// through the regular engine path. Confirmation is one-shot: the second
// attempt conflicts instead of creating a duplicate order.
func (h *Handler) HandleConfirmDraft(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	draft, err := h.store.GetDraft(ctx, id)
	if err != nil {
		api.Fail(w, h.logger, err)
		return
	}
	if len(draft.Items) == 0 {
		api.Fail(w, h.logger, &domain.ValidationError{Field: "items", Reason: "draft has no items"})
		return
	}

	// One-shot gate before creating the order so a double confirm cannot
	// place the order twice.
	if err := h.store.ConfirmDraft(ctx, id, time.Now().UTC()); err != nil {
		api.Fail(w, h.logger, err)
		return
	}

	items := make([]orders.ItemInput, 0, len(draft.Items))
	for _, item := range draft.Items {
		items = append(items, orders.ItemInput{
			Name:     item.Name,
			Price:    item.Price,
			Quantity: item.Quantity,
		})
	}

	order, err := h.engine.Create(ctx, orders.CreateOrderInput{
		CustomerEmail: draft.SenderID + "@whatsapp.local",
		Items:         items,
		PaymentMethod: domain.DefaultPaymentMethod,
		Notes:         "Pedido via WhatsApp: " + truncate(draft.MessageText, 200),
	})
	if err != nil {
		// The draft is already burned; surface the failure loudly so the
		// operator re-enters the order by hand.
		h.logger.Error("draft confirmed but order creation failed", "error", err, "draft_id", id)
		api.Fail(w, h.logger, err)
		return
	}

	h.logger.Info("draft confirmed",
		"draft_id", id, "order_id", order.PublicID, "order_number", order.Number)
	api.Created(w, h.logger, order)
}

// truncate cuts on rune boundaries; WhatsApp text is routinely accented.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
