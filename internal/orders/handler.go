package orders

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/ropeartlab/ropeartlab/internal/api"
	"github.com/ropeartlab/ropeartlab/internal/domain"
)

type Handler struct {
	engine *Engine
	logger *slog.Logger
}

func NewHandler(engine *Engine, logger *slog.Logger) *Handler {
	return &Handler{engine: engine, logger: logger}
}

// Register mounts the order routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/orders", h.HandleCreate)
	mux.HandleFunc("GET /api/orders", h.HandleList)
	mux.HandleFunc("GET /api/orders/user/{email}", h.HandleListByCustomer)
	mux.HandleFunc("GET /api/orders/{id}", h.HandleGet)
	mux.HandleFunc("PATCH /api/orders/{id}/approve", h.transitionHandler(h.engine.Approve))
	mux.HandleFunc("PATCH /api/orders/{id}/finalize", h.transitionHandler(h.engine.Finalize))
	mux.HandleFunc("PATCH /api/orders/{id}/cancel", h.transitionHandler(h.engine.Cancel))
	mux.HandleFunc("PATCH /api/orders/{id}/restore", h.transitionHandler(h.engine.Restore))
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in CreateOrderInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		api.ErrorMessage(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.engine.Create(r.Context(), in)
	if err != nil {
		api.Fail(w, h.logger, err)
		return
	}
	api.Created(w, h.logger, order)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	orders, err := h.engine.List(r.Context(), 0)
	if err != nil {
		api.Fail(w, h.logger, err)
		return
	}
	api.List(w, h.logger, orders)
}

func (h *Handler) HandleListByCustomer(w http.ResponseWriter, r *http.Request) {
	email := r.PathValue("email")
	if email == "" {
		api.ErrorMessage(w, h.logger, http.StatusBadRequest, "missing user email")
		return
	}

	orders, err := h.engine.ListByCustomer(r.Context(), email)
	if err != nil {
		api.Fail(w, h.logger, err)
		return
	}
	api.List(w, h.logger, orders)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		api.ErrorMessage(w, h.logger, http.StatusBadRequest, "missing order id")
		return
	}

	order, err := h.engine.Get(r.Context(), id)
	if err != nil {
		api.Fail(w, h.logger, err)
		return
	}
	api.OK(w, h.logger, order)
}

// transitionHandler wraps one state-machine operation as an HTTP handler.
// Illegal transitions surface as 409, missing orders as 404.
func (h *Handler) transitionHandler(apply func(ctx context.Context, id string) (*domain.Order, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if id == "" {
			api.ErrorMessage(w, h.logger, http.StatusBadRequest, "missing order id")
			return
		}

		order, err := apply(r.Context(), id)
		if err != nil {
			api.Fail(w, h.logger, err)
			return
		}
		api.OK(w, h.logger, order)
	}
}
