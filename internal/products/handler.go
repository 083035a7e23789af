package products

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/ropeartlab/ropeartlab/internal/api"
	"github.com/ropeartlab/ropeartlab/internal/store"
)

type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the catalog routes on mux. Trash routes come before the
// {id} routes so "trash" is never parsed as a product id.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/products", h.HandleList)
	mux.HandleFunc("POST /api/products", h.HandleCreate)
	mux.HandleFunc("GET /api/products/admin/trash", h.HandleListTrash)
	// Alias kept for clients that predate the path move.
	mux.HandleFunc("GET /api/products/trash", h.HandleListTrash)
	mux.HandleFunc("GET /api/products/{id}", h.HandleGet)
	mux.HandleFunc("PUT /api/products/{id}", h.HandleUpdate)
	mux.HandleFunc("DELETE /api/products/{id}", h.HandleTrash)
	mux.HandleFunc("POST /api/products/{id}/restore", h.HandleRestore)
	mux.HandleFunc("DELETE /api/products/{id}/purge", h.HandlePurge)
}

func (h *Handler) productID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		api.ErrorMessage(w, h.logger, http.StatusBadRequest, "invalid product id")
		return 0, false
	}
	return id, true
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.List(r.Context())
	if err != nil {
		api.Fail(w, h.logger, err)
		return
	}
	api.List(w, h.logger, products)
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in CreateProductInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		api.ErrorMessage(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := h.service.Create(r.Context(), in)
	if err != nil {
		api.Fail(w, h.logger, err)
		return
	}
	api.Created(w, h.logger, product)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	product, err := h.service.Get(r.Context(), id)
	if err != nil {
		api.Fail(w, h.logger, err)
		return
	}
	api.OK(w, h.logger, product)
}

// updateProductRequest carries partial edits; absent fields stay untouched.
type updateProductRequest struct {
	Name          *string          `json:"name"`
	Description   *string          `json:"description"`
	Price         *decimal.Decimal `json:"price"`
	DiscountPrice *decimal.Decimal `json:"discountPrice"`
	ImageURL      *string          `json:"image"`
	Category      *string          `json:"category"`
	Color         *string          `json:"color"`
}

func (req *updateProductRequest) toUpdate() store.ProductUpdate {
	return store.ProductUpdate{
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		DiscountPrice: req.DiscountPrice,
		ImageURL:      req.ImageURL,
		Category:      req.Category,
		Color:         req.Color,
	}
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	var req updateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.ErrorMessage(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := h.service.Update(r.Context(), id, req.toUpdate())
	if err != nil {
		api.Fail(w, h.logger, err)
		return
	}
	api.OK(w, h.logger, product)
}

func (h *Handler) HandleTrash(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	product, err := h.service.Trash(r.Context(), id)
	if err != nil {
		api.Fail(w, h.logger, err)
		return
	}
	api.OK(w, h.logger, product)
}

func (h *Handler) HandleListTrash(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListTrash(r.Context())
	if err != nil {
		api.Fail(w, h.logger, err)
		return
	}
	api.List(w, h.logger, products)
}

func (h *Handler) HandleRestore(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	product, err := h.service.RestoreFromTrash(r.Context(), id)
	if err != nil {
		api.Fail(w, h.logger, err)
		return
	}
	api.OK(w, h.logger, product)
}

func (h *Handler) HandlePurge(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	if err := h.service.Purge(r.Context(), id); err != nil {
		api.Fail(w, h.logger, err)
		return
	}
	api.Message(w, h.logger, "product permanently deleted")
}
