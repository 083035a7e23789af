package users

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ropeartlab/ropeartlab/internal/api"
	"github.com/ropeartlab/ropeartlab/internal/domain"
	"github.com/ropeartlab/ropeartlab/internal/store"
)

type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/users", h.HandleList)
	mux.HandleFunc("POST /api/users/register", h.HandleRegister)
	mux.HandleFunc("POST /api/users/authenticate", h.HandleAuthenticate)
	// Alias kept for clients that predate the rename.
	mux.HandleFunc("POST /api/users/login", h.HandleAuthenticate)
	mux.HandleFunc("GET /api/users/email/{email}", h.HandleGetByEmail)
	mux.HandleFunc("GET /api/users/{id}", h.HandleGet)
	mux.HandleFunc("PUT /api/users/{id}", h.HandleUpdate)
	mux.HandleFunc("DELETE /api/users/{id}", h.HandleDeactivate)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.List(r.Context(), 0)
	if err != nil {
		api.Fail(w, h.logger, err)
		return
	}
	api.List(w, h.logger, users)
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var in RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		api.ErrorMessage(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.service.Register(r.Context(), in)
	if err != nil {
		api.Fail(w, h.logger, err)
		return
	}
	api.Created(w, h.logger, user)
}

// HandleAuthenticate identifies a user by email or tax id. A lookup miss
// answers 401 with a deliberately vague message.
func (h *Handler) HandleAuthenticate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Identifier string `json:"identifier"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Identifier == "" {
		api.ErrorMessage(w, h.logger, http.StatusBadRequest, "missing identifier")
		return
	}

	user, err := h.service.Identify(r.Context(), req.Identifier)
	if err != nil {
		var nferr *domain.NotFoundError
		if errors.As(err, &nferr) {
			api.ErrorMessage(w, h.logger, http.StatusUnauthorized, "user not recognized")
			return
		}
		api.Fail(w, h.logger, err)
		return
	}
	api.OK(w, h.logger, user)
}

func (h *Handler) HandleGetByEmail(w http.ResponseWriter, r *http.Request) {
	email := r.PathValue("email")
	if email == "" {
		api.ErrorMessage(w, h.logger, http.StatusBadRequest, "missing email")
		return
	}

	user, err := h.service.GetByEmail(r.Context(), email)
	if err != nil {
		api.Fail(w, h.logger, err)
		return
	}
	api.OK(w, h.logger, user)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		api.Fail(w, h.logger, err)
		return
	}
	api.OK(w, h.logger, user)
}

// updateUserRequest carries partial profile edits; absent fields stay
// untouched.
type updateUserRequest struct {
	FirstName  *string `json:"firstName"`
	LastName   *string `json:"lastName"`
	Email      *string `json:"email"`
	Phone      *string `json:"phone"`
	PostalCode *string `json:"postalCode"`
	Address    *string `json:"address"`
	Number     *string `json:"number"`
	Complement *string `json:"complement"`
	City       *string `json:"city"`
	State      *string `json:"state"`
}

func (req *updateUserRequest) toUpdate() store.UserUpdate {
	return store.UserUpdate{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Phone:      req.Phone,
		PostalCode: req.PostalCode,
		Address:    req.Address,
		Number:     req.Number,
		Complement: req.Complement,
		City:       req.City,
		State:      req.State,
	}
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.ErrorMessage(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.service.Update(r.Context(), r.PathValue("id"), req.toUpdate())
	if err != nil {
		api.Fail(w, h.logger, err)
		return
	}
	api.OK(w, h.logger, user)
}

func (h *Handler) HandleDeactivate(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.Deactivate(r.Context(), r.PathValue("id"))
	if err != nil {
		api.Fail(w, h.logger, err)
		return
	}
	api.OK(w, h.logger, user)
}
