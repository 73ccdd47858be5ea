package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/lunchorder/api/internal/database"
	"github.com/lunchorder/api/internal/service"
)

// UserServicer defines the account management operations.
// Satisfied by *service.AdminService.
type UserServicer interface {
	ListUsers() []database.User
	CreateUser(ctx context.Context, in service.UserInput) (database.User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, in service.UserInput) (database.User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

// UserHandler handles user CRUD endpoints.
type UserHandler struct {
	svc UserServicer
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(svc UserServicer) *UserHandler {
	return &UserHandler{svc: svc}
}

// RegisterRoutes registers user CRUD endpoints on the given Chi router.
// Expected to be mounted at /admin/users.
func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// --- Request types ---

type createUserRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"omitempty,oneof=user admin collector"`
}

// Password is optional on update; empty keeps the current one.
type updateUserRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Password string `json:"password"`
	Role     string `json:"role" validate:"omitempty,oneof=user admin collector"`
}

// --- Handlers ---

// List handles GET /admin/users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users := h.svc.ListUsers()
	resp := make([]userResponse, len(users))
	for i, u := range users {
		resp[i] = toUserResponse(u)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create handles POST /admin/users.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !decodeBody(w, r, &req) {
		return
	}
	u, err := h.svc.CreateUser(r.Context(), service.UserInput{Name: req.Name, Password: req.Password, Role: req.Role})
	if err != nil {
		writeServiceError(w, "create user", err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserResponse(u))
}

// Update handles PUT /admin/users/{id}.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req updateUserRequest
	if !decodeBody(w, r, &req) {
		return
	}
	u, err := h.svc.UpdateUser(r.Context(), id, service.UserInput{Name: req.Name, Password: req.Password, Role: req.Role})
	if err != nil {
		writeServiceError(w, "update user", err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(u))
}

// Delete handles DELETE /admin/users/{id}. The main Admin account is refused.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteUser(r.Context(), id); err != nil {
		writeServiceError(w, "delete user", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
