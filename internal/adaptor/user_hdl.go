package adaptor

import (
	"context"
	"net/http"

	"user-admin/internal/dto/request"
	"user-admin/internal/dto/response"
	"user-admin/internal/usecase"
	"user-admin/pkg/utils"

	"go.uber.org/zap"
)

type UserHandler struct {
	service usecase.UserService
	errs    *ErrorMapper
	log     *zap.Logger
}

func NewUserHandler(service usecase.UserService, errs *ErrorMapper, log *zap.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		errs:    errs,
		log:     log.With(zap.String("handler", "user")),
	}
}

// List handles GET /api/users?page=&email=
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := &request.ListUsersRequest{
		PaginatedRequest: request.PaginatedRequest{Page: utils.ParseInt(query.Get("page"), 1)},
		Email:            query.Get("email"),
	}

	users, err := h.service.ListUsers(r.Context(), req)
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	utils.ResponseSuccess(w, users)
}

// Get handles GET /api/users/{id}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	user, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	utils.ResponseSuccess(w, user)
}

// Create handles POST /api/users
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateUserRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	user, err := h.service.CreateUser(r.Context(), &req)
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	utils.ResponseCreated(w, user)
}

// Update handles PUT /api/users/{id}
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	var req request.UpdateUserRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	user, err := h.service.UpdateUser(r.Context(), id, &req)
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	utils.ResponseSuccess(w, user)
}

// Delete handles DELETE /api/users/{id}
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	if err := h.service.DeleteUser(r.Context(), id); err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	utils.ResponseNoContent(w)
}

// AddGroup handles PUT /api/users/{id}/add-group/{groupId}
func (h *UserHandler) AddGroup(w http.ResponseWriter, r *http.Request) {
	h.membership(w, r, h.service.AddGroup)
}

// RemoveGroup handles PUT /api/users/{id}/remove-group/{groupId}
func (h *UserHandler) RemoveGroup(w http.ResponseWriter, r *http.Request) {
	h.membership(w, r, h.service.RemoveGroup)
}

type membershipFunc func(ctx context.Context, userID, groupID int64) (*response.UserResponse, error)

func (h *UserHandler) membership(w http.ResponseWriter, r *http.Request, apply membershipFunc) {
	userID, err := pathID(r, "id")
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}
	groupID, err := pathID(r, "groupId")
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	user, err := apply(r.Context(), userID, groupID)
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	utils.ResponseSuccess(w, user)
}
