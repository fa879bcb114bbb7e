package adaptor

import (
	"net/http"

	"user-admin/internal/dto/request"
	"user-admin/internal/usecase"
	"user-admin/pkg/utils"

	"go.uber.org/zap"
)

type UserGroupHandler struct {
	service usecase.UserGroupService
	errs    *ErrorMapper
	log     *zap.Logger
}

func NewUserGroupHandler(service usecase.UserGroupService, errs *ErrorMapper, log *zap.Logger) *UserGroupHandler {
	return &UserGroupHandler{
		service: service,
		errs:    errs,
		log:     log.With(zap.String("handler", "user_group")),
	}
}

// List handles GET /api/user-groups?page=
func (h *UserGroupHandler) List(w http.ResponseWriter, r *http.Request) {
	req := &request.PaginatedRequest{Page: utils.ParseInt(r.URL.Query().Get("page"), 1)}

	groups, err := h.service.ListGroups(r.Context(), req)
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	utils.ResponseSuccess(w, groups)
}

// Get handles GET /api/user-groups/{id}
func (h *UserGroupHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	group, err := h.service.GetGroup(r.Context(), id)
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	utils.ResponseSuccess(w, group)
}

// Create handles POST /api/user-groups
func (h *UserGroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateUserGroupRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	group, err := h.service.CreateGroup(r.Context(), &req)
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	utils.ResponseCreated(w, group)
}

// Update handles PUT /api/user-groups/{id}
func (h *UserGroupHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	var req request.UpdateUserGroupRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	group, err := h.service.UpdateGroup(r.Context(), id, &req)
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	utils.ResponseSuccess(w, group)
}

// Delete handles DELETE /api/user-groups/{id}
func (h *UserGroupHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	if err := h.service.DeleteGroup(r.Context(), id); err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	utils.ResponseNoContent(w)
}
