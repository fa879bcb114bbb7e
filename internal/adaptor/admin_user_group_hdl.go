package adaptor

import (
	"fmt"
	"net/http"

	"user-admin/internal/dto/request"
	"user-admin/internal/dto/response"
	"user-admin/internal/usecase"
	"user-admin/pkg/utils"
)

type groupRow struct {
	response.UserGroupResponse
	DeleteToken string
}

type groupIndexPage struct {
	Rows       []groupRow
	Pagination response.PaginationMeta
}

type memberRow struct {
	response.UserSummary
	RemoveToken string
}

type groupFormPage struct {
	ID         int64
	Name       string
	Members    []memberRow
	Violations []utils.Violation
}

// GroupIndex handles GET /admin/user-group?page=
func (h *AdminHandler) GroupIndex(w http.ResponseWriter, r *http.Request) {
	req := &request.PaginatedRequest{Page: utils.ParseInt(r.URL.Query().Get("page"), 1)}

	groups, err := h.groups.ListGroups(r.Context(), req)
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	rows := make([]groupRow, 0, len(groups.Data))
	for _, g := range groups.Data {
		rows = append(rows, groupRow{
			UserGroupResponse: g,
			DeleteToken:       h.actionToken(r, intentDeleteUserGroup, g.ID),
		})
	}

	h.views.Render(w, r, http.StatusOK, "group_index", "User groups", groupIndexPage{
		Rows:       rows,
		Pagination: groups.Pagination,
	})
}

// GroupNew handles GET /admin/user-group/new
func (h *AdminHandler) GroupNew(w http.ResponseWriter, r *http.Request) {
	h.views.Render(w, r, http.StatusOK, "group_form", "Create new user group", groupFormPage{})
}

func parseGroupName(r *http.Request) (string, error) {
	if err := r.ParseForm(); err != nil {
		return "", fmt.Errorf("parse form: %w", usecase.ErrInvalidArgument)
	}
	return utils.SanitizeText(r.PostFormValue("name")), nil
}

// GroupCreate handles POST /admin/user-group/new
func (h *AdminHandler) GroupCreate(w http.ResponseWriter, r *http.Request) {
	name, err := parseGroupName(r)
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	_, err = h.groups.CreateGroup(r.Context(), &request.CreateUserGroupRequest{Name: name})
	if violations, ok := formViolations(err); ok {
		h.views.Render(w, r, http.StatusUnprocessableEntity, "group_form", "Create new user group", groupFormPage{
			Name:       name,
			Violations: violations,
		})
		return
	}
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	http.Redirect(w, r, "/admin/user-group", http.StatusSeeOther)
}

// GroupEdit handles GET /admin/user-group/{id}/edit
func (h *AdminHandler) GroupEdit(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	group, err := h.groups.GetGroup(r.Context(), id)
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	h.renderGroupEdit(w, r, http.StatusOK, group, group.Name, nil)
}

// GroupUpdate handles POST /admin/user-group/{id}/edit
func (h *AdminHandler) GroupUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	name, err := parseGroupName(r)
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	_, err = h.groups.UpdateGroup(r.Context(), id, &request.UpdateUserGroupRequest{Name: &name})
	if violations, ok := formViolations(err); ok {
		group, getErr := h.groups.GetGroup(r.Context(), id)
		if getErr != nil {
			h.errs.Handle(w, r, getErr)
			return
		}
		h.renderGroupEdit(w, r, http.StatusUnprocessableEntity, group, name, violations)
		return
	}
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	http.Redirect(w, r, "/admin/user-group", http.StatusSeeOther)
}

// GroupDelete handles POST /admin/user-group/{id}/delete
func (h *AdminHandler) GroupDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	if h.validAction(r, intentDeleteUserGroup, id) {
		if err := h.groups.DeleteGroup(r.Context(), id); err != nil {
			h.errs.Handle(w, r, err)
			return
		}
	}

	http.Redirect(w, r, "/admin/user-group", http.StatusSeeOther)
}

// GroupRemoveUser handles POST /admin/user-group/{id}/remove-user/{userId}
func (h *AdminHandler) GroupRemoveUser(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "id")
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}
	userID, err := pathID(r, "userId")
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	if h.validAction(r, memberIntent(groupID), userID) {
		if _, err := h.users.RemoveGroup(r.Context(), userID, groupID); err != nil {
			h.errs.Handle(w, r, err)
			return
		}
	}

	http.Redirect(w, r, fmt.Sprintf("/admin/user-group/%d/edit", groupID), http.StatusSeeOther)
}

func memberIntent(groupID int64) string {
	return fmt.Sprintf("%s_%d", intentRemoveMember, groupID)
}

func (h *AdminHandler) renderGroupEdit(w http.ResponseWriter, r *http.Request, status int, group *response.UserGroupResponse, name string, violations []utils.Violation) {
	members := make([]memberRow, 0, len(group.Users))
	for _, u := range group.Users {
		members = append(members, memberRow{
			UserSummary: u,
			RemoveToken: h.actionToken(r, memberIntent(group.ID), u.ID),
		})
	}

	h.views.Render(w, r, status, "group_form", "Edit user group", groupFormPage{
		ID:         group.ID,
		Name:       name,
		Members:    members,
		Violations: violations,
	})
}
