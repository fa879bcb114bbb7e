package adaptor

import (
	"fmt"
	"net/http"
	"slices"
	"strings"

	"user-admin/internal/data/entity"
	"user-admin/internal/dto/request"
	"user-admin/internal/dto/response"
	"user-admin/internal/usecase"
	"user-admin/pkg/utils"
)

type userRow struct {
	response.UserResponse
	DeleteToken string
}

type userIndexPage struct {
	Rows       []userRow
	Email      string
	Pagination response.PaginationMeta
}

type userFormPage struct {
	ID           int64
	Email        string
	Roles        []string
	GroupIDs     []int64
	RoleOptions  []string
	GroupOptions []response.UserGroupSummary
	Violations   []utils.Violation
}

func (f userFormPage) HasRole(role string) bool {
	return slices.Contains(f.Roles, role)
}

func (f userFormPage) HasGroup(id int64) bool {
	return slices.Contains(f.GroupIDs, id)
}

// userSubmission is what the user form posted.
type userSubmission struct {
	Email    string
	Password string
	Roles    []string
	GroupIDs []int64
}

func parseUserForm(r *http.Request) (userSubmission, error) {
	if err := r.ParseForm(); err != nil {
		return userSubmission{}, fmt.Errorf("parse form: %w", usecase.ErrInvalidArgument)
	}
	groupIDs, ok := utils.ParseIDs(r.PostForm["groups"])
	if !ok {
		return userSubmission{}, fmt.Errorf("groups must be numeric: %w", usecase.ErrInvalidArgument)
	}
	return userSubmission{
		Email:    utils.SanitizeText(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
		Roles:    r.PostForm["roles"],
		GroupIDs: groupIDs,
	}, nil
}

// UserIndex handles GET /admin/user?page=&email=
func (h *AdminHandler) UserIndex(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := &request.ListUsersRequest{
		PaginatedRequest: request.PaginatedRequest{Page: utils.ParseInt(query.Get("page"), 1)},
		Email:            query.Get("email"),
	}

	users, err := h.users.ListUsers(r.Context(), req)
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	rows := make([]userRow, 0, len(users.Data))
	for _, u := range users.Data {
		rows = append(rows, userRow{
			UserResponse: u,
			DeleteToken:  h.actionToken(r, intentDeleteUser, u.ID),
		})
	}

	h.views.Render(w, r, http.StatusOK, "user_index", "Users", userIndexPage{
		Rows:       rows,
		Email:      req.Email,
		Pagination: users.Pagination,
	})
}

// UserNew handles GET /admin/user/new
func (h *AdminHandler) UserNew(w http.ResponseWriter, r *http.Request) {
	h.renderUserForm(w, r, http.StatusOK, userFormPage{})
}

// UserCreate handles POST /admin/user/new
func (h *AdminHandler) UserCreate(w http.ResponseWriter, r *http.Request) {
	form, err := parseUserForm(r)
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	_, err = h.users.CreateUser(r.Context(), &request.CreateUserRequest{
		Email:    form.Email,
		Password: form.Password,
		Roles:    strings.Join(form.Roles, ","),
		GroupIDs: form.GroupIDs,
	})
	if violations, ok := formViolations(err); ok {
		h.renderUserForm(w, r, http.StatusUnprocessableEntity, userFormPage{
			Email:      form.Email,
			Roles:      form.Roles,
			GroupIDs:   form.GroupIDs,
			Violations: violations,
		})
		return
	}
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	http.Redirect(w, r, "/admin/user", http.StatusSeeOther)
}

// UserEdit handles GET /admin/user/{id}/edit
func (h *AdminHandler) UserEdit(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	user, err := h.users.GetUser(r.Context(), id)
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	groupIDs := make([]int64, 0, len(user.Groups))
	for _, g := range user.Groups {
		groupIDs = append(groupIDs, g.ID)
	}

	h.renderUserForm(w, r, http.StatusOK, userFormPage{
		ID:       user.ID,
		Email:    user.Email,
		Roles:    user.Roles,
		GroupIDs: groupIDs,
	})
}

// UserUpdate handles POST /admin/user/{id}/edit. A blank password keeps the
// current one; the checked groups replace the membership set.
func (h *AdminHandler) UserUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	form, err := parseUserForm(r)
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	roles := strings.Join(form.Roles, ",")
	_, err = h.users.UpdateUser(r.Context(), id, &request.UpdateUserRequest{
		Email:    &form.Email,
		Password: &form.Password,
		Roles:    &roles,
		GroupIDs: &form.GroupIDs,
	})
	if violations, ok := formViolations(err); ok {
		h.renderUserForm(w, r, http.StatusUnprocessableEntity, userFormPage{
			ID:         id,
			Email:      form.Email,
			Roles:      form.Roles,
			GroupIDs:   form.GroupIDs,
			Violations: violations,
		})
		return
	}
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	http.Redirect(w, r, "/admin/user", http.StatusSeeOther)
}

// UserDelete handles POST /admin/user/{id}/delete
func (h *AdminHandler) UserDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	if h.validAction(r, intentDeleteUser, id) {
		if err := h.users.DeleteUser(r.Context(), id); err != nil {
			h.errs.Handle(w, r, err)
			return
		}
	}

	http.Redirect(w, r, "/admin/user", http.StatusSeeOther)
}

func (h *AdminHandler) renderUserForm(w http.ResponseWriter, r *http.Request, status int, form userFormPage) {
	options, err := h.users.GroupOptions(r.Context())
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}
	form.GroupOptions = options
	form.RoleOptions = entity.RoleStrings(entity.AvailableRoles)

	title := "Create new user"
	if form.ID != 0 {
		title = "Edit user"
	}
	h.views.Render(w, r, status, "user_form", title, form)
}
