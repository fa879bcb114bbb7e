package request

// CreateUserRequest takes Roles as a comma-separated list such as
// "ROLE_USER,ROLE_ADMIN".
type CreateUserRequest struct {
	Email    string  `json:"email" validate:"required,max=180"`
	Password string  `json:"password" validate:"required"`
	Roles    string  `json:"roles"`
	GroupIDs []int64 `json:"group_ids,omitempty"`
}

// UpdateUserRequest is a patch: a nil or empty field leaves the stored value
// unchanged. A non-nil GroupIDs replaces the whole membership set.
type UpdateUserRequest struct {
	Email    *string  `json:"email,omitempty" validate:"omitempty,max=180"`
	Password *string  `json:"password,omitempty"`
	Roles    *string  `json:"roles,omitempty"`
	GroupIDs *[]int64 `json:"group_ids,omitempty"`
}

type ListUsersRequest struct {
	PaginatedRequest
	Email string `json:"email"`
}
