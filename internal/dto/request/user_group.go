package request

type CreateUserGroupRequest struct {
	Name string `json:"name" validate:"required,max=155"`
}

type UpdateUserGroupRequest struct {
	Name *string `json:"name,omitempty" validate:"omitempty,max=155"`
}
