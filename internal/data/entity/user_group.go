package entity

type UserGroup struct {
	Base
	Name string `db:"name"`

	// Users is the inverse side of users_groups, read-only.
	Users []*User
}
