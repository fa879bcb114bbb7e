package entity

type User struct {
	Base
	Email        string  `db:"email"`
	PasswordHash string  `db:"password"`
	Roles        RoleSet `db:"roles"`

	// Groups is the owning side of the users_groups relation.
	Groups []*UserGroup
}

func (u *User) IsAdmin() bool {
	return u.Roles.Has(RoleAdmin)
}

func (u *User) HasGroup(groupID int64) bool {
	for _, g := range u.Groups {
		if g.ID == groupID {
			return true
		}
	}
	return false
}

// AddGroup appends the group and reports false when it is already held.
func (u *User) AddGroup(group *UserGroup) bool {
	if u.HasGroup(group.ID) {
		return false
	}
	u.Groups = append(u.Groups, group)
	return true
}

// RemoveGroup drops the group and reports false when it was not held.
func (u *User) RemoveGroup(groupID int64) bool {
	for i, g := range u.Groups {
		if g.ID == groupID {
			u.Groups = append(u.Groups[:i], u.Groups[i+1:]...)
			return true
		}
	}
	return false
}

func (u *User) GroupIDs() []int64 {
	ids := make([]int64, len(u.Groups))
	for i, g := range u.Groups {
		ids[i] = g.ID
	}
	return ids
}
