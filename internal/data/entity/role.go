package entity

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

type Role string

const (
	RoleAdmin    Role = "ROLE_ADMIN"
	RoleUser     Role = "ROLE_USER"
	RoleCustomer Role = "ROLE_CUSTOMER"
)

// AvailableRoles lists every role in display order.
var AvailableRoles = []Role{RoleAdmin, RoleUser, RoleCustomer}

var ErrInvalidRole = errors.New("invalid role")

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleUser, RoleCustomer:
		return true
	}
	return false
}

// Label is the human name shown next to the role checkbox.
func (r Role) Label() string {
	switch r {
	case RoleAdmin:
		return "Admin"
	case RoleUser:
		return "User"
	case RoleCustomer:
		return "Customer"
	}
	return string(r)
}

// RoleSet is a sorted, duplicate-free list of valid roles.
type RoleSet []Role

func NewRoleSet(roles ...Role) RoleSet {
	seen := make(map[Role]struct{}, len(roles))
	set := make(RoleSet, 0, len(roles))
	for _, r := range roles {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		set = append(set, r)
	}
	sort.Slice(set, func(i, j int) bool { return set[i] < set[j] })
	return set
}

// ParseRoles splits a comma-separated role list. Every token must name a
// known role; surrounding whitespace is ignored.
func ParseRoles(csv string) (RoleSet, error) {
	tokens := strings.Split(csv, ",")
	roles := make([]Role, 0, len(tokens))
	for _, tok := range tokens {
		role := Role(strings.TrimSpace(tok))
		if !role.Valid() {
			return nil, fmt.Errorf("%w: the role %q is not valid, valid roles are: %s",
				ErrInvalidRole, string(role), strings.Join(RoleStrings(AvailableRoles), ", "))
		}
		roles = append(roles, role)
	}
	return NewRoleSet(roles...), nil
}

func (s RoleSet) Has(role Role) bool {
	for _, r := range s {
		if r == role {
			return true
		}
	}
	return false
}

func (s RoleSet) Strings() []string {
	return RoleStrings(s)
}

// CSV is the inverse of ParseRoles.
func (s RoleSet) CSV() string {
	return strings.Join(s.Strings(), ",")
}

func RoleStrings(roles []Role) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}
