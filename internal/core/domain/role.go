package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Role is the ordinal permission tier attached to an account.
type Role int

const (
	RoleNormal  Role = 0
	RoleStaff   Role = 1
	RoleManager Role = 2
)

// Action enumerates everything the permission policy rules on.
type Action int

const (
	ActionViewSelf Action = iota
	ActionEditSelf
	ActionListAccounts
	ActionViewAnyAccount
	ActionDeleteAnyAccount
	ActionChangeAnyRole
)

// Valid reports whether r is one of the three defined tiers.
func (r Role) Valid() bool {
	return r >= RoleNormal && r <= RoleManager
}

// Can is the pure permission decision: self actions are open to every role,
// everything else requires a role above Normal. Staff and Manager are
// equivalent for every gated action; there is no Manager-only action.
func (r Role) Can(a Action) bool {
	if !r.Valid() {
		return false
	}
	switch a {
	case ActionViewSelf, ActionEditSelf:
		return true
	default:
		return r > RoleNormal
	}
}

func (r Role) String() string {
	switch r {
	case RoleNormal:
		return "normal"
	case RoleStaff:
		return "staff"
	case RoleManager:
		return "manager"
	}
	return fmt.Sprintf("role(%d)", int(r))
}

// ParseRole converts a loosely-typed user level (JSON number or numeric
// string) into a Role, rejecting anything outside {0,1,2}.
func ParseRole(v any) (Role, error) {
	switch t := v.(type) {
	case nil:
		return 0, ErrInvalidRole
	case float64:
		if t != float64(int(t)) {
			return 0, ErrInvalidRole
		}
		return checkRole(int(t))
	case int:
		return checkRole(t)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, ErrInvalidRole
		}
		return checkRole(n)
	default:
		return 0, ErrInvalidRole
	}
}

func checkRole(n int) (Role, error) {
	r := Role(n)
	if !r.Valid() {
		return 0, ErrInvalidRole
	}
	return r, nil
}
