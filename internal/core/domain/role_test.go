package domain

import (
	"errors"
	"testing"
)

func TestRole_Can_PolicyTable(t *testing.T) {
	cases := []struct {
		role   Role
		action Action
		want   bool
	}{
		{RoleNormal, ActionViewSelf, true},
		{RoleNormal, ActionEditSelf, true},
		{RoleNormal, ActionListAccounts, false},
		{RoleNormal, ActionViewAnyAccount, false},
		{RoleNormal, ActionDeleteAnyAccount, false},
		{RoleNormal, ActionChangeAnyRole, false},

		{RoleStaff, ActionViewSelf, true},
		{RoleStaff, ActionEditSelf, true},
		{RoleStaff, ActionListAccounts, true},
		{RoleStaff, ActionViewAnyAccount, true},
		{RoleStaff, ActionDeleteAnyAccount, true},
		{RoleStaff, ActionChangeAnyRole, true},

		{RoleManager, ActionViewSelf, true},
		{RoleManager, ActionEditSelf, true},
		{RoleManager, ActionListAccounts, true},
		{RoleManager, ActionViewAnyAccount, true},
		{RoleManager, ActionDeleteAnyAccount, true},
		{RoleManager, ActionChangeAnyRole, true},
	}

	for _, tc := range cases {
		if got := tc.role.Can(tc.action); got != tc.want {
			t.Errorf("%s.Can(%d) = %v, want %v", tc.role, tc.action, got, tc.want)
		}
	}
}

func TestRole_Can_OutOfRangeRole(t *testing.T) {
	for _, r := range []Role{-1, 3, 42} {
		if r.Can(ActionViewSelf) {
			t.Errorf("role %d allowed an action", int(r))
		}
	}
}

func TestParseRole(t *testing.T) {
	valid := []struct {
		in   any
		want Role
	}{
		{float64(0), RoleNormal},
		{float64(1), RoleStaff},
		{float64(2), RoleManager},
		{2, RoleManager},
		{"1", RoleStaff},
		{" 2 ", RoleManager},
	}
	for _, tc := range valid {
		got, err := ParseRole(tc.in)
		if err != nil {
			t.Errorf("ParseRole(%v): unexpected error %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseRole(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}

	invalid := []any{nil, float64(3), float64(-1), 4, -1, 1.5, "apple", "", true, []int{1}}
	for _, in := range invalid {
		if _, err := ParseRole(in); !errors.Is(err, ErrInvalidRole) {
			t.Errorf("ParseRole(%v): expected ErrInvalidRole, got %v", in, err)
		}
	}
}
