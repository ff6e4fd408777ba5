package authz

import (
	"errors"
	"testing"

	"github.com/rkohli/stockpilot/internal/errs"
	"github.com/rkohli/stockpilot/internal/model"
)

func TestCanPerform_Matrix(t *testing.T) {
	t.Parallel()

	cases := []struct {
		role   model.Role
		action Action
		want   bool
	}{
		{model.RoleAdmin, ActionEditProduct, true},
		{model.RoleAdmin, ActionDeleteProduct, true},
		{model.RoleAdmin, ActionManageUsers, true},
		{model.RoleAdmin, ActionManageCatalog, true},

		{model.RoleManager, ActionEditProduct, true},
		{model.RoleManager, ActionDeleteProduct, true},
		{model.RoleManager, ActionManageCatalog, true},
		{model.RoleManager, ActionManageUsers, false},

		{model.RoleEmployee, ActionEditProduct, false},
		{model.RoleEmployee, ActionDeleteProduct, false},
		{model.RoleEmployee, ActionManageUsers, false},
		{model.RoleEmployee, ActionManageCatalog, false},
	}
	for _, tc := range cases {
		if got := CanPerform(tc.role, tc.action); got != tc.want {
			t.Fatalf("CanPerform(%s, %s)=%v, want %v", tc.role, tc.action, got, tc.want)
		}
	}
}

func TestCanPerform_UnknownDenied(t *testing.T) {
	t.Parallel()

	if CanPerform(model.Role("superuser"), ActionEditProduct) {
		t.Fatalf("unknown role must be denied")
	}
	if CanPerform(model.RoleAdmin, Action("format_disk")) {
		t.Fatalf("unknown action must be denied")
	}
	if CanPerform("", ActionEditProduct) {
		t.Fatalf("empty role must be denied")
	}
}

func TestRequire(t *testing.T) {
	t.Parallel()

	if err := Require(model.RoleManager, ActionEditProduct); err != nil {
		t.Fatalf("Require allowed action: %v", err)
	}
	err := Require(model.RoleEmployee, ActionDeleteProduct)
	if !errors.Is(err, errs.ErrDenied) {
		t.Fatalf("want ErrDenied, got %v", err)
	}
}
