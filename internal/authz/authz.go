// Package authz is the single role/action gate consulted before any mutation.
// It is advisory only: the server enforces its own authorization, the gate
// exists so the client never dispatches a request the server will reject.
package authz

import (
	"fmt"

	"github.com/rkohli/stockpilot/internal/errs"
	"github.com/rkohli/stockpilot/internal/model"
)

// Action is a mutation category guarded by the gate.
type Action string

const (
	ActionEditProduct   Action = "edit_product"
	ActionDeleteProduct Action = "delete_product"
	ActionManageUsers   Action = "manage_users"
	ActionManageCatalog Action = "manage_catalog"
)

var policy = map[model.Role]map[Action]bool{
	model.RoleAdmin: {
		ActionEditProduct:   true,
		ActionDeleteProduct: true,
		ActionManageUsers:   true,
		ActionManageCatalog: true,
	},
	model.RoleManager: {
		ActionEditProduct:   true,
		ActionDeleteProduct: true,
		ActionManageCatalog: true,
	},
	model.RoleEmployee: {},
}

// CanPerform reports whether role may attempt action. Unknown roles and
// unknown actions are always denied.
func CanPerform(role model.Role, action Action) bool {
	return policy[role][action]
}

// Require returns ErrDenied with a user-facing explanation when role may
// not perform action.
func Require(role model.Role, action Action) error {
	if CanPerform(role, action) {
		return nil
	}
	return fmt.Errorf("%w: role %q may not %s", errs.ErrDenied, role, action)
}
