// Package policy maps roles to gate permissions and resolves the acting user
// of an HTTP request.
package policy

import (
	"context"

	"github.com/Emma781227/Ble-dor/gate"
	"github.com/Emma781227/Ble-dor/internal/models"
)

// Resource types.
const (
	ResourceOrder    = "order"
	ResourceCart     = "cart"
	ResourceProduct  = "product"
	ResourceFavorite = "favorite"
	ResourceProfile  = "profile"
	ResourceManager  = "manager"
	ResourceReport   = "report"
)

// Domain verbs beyond plain CRUD.
const (
	ActionCheckout gate.Action = "checkout"
	ActionStatus   gate.Action = "status"
	ActionListOwn  gate.Action = "list_own"
	ActionViewOwn  gate.Action = "view_own"
)

var rolePermissions = map[models.Role][]gate.Permission{
	models.RoleClient: {
		gate.NewPermission(ResourceCart, ActionCheckout),
		gate.NewPermission(ResourceOrder, ActionListOwn),
		gate.NewPermission(ResourceOrder, ActionViewOwn),
		gate.NewPermission(ResourceFavorite, gate.WildcardAll),
		gate.NewPermission(ResourceProfile, gate.ActionUpdate),
		gate.NewPermission(ResourceProduct, gate.ActionList),
		gate.NewPermission(ResourceProduct, gate.ActionView),
	},
	models.RoleManager: staffPermissions(),
	models.RoleOwner: append(staffPermissions(),
		gate.NewPermission(ResourceManager, gate.WildcardAll),
		gate.NewPermission(ResourceReport, gate.WildcardAll),
	),
}

func staffPermissions() []gate.Permission {
	return []gate.Permission{
		gate.NewPermission(ResourceOrder, gate.ActionCreate),
		gate.NewPermission(ResourceOrder, ActionStatus),
		gate.NewPermission(ResourceOrder, gate.ActionList),
		gate.NewPermission(ResourceOrder, gate.ActionView),
		gate.NewPermission(ResourceProduct, gate.WildcardAll),
		gate.NewPermission(ResourceFavorite, gate.WildcardAll),
	}
}

var roleProfiles = func() map[models.Role]gate.Profile {
	m := make(map[models.Role]gate.Profile, len(rolePermissions))
	for role, perms := range rolePermissions {
		m[role] = gate.NewStaticProfile(string(role), perms...)
	}
	return m
}()

// RoleProfile returns the fixed profile of role, or nil for an unknown role.
func RoleProfile(role models.Role) gate.Profile {
	return roleProfiles[role]
}

// RoleProfiles lists every role profile.
func RoleProfiles() map[models.Role]gate.Profile {
	out := make(map[models.Role]gate.Profile, len(roleProfiles))
	for k, v := range roleProfiles {
		out[k] = v
	}
	return out
}

// NewActorGate returns the gate the services authorize against. Orders and
// favorites carry an ownership policy that staff bypass.
func NewActorGate() *gate.Gate[models.Actor] {
	g := gate.New[models.Actor](gate.ResolverFunc[models.Actor](func(_ context.Context, a models.Actor) (gate.Profile, error) {
		return RoleProfile(a.Role), nil
	}))
	owned := NewStaffBypassPolicy(NewOwnershipPolicy())
	g.Register(ResourceOrder, owned)
	g.Register(ResourceFavorite, owned)
	return g
}
