package gate

import "strings"

// Permission is a "resource:action" pair, e.g. "order:status".
type Permission string

// Wildcards accepted on either side of a permission.
const (
	WildcardAll                = "*"
	PermissionAll   Permission = "*:*"
	permissionSplit            = ":"
)

// NewPermission joins a resource type and an action.
func NewPermission(resourceType string, action Action) Permission {
	return Permission(resourceType + permissionSplit + string(action))
}

// Parse splits the permission. Malformed values yield empty parts.
func (p Permission) Parse() (resourceType string, action Action) {
	res, act, ok := strings.Cut(string(p), permissionSplit)
	if !ok || res == "" || act == "" {
		return "", ""
	}
	return res, Action(act)
}

// Matches reports whether p grants requested. "*:*" grants everything and
// "order:*" grants every action on orders.
func (p Permission) Matches(requested Permission) bool {
	if p == PermissionAll || p == requested {
		return true
	}
	res, act := p.Parse()
	if res == "" {
		return false
	}
	reqRes, _ := requested.Parse()
	return res == reqRes && string(act) == WildcardAll
}
