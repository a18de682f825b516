package models

// Actor is the identity invoking an operation. The zero Actor is anonymous.
type Actor struct {
	UserID string
	Role   Role
}

// Anonymous reports whether no user is attached.
func (a Actor) Anonymous() bool {
	return a.UserID == ""
}

// Is reports whether the actor holds one of roles.
func (a Actor) Is(roles ...Role) bool {
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}
