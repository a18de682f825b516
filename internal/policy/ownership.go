package policy

import (
	"context"

	"github.com/Emma781227/Ble-dor/gate"
	"github.com/Emma781227/Ble-dor/internal/models"
)

// Ownable is implemented by records that belong to one user.
type Ownable interface {
	GetUserID() string
}

// OwnershipPolicy allows an actor to act on records they own.
type OwnershipPolicy struct{}

func NewOwnershipPolicy() *OwnershipPolicy {
	return &OwnershipPolicy{}
}

// Can denies resources that do not implement Ownable.
func (p *OwnershipPolicy) Can(_ context.Context, actor models.Actor, _ gate.Action, resource any) bool {
	if resource == nil {
		return true
	}
	ownable, ok := resource.(Ownable)
	if !ok {
		return false
	}
	owner := ownable.GetUserID()
	return owner != "" && owner == actor.UserID
}

// StaffBypassPolicy lets managers and owners through and defers everyone
// else to the inner policy.
type StaffBypassPolicy struct {
	inner gate.Policy[models.Actor]
}

func NewStaffBypassPolicy(inner gate.Policy[models.Actor]) *StaffBypassPolicy {
	return &StaffBypassPolicy{inner: inner}
}

func (p *StaffBypassPolicy) Can(ctx context.Context, actor models.Actor, action gate.Action, resource any) bool {
	if actor.Is(models.RoleManager, models.RoleOwner) {
		return true
	}
	return p.inner.Can(ctx, actor, action, resource)
}
