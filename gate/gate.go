// Package gate is a small permission gate. Subjects resolve to profiles that
// carry "resource:action" permissions, and optional per-resource policies can
// narrow a granted permission to the records a subject owns.
//
// The subject type is generic: the HTTP layer resolves string user ids while
// the services authorize a full actor value.
package gate

import "context"

// Gate checks a subject's profile first and then, when a concrete resource is
// given, the policy registered for its type.
type Gate[U comparable] struct {
	resolver ProfileResolver[U]
	policies map[string]Policy[U]
}

// New returns a Gate backed by resolver.
func New[U comparable](resolver ProfileResolver[U]) *Gate[U] {
	return &Gate[U]{
		resolver: resolver,
		policies: make(map[string]Policy[U]),
	}
}

// Register attaches a record-level policy to a resource type. It is not safe
// to call once the gate is serving requests.
func (g *Gate[U]) Register(resourceType string, p Policy[U]) {
	g.policies[resourceType] = p
}

// Authorize returns ErrUnauthenticated for the zero subject and ErrForbidden
// when the profile lacks resourceType:action or the resource policy says no.
func (g *Gate[U]) Authorize(ctx context.Context, subject U, action Action, resourceType string, resource any) error {
	var zero U
	if subject == zero {
		return ErrUnauthenticated
	}
	if !g.allows(ctx, subject, action, resourceType) {
		return ErrForbidden
	}
	if resource == nil {
		return nil
	}
	if p, ok := g.policies[resourceType]; ok && !p.Can(ctx, subject, action, resource) {
		return ErrForbidden
	}
	return nil
}

// Can is Authorize as a bool.
func (g *Gate[U]) Can(ctx context.Context, subject U, action Action, resourceType string, resource any) bool {
	return g.Authorize(ctx, subject, action, resourceType, resource) == nil
}

// Allows checks the profile permission only, skipping record policies.
func (g *Gate[U]) Allows(ctx context.Context, subject U, action Action, resourceType string) bool {
	var zero U
	if subject == zero {
		return false
	}
	return g.allows(ctx, subject, action, resourceType)
}

func (g *Gate[U]) allows(ctx context.Context, subject U, action Action, resourceType string) bool {
	profile, err := g.resolver.Resolve(ctx, subject)
	if err != nil || profile == nil {
		return false
	}
	return profile.HasPermission(NewPermission(resourceType, action))
}
