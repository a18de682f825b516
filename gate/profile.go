package gate

import (
	"context"
	"sort"
)

// Profile is a named set of permissions, usually a role.
type Profile interface {
	Name() string
	HasPermission(requested Permission) bool
	Permissions() []Permission
}

// ProfileResolver maps a subject to its profile. A nil profile with a nil
// error means the subject has no permissions at all.
type ProfileResolver[U any] interface {
	Resolve(ctx context.Context, subject U) (Profile, error)
}

// ResolverFunc adapts a plain function to ProfileResolver.
type ResolverFunc[U any] func(ctx context.Context, subject U) (Profile, error)

// Resolve calls f.
func (f ResolverFunc[U]) Resolve(ctx context.Context, subject U) (Profile, error) {
	return f(ctx, subject)
}

// StaticProfile is an in-memory Profile.
type StaticProfile struct {
	name        string
	permissions map[Permission]struct{}
}

// NewStaticProfile builds a profile from a fixed permission list.
func NewStaticProfile(name string, permissions ...Permission) *StaticProfile {
	p := &StaticProfile{name: name, permissions: make(map[Permission]struct{}, len(permissions))}
	for _, perm := range permissions {
		p.permissions[perm] = struct{}{}
	}
	return p
}

func (p *StaticProfile) Name() string { return p.name }

// Permissions returns the granted permissions sorted for stable output.
func (p *StaticProfile) Permissions() []Permission {
	perms := make([]Permission, 0, len(p.permissions))
	for perm := range p.permissions {
		perms = append(perms, perm)
	}
	sort.Slice(perms, func(i, j int) bool { return perms[i] < perms[j] })
	return perms
}

// HasPermission honours wildcards on the granted side.
func (p *StaticProfile) HasPermission(requested Permission) bool {
	if _, ok := p.permissions[requested]; ok {
		return true
	}
	for perm := range p.permissions {
		if perm.Matches(requested) {
			return true
		}
	}
	return false
}

// StaticResolver resolves subjects from a fixed map.
type StaticResolver[U comparable] struct {
	profiles map[U]Profile
}

func NewStaticResolver[U comparable]() *StaticResolver[U] {
	return &StaticResolver[U]{profiles: make(map[U]Profile)}
}

// Set assigns profile to subject, replacing any previous one.
func (r *StaticResolver[U]) Set(subject U, profile Profile) {
	r.profiles[subject] = profile
}

func (r *StaticResolver[U]) Resolve(_ context.Context, subject U) (Profile, error) {
	return r.profiles[subject], nil
}
