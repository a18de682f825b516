package policy

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Emma781227/Ble-dor/auth"
	"github.com/Emma781227/Ble-dor/gate"
	"github.com/Emma781227/Ble-dor/httpx"
	"github.com/Emma781227/Ble-dor/i18n"
	"github.com/Emma781227/Ble-dor/internal/models"
	"github.com/Emma781227/Ble-dor/internal/store"
)

// RoleLookup reads the current role of a user id.
type RoleLookup interface {
	RoleOf(ctx context.Context, userID string) (models.Role, error)
}

// DBRoleResolver resolves a session user id to the profile of their stored role.
type DBRoleResolver struct {
	users RoleLookup
}

func NewDBRoleResolver(users RoleLookup) *DBRoleResolver {
	return &DBRoleResolver{users: users}
}

// Resolve returns a nil profile for unknown users.
func (r *DBRoleResolver) Resolve(ctx context.Context, userID string) (gate.Profile, error) {
	role, err := r.users.RoleOf(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("resolve role: %w", err)
	}
	return RoleProfile(role), nil
}

type actorCtxKey struct{}

// AuthGate turns the session cookie into an Actor and guards routes by permission.
type AuthGate struct {
	Gate          *gate.Gate[string]
	CacheResolver *gate.CachedResolver[string]
}

// NewAuthGate caches role lookups for cacheTTL.
func NewAuthGate(users RoleLookup, cacheTTL time.Duration) *AuthGate {
	cached := gate.NewCachedResolver[string](NewDBRoleResolver(users), cacheTTL)
	return &AuthGate{
		Gate:          gate.New[string](cached),
		CacheResolver: cached,
	}
}

// Actor resolves the request's user. A session whose user no longer exists
// is treated as anonymous.
func (ag *AuthGate) Actor(ctx context.Context) (models.Actor, error) {
	if a, ok := ctx.Value(actorCtxKey{}).(models.Actor); ok {
		return a, nil
	}
	uid, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return models.Actor{}, gate.ErrUnauthenticated
	}
	profile, err := ag.CacheResolver.Resolve(ctx, uid)
	if err != nil {
		return models.Actor{}, err
	}
	if profile == nil {
		return models.Actor{}, gate.ErrUnauthenticated
	}
	return models.Actor{UserID: uid, Role: models.Role(profile.Name())}, nil
}

// ActorFromContext returns the actor stored by WithActor, or the zero actor.
func ActorFromContext(ctx context.Context) models.Actor {
	a, _ := ctx.Value(actorCtxKey{}).(models.Actor)
	return a
}

// WithActor stores a resolved actor in the context.
func WithActor(ctx context.Context, a models.Actor) context.Context {
	return context.WithValue(ctx, actorCtxKey{}, a)
}

// InvalidateUser drops the cached role of userID.
func (ag *AuthGate) InvalidateUser(userID string) {
	ag.CacheResolver.Invalidate(userID)
}

// Authenticate resolves the actor once and attaches it to the request, or answers 401.
func (ag *AuthGate) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, err := ag.Actor(r.Context())
		if err != nil {
			lang := i18n.DetectLanguage(r.Header.Get("Accept-Language"))
			if errors.Is(err, gate.ErrUnauthenticated) {
				httpx.JSONError(w, http.StatusUnauthorized, "unauthenticated", i18n.T(lang, "unauthenticated"), nil)
				return
			}
			httpx.JSONError(w, http.StatusInternalServerError, "storage_error", i18n.T(lang, "storage_error"), nil)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
	})
}

// RequirePermission blocks actors whose role lacks resourceType:action.
// It must run after Authenticate.
func (ag *AuthGate) RequirePermission(resourceType string, action gate.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := ActorFromContext(r.Context())
			if !ag.Gate.Allows(r.Context(), actor.UserID, action, resourceType) {
				lang := i18n.DetectLanguage(r.Header.Get("Accept-Language"))
				httpx.JSONError(w, http.StatusForbidden, "forbidden", i18n.T(lang, "forbidden"), nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
