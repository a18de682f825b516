package policy_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Emma781227/Ble-dor/auth"
	"github.com/Emma781227/Ble-dor/gate"
	"github.com/Emma781227/Ble-dor/internal/models"
	"github.com/Emma781227/Ble-dor/internal/policy"
	"github.com/Emma781227/Ble-dor/internal/store"
)

type fakeRoles struct {
	roles map[string]models.Role
	calls int
}

func (f *fakeRoles) RoleOf(_ context.Context, id string) (models.Role, error) {
	f.calls++
	r, ok := f.roles[id]
	if !ok {
		return "", store.ErrNotFound
	}
	return r, nil
}

func TestRoleProfiles(t *testing.T) {
	tests := []struct {
		role   models.Role
		perm   gate.Permission
		expect bool
	}{
		{models.RoleClient, "cart:checkout", true},
		{models.RoleClient, "order:view_own", true},
		{models.RoleClient, "order:status", false},
		{models.RoleClient, "order:create", false},
		{models.RoleClient, "favorite:create", true},
		{models.RoleClient, "product:create", false},
		{models.RoleManager, "order:status", true},
		{models.RoleManager, "order:create", true},
		{models.RoleManager, "product:delete", true},
		{models.RoleManager, "cart:checkout", false},
		{models.RoleManager, "manager:create", false},
		{models.RoleManager, "report:view", false},
		{models.RoleOwner, "order:status", true},
		{models.RoleOwner, "manager:delete", true},
		{models.RoleOwner, "report:view", true},
		{models.RoleOwner, "profile:update", false},
	}
	for _, tt := range tests {
		t.Run(string(tt.role)+"/"+string(tt.perm), func(t *testing.T) {
			if got := policy.RoleProfile(tt.role).HasPermission(tt.perm); got != tt.expect {
				t.Errorf("HasPermission(%s) = %v, want %v", tt.perm, got, tt.expect)
			}
		})
	}
	if policy.RoleProfile("ADMIN") != nil {
		t.Error("expected nil profile for unknown role")
	}
}

func TestActorGate_OrderOwnership(t *testing.T) {
	g := policy.NewActorGate()
	ctx := context.Background()
	owner := "client-1"
	order := &models.Order{CustomerID: &owner}
	counter := &models.Order{}

	client := models.Actor{UserID: "client-1", Role: models.RoleClient}
	other := models.Actor{UserID: "client-2", Role: models.RoleClient}
	manager := models.Actor{UserID: "m", Role: models.RoleManager}

	if err := g.Authorize(ctx, client, policy.ActionViewOwn, policy.ResourceOrder, order); err != nil {
		t.Errorf("owner should view own order: %v", err)
	}
	if err := g.Authorize(ctx, other, policy.ActionViewOwn, policy.ResourceOrder, order); !errors.Is(err, gate.ErrForbidden) {
		t.Errorf("expected forbidden for another client, got %v", err)
	}
	if err := g.Authorize(ctx, client, policy.ActionViewOwn, policy.ResourceOrder, counter); !errors.Is(err, gate.ErrForbidden) {
		t.Errorf("expected forbidden for counter order, got %v", err)
	}
	if err := g.Authorize(ctx, manager, gate.ActionView, policy.ResourceOrder, order); err != nil {
		t.Errorf("manager should view any order: %v", err)
	}
	if err := g.Authorize(ctx, models.Actor{}, gate.ActionView, policy.ResourceOrder, nil); !errors.Is(err, gate.ErrUnauthenticated) {
		t.Errorf("expected unauthenticated, got %v", err)
	}
}

func TestOwnershipPolicy(t *testing.T) {
	p := policy.NewOwnershipPolicy()
	ctx := context.Background()
	a := models.Actor{UserID: "u1", Role: models.RoleClient}

	if !p.Can(ctx, a, gate.ActionList, nil) {
		t.Error("expected nil resource to pass")
	}
	if !p.Can(ctx, a, gate.ActionDelete, &models.Favorite{UserID: "u1"}) {
		t.Error("expected owner to pass")
	}
	if p.Can(ctx, a, gate.ActionDelete, &models.Favorite{UserID: "u2"}) {
		t.Error("expected non-owner to be denied")
	}
	if p.Can(ctx, a, gate.ActionView, &models.Product{}) {
		t.Error("expected non-ownable resource to be denied")
	}
}

func TestAuthGate_ActorIsCached(t *testing.T) {
	roles := &fakeRoles{roles: map[string]models.Role{"u1": models.RoleManager}}
	ag := policy.NewAuthGate(roles, time.Minute)
	ctx := auth.WithUserID(context.Background(), "u1")

	for i := 0; i < 3; i++ {
		a, err := ag.Actor(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if a.Role != models.RoleManager || a.UserID != "u1" {
			t.Fatalf("unexpected actor %+v", a)
		}
	}
	if roles.calls != 1 {
		t.Fatalf("expected 1 lookup, got %d", roles.calls)
	}

	roles.roles["u1"] = models.RoleOwner
	ag.InvalidateUser("u1")
	a, _ := ag.Actor(ctx)
	if a.Role != models.RoleOwner {
		t.Fatalf("expected refreshed role, got %s", a.Role)
	}
}

func TestAuthGate_Middleware(t *testing.T) {
	roles := &fakeRoles{roles: map[string]models.Role{
		"client":  models.RoleClient,
		"manager": models.RoleManager,
	}}
	ag := policy.NewAuthGate(roles, time.Minute)
	h := ag.Authenticate(ag.RequirePermission(policy.ResourceOrder, policy.ActionStatus)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})))

	tests := []struct {
		name string
		uid  string
		want int
	}{
		{"anonymous", "", http.StatusUnauthorized},
		{"deleted user", "ghost", http.StatusUnauthorized},
		{"client", "client", http.StatusForbidden},
		{"manager", "manager", http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPatch, "/orders/1", nil)
			if tt.uid != "" {
				req = req.WithContext(auth.WithUserID(req.Context(), tt.uid))
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}
