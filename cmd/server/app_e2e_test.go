package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"

	"github.com/Emma781227/Ble-dor/auth"
	"github.com/Emma781227/Ble-dor/internal/db"
	"github.com/Emma781227/Ble-dor/internal/models"
	"github.com/Emma781227/Ble-dor/internal/reports"
	"github.com/Emma781227/Ble-dor/internal/testutil"
)

type emptyReports struct{}

func (emptyReports) StatusBreakdown(context.Context, time.Time, time.Time) ([]reports.StatusRow, error) {
	return nil, nil
}

func (emptyReports) TopProducts(context.Context, time.Time, time.Time, int) ([]reports.ProductRow, error) {
	return nil, nil
}

func (emptyReports) ProductSummary(context.Context) (reports.ProductSummary, error) {
	return reports.ProductSummary{Total: 7, Available: 7}, nil
}

func setupApp(t *testing.T) (*App, *gorm.DB) {
	t.Helper()
	gdb := testutil.OpenDB(t)
	if err := db.Seed(gdb, zap.NewNop()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	app := NewApp(Deps{
		DB:                gdb,
		Reports:           emptyReports{},
		Log:               zap.NewNop(),
		TicketPrefix:      "BLE",
		MaxTicketAttempts: 5,
	})
	return app, gdb
}

func do(t *testing.T, app http.Handler, method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rr := httptest.NewRecorder()
	app.ServeHTTP(rr, req)
	return rr
}

func sessionCookie(t *testing.T, rr *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rr.Result().Cookies() {
		if c.Name == "session" {
			return c
		}
	}
	t.Fatalf("no session cookie (status %d)", rr.Code)
	return nil
}

func login(t *testing.T, app http.Handler, email, password string) *http.Cookie {
	t.Helper()
	rr := do(t, app, http.MethodPost, "/auth/login", map[string]string{"email": email, "password": password}, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("login %s: expected 200 got %d body=%s", email, rr.Code, rr.Body.String())
	}
	return sessionCookie(t, rr)
}

func firstProductID(t *testing.T, app http.Handler) string {
	t.Helper()
	rr := do(t, app, http.MethodGet, "/products", nil, nil)
	var list struct {
		Items []models.Product `json:"items"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &list); err != nil || len(list.Items) == 0 {
		t.Fatalf("products: %v %s", err, rr.Body.String())
	}
	return list.Items[0].ID
}

func TestOrderLifecycleE2E(t *testing.T) {
	app, _ := setupApp(t)
	productID := firstProductID(t, app)
	cart := map[string]any{"items": []map[string]any{{"product_id": productID, "quantity": 2}}}

	if rr := do(t, app, http.MethodGet, "/healthz", nil, nil); rr.Code != http.StatusOK {
		t.Fatalf("healthz: %d", rr.Code)
	}
	if rr := do(t, app, http.MethodGet, "/orders", nil, nil); rr.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous orders: expected 401 got %d", rr.Code)
	}

	managerSess := login(t, app, "manager@bledor.local", "manager123")
	clientSess := login(t, app, "client@bledor.local", "client123")

	rr := do(t, app, http.MethodPost, "/orders", cart, managerSess)
	if rr.Code != http.StatusCreated {
		t.Fatalf("POS order: expected 201 got %d body=%s", rr.Code, rr.Body.String())
	}
	var posOrder models.Order
	if err := json.Unmarshal(rr.Body.Bytes(), &posOrder); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if rr := do(t, app, http.MethodPost, "/orders", cart, clientSess); rr.Code != http.StatusForbidden {
		t.Fatalf("client at POS: expected 403 got %d", rr.Code)
	}

	rr = do(t, app, http.MethodPost, "/orders/from-cart", cart, clientSess)
	if rr.Code != http.StatusCreated {
		t.Fatalf("self-service: expected 201 got %d body=%s", rr.Code, rr.Body.String())
	}
	var mine models.Order
	if err := json.Unmarshal(rr.Body.Bytes(), &mine); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if mine.CustomerName != "Client" {
		t.Errorf("expected profile name fallback, got %q", mine.CustomerName)
	}

	if rr := do(t, app, http.MethodPatch, "/orders/"+mine.ID, map[string]string{"status": "READY"}, clientSess); rr.Code != http.StatusForbidden {
		t.Errorf("client status change: expected 403 got %d", rr.Code)
	}
	if rr := do(t, app, http.MethodPatch, "/orders/"+mine.ID, map[string]string{"status": "READY"}, managerSess); rr.Code != http.StatusOK {
		t.Fatalf("status change: expected 200 got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = do(t, app, http.MethodGet, "/orders", nil, clientSess)
	var list struct {
		Items []models.Order `json:"items"`
		Count int            `json:"count"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if list.Count != 1 || list.Items[0].Status != models.OrderStatusReady {
		t.Errorf("client list: %s", rr.Body.String())
	}

	if rr := do(t, app, http.MethodGet, "/orders/"+posOrder.ID, nil, clientSess); rr.Code != http.StatusForbidden {
		t.Errorf("client reading POS order: expected 403 got %d", rr.Code)
	}
	rr = do(t, app, http.MethodGet, "/orders/"+mine.ID+"/ticket.png", nil, clientSess)
	if rr.Code != http.StatusOK || rr.Header().Get("Content-Type") != "image/png" {
		t.Errorf("ticket png: %d %s", rr.Code, rr.Header().Get("Content-Type"))
	}
}

func TestOwnerRoutesE2E(t *testing.T) {
	app, _ := setupApp(t)
	ownerSess := login(t, app, "owner@bledor.local", "admin123")
	managerSess := login(t, app, "manager@bledor.local", "manager123")

	if rr := do(t, app, http.MethodGet, "/owner/dashboard", nil, managerSess); rr.Code != http.StatusForbidden {
		t.Errorf("manager dashboard: expected 403 got %d", rr.Code)
	}
	rr := do(t, app, http.MethodGet, "/owner/dashboard?period=week", nil, ownerSess)
	if rr.Code != http.StatusOK {
		t.Fatalf("owner dashboard: expected 200 got %d body=%s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), `"name":"week"`) {
		t.Errorf("dashboard should echo the period: %s", rr.Body.String())
	}
	if rr := do(t, app, http.MethodGet, "/owner/dashboard?period=year", nil, ownerSess); rr.Code != http.StatusBadRequest {
		t.Errorf("unknown period: expected 400 got %d", rr.Code)
	}

	rr = do(t, app, http.MethodPost, "/owner/managers", map[string]string{"email": "vendeur@bledor.local", "password": "vendeur1"}, ownerSess)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create manager: expected 201 got %d body=%s", rr.Code, rr.Body.String())
	}
	var m models.User
	if err := json.Unmarshal(rr.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode: %v", err)
	}
	vendeurSess := login(t, app, "vendeur@bledor.local", "vendeur1")
	if rr := do(t, app, http.MethodGet, "/orders", nil, vendeurSess); rr.Code != http.StatusOK {
		t.Fatalf("new manager orders: expected 200 got %d", rr.Code)
	}

	if rr := do(t, app, http.MethodDelete, "/owner/managers/"+m.ID, nil, ownerSess); rr.Code != http.StatusNoContent {
		t.Fatalf("delete manager: expected 204 got %d", rr.Code)
	}
	if rr := do(t, app, http.MethodGet, "/orders", nil, vendeurSess); rr.Code != http.StatusUnauthorized {
		t.Errorf("deleted manager session: expected 401 got %d", rr.Code)
	}
}

func TestSessionForDeletedUserIsRejected(t *testing.T) {
	app, gdb := setupApp(t)
	rec := httptest.NewRecorder()
	auth.CreateSession(rec, "no-such-user")
	sess := sessionCookie(t, rec)

	if rr := do(t, app, http.MethodGet, "/me", nil, sess); rr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 got %d", rr.Code)
	}

	var owner models.User
	if err := gdb.Where("email = ?", "owner@bledor.local").First(&owner).Error; err != nil {
		t.Fatalf("owner: %v", err)
	}
	rec = httptest.NewRecorder()
	auth.CreateSession(rec, owner.ID)
	if rr := do(t, app, http.MethodGet, "/me", nil, sessionCookie(t, rec)); rr.Code != http.StatusOK {
		t.Errorf("owner me: expected 200 got %d", rr.Code)
	}
}

func TestWithLogging(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	h := withLogging(zap.New(core), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected one log entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["status"] != int64(http.StatusTeapot) || fields["path"] != "/healthz" {
		t.Errorf("unexpected fields %v", fields)
	}
}
