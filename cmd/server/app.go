package main

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Emma781227/Ble-dor/auth"
	"github.com/Emma781227/Ble-dor/gate"
	"github.com/Emma781227/Ble-dor/httpx"
	"github.com/Emma781227/Ble-dor/internal/handlers"
	"github.com/Emma781227/Ble-dor/internal/policy"
	"github.com/Emma781227/Ble-dor/internal/services"
	"github.com/Emma781227/Ble-dor/internal/store"
)

// roleCacheTTL bounds how long a role change takes to reach live sessions
// when nothing invalidates it explicitly.
const roleCacheTTL = 5 * time.Minute

// Deps are the collaborators the App is built from. Cache, Events and Audit
// are optional.
type Deps struct {
	DB      *gorm.DB
	Reports services.ReportStore
	Log     *zap.Logger

	TicketPrefix      string
	MaxTicketAttempts int

	OrderCache   services.OrderCache
	CatalogCache services.CatalogCache
	Events       services.EventPublisher
	Audit        services.AuditLog
}

// App is the main application handler that sets up all routes.
type App struct {
	mux      *http.ServeMux
	db       *gorm.DB
	log      *zap.Logger
	authGate *policy.AuthGate

	auth      *handlers.AuthHandler
	products  *handlers.ProductHandler
	orders    *handlers.OrderHandler
	favorites *handlers.FavoriteHandler
	managers  *handlers.ManagerHandler
	profile   *handlers.ProfileHandler
	dashboard *handlers.DashboardHandler
}

// NewApp wires stores, services and handlers and registers every route.
func NewApp(d Deps) *App {
	users := store.NewUserStore(d.DB)
	products := store.NewProductStore(d.DB)
	authGate := policy.NewAuthGate(users, roleCacheTTL)

	opts := []services.OrderOption{services.WithMaxTicketAttempts(d.MaxTicketAttempts)}
	if d.OrderCache != nil {
		opts = append(opts, services.WithOrderCache(d.OrderCache))
	}
	if d.Events != nil {
		opts = append(opts, services.WithEvents(d.Events))
	}
	if d.Audit != nil {
		opts = append(opts, services.WithAuditLog(d.Audit))
	}
	orderSvc := services.NewOrderService(store.NewOrderStore(d.DB), products, users,
		services.NewTicketGenerator(d.TicketPrefix), d.Log, opts...)
	userSvc := services.NewUserService(users, authGate, d.Log)
	passwordSvc := services.NewPasswordService(users, store.NewResetTokenStore(d.DB), d.Log)

	app := &App{
		mux:       http.NewServeMux(),
		db:        d.DB,
		log:       d.Log,
		authGate:  authGate,
		auth:      handlers.NewAuthHandler(userSvc, passwordSvc, d.Log),
		products:  handlers.NewProductHandler(services.NewCatalogService(products, d.CatalogCache, d.Log), authGate, d.Log),
		orders:    handlers.NewOrderHandler(orderSvc, d.Log),
		favorites: handlers.NewFavoriteHandler(services.NewFavoriteService(store.NewFavoriteStore(d.DB), products), d.Log),
		managers:  handlers.NewManagerHandler(userSvc, d.Log),
		profile:   handlers.NewProfileHandler(userSvc, d.Log),
		dashboard: handlers.NewDashboardHandler(services.NewReportService(d.Reports), d.Log),
	}
	app.setupRoutes()
	return app
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	auth.Middleware(a.mux).ServeHTTP(w, r)
}

func (a *App) setupRoutes() {
	// Public routes
	a.mux.HandleFunc("GET /healthz", a.healthz)
	a.mux.HandleFunc("POST /auth/register", a.auth.Register)
	a.mux.HandleFunc("POST /auth/login", a.auth.Login)
	a.mux.HandleFunc("POST /auth/logout", a.auth.Logout)
	a.mux.HandleFunc("POST /auth/forgot-password", a.auth.ForgotPassword)
	a.mux.HandleFunc("POST /auth/reset-password", a.auth.ResetPassword)
	a.mux.HandleFunc("GET /products", a.products.List)
	a.mux.HandleFunc("GET /products/{id}", a.products.View)

	// Authenticated routes; services enforce ownership
	a.mux.Handle("GET /me", a.requireAuth(a.auth.Me))
	a.mux.Handle("GET /orders", a.requireAuth(a.orders.List))
	a.mux.Handle("GET /orders/{id}", a.requireAuth(a.orders.View))
	a.mux.Handle("GET /orders/{id}/ticket.png", a.requireAuth(a.orders.TicketQR))
	a.mux.Handle("GET /favorites", a.requireAuth(a.favorites.List))
	a.mux.Handle("POST /favorites", a.requireAuth(a.favorites.Add))
	a.mux.Handle("DELETE /favorites/{productId}", a.requireAuth(a.favorites.Remove))
	a.mux.Handle("POST /favorites/{productId}/toggle", a.requireAuth(a.favorites.Toggle))

	// Protected routes (auth + permission)
	a.mux.Handle("POST /orders",
		a.requirePermission(policy.ResourceOrder, gate.ActionCreate, a.orders.CreatePOS))
	a.mux.Handle("POST /orders/from-cart",
		a.requirePermission(policy.ResourceCart, policy.ActionCheckout, a.orders.CreateFromCart))
	a.mux.Handle("PATCH /orders/{id}",
		a.requirePermission(policy.ResourceOrder, policy.ActionStatus, a.orders.SetStatus))

	a.mux.Handle("POST /products",
		a.requirePermission(policy.ResourceProduct, gate.ActionCreate, a.products.Create))
	a.mux.Handle("PUT /products/{id}",
		a.requirePermission(policy.ResourceProduct, gate.ActionUpdate, a.products.Update))
	a.mux.Handle("PATCH /products/{id}",
		a.requirePermission(policy.ResourceProduct, gate.ActionUpdate, a.products.SetAvailability))
	a.mux.Handle("DELETE /products/{id}",
		a.requirePermission(policy.ResourceProduct, gate.ActionDelete, a.products.Delete))

	a.mux.Handle("POST /client/profile",
		a.requirePermission(policy.ResourceProfile, gate.ActionUpdate, a.profile.Update))

	// Owner routes
	a.mux.Handle("GET /owner/managers",
		a.requirePermission(policy.ResourceManager, gate.ActionList, a.managers.List))
	a.mux.Handle("POST /owner/managers",
		a.requirePermission(policy.ResourceManager, gate.ActionCreate, a.managers.Create))
	a.mux.Handle("PUT /owner/managers/{id}",
		a.requirePermission(policy.ResourceManager, gate.ActionUpdate, a.managers.Update))
	a.mux.Handle("DELETE /owner/managers/{id}",
		a.requirePermission(policy.ResourceManager, gate.ActionDelete, a.managers.Delete))
	a.mux.Handle("GET /owner/dashboard",
		a.requirePermission(policy.ResourceReport, gate.ActionView, a.dashboard.Show))
}

// requireAuth needs a valid session whose user still exists.
func (a *App) requireAuth(h http.HandlerFunc) http.Handler {
	return auth.RequireAuth(a.authGate.Authenticate(h))
}

// requirePermission also needs resourceType:action on the user's role.
func (a *App) requirePermission(resourceType string, action gate.Action, h http.HandlerFunc) http.Handler {
	return auth.RequireAuth(a.authGate.Authenticate(a.authGate.RequirePermission(resourceType, action)(h)))
}

func (a *App) healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	sqlDB, err := a.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		a.log.Warn("health check failed", zap.Error(err))
		httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// statusRecorder captures the response status for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// withLogging adds request logging middleware.
func withLogging(log *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)))
	})
}
