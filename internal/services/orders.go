package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Emma781227/Ble-dor/gate"
	"github.com/Emma781227/Ble-dor/internal/audit"
	"github.com/Emma781227/Ble-dor/internal/events"
	"github.com/Emma781227/Ble-dor/internal/models"
	"github.com/Emma781227/Ble-dor/internal/policy"
	"github.com/Emma781227/Ble-dor/internal/store"
	"github.com/Emma781227/Ble-dor/validation"
)

// DefaultTicketAttempts bounds ticket minting when no limit is configured.
const DefaultTicketAttempts = 5

// CartLine is one requested product. Price is accepted for client
// compatibility and ignored: the catalog price is always used.
type CartLine struct {
	ProductID string           `json:"product_id"`
	Quantity  int              `json:"quantity"`
	Price     *decimal.Decimal `json:"price,omitempty"`
}

type CreateOrderInput struct {
	Items         []CartLine `json:"items"`
	PaymentMethod string     `json:"payment_method"`
	CustomerName  string     `json:"customer_name"`
	CustomerNote  string     `json:"customer_note"`
}

// OrderFilter narrows ListOrders. CustomerID is forced to the caller for clients.
type OrderFilter struct {
	From       *time.Time
	To         *time.Time
	Status     *models.OrderStatus
	CustomerID string
}

type OrderService struct {
	orders      OrderRepository
	products    ProductLookup
	users       UserLookup
	gate        Authorizer
	tickets     *TicketGenerator
	maxAttempts int

	cache  OrderCache
	events EventPublisher
	audit  AuditLog
	log    *zap.Logger
	now    func() time.Time
}

type OrderOption func(*OrderService)

func WithOrderCache(c OrderCache) OrderOption    { return func(s *OrderService) { s.cache = c } }
func WithEvents(p EventPublisher) OrderOption    { return func(s *OrderService) { s.events = p } }
func WithAuditLog(a AuditLog) OrderOption        { return func(s *OrderService) { s.audit = a } }
func WithMaxTicketAttempts(n int) OrderOption    { return func(s *OrderService) { s.maxAttempts = n } }
func WithAuthorizer(a Authorizer) OrderOption    { return func(s *OrderService) { s.gate = a } }
func WithClock(now func() time.Time) OrderOption { return func(s *OrderService) { s.now = now } }

func NewOrderService(orders OrderRepository, products ProductLookup, users UserLookup, tickets *TicketGenerator, log *zap.Logger, opts ...OrderOption) *OrderService {
	s := &OrderService{
		orders:      orders,
		products:    products,
		users:       users,
		gate:        policy.NewActorGate(),
		tickets:     tickets,
		maxAttempts: DefaultTicketAttempts,
		log:         log,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.maxAttempts < 1 {
		s.maxAttempts = 1
	}
	return s
}

// CreatePOSOrder records a counter sale rung up by a manager or owner.
func (s *OrderService) CreatePOSOrder(ctx context.Context, actor models.Actor, in CreateOrderInput) (*models.Order, error) {
	if err := authzErr(s.gate.Authorize(ctx, actor, gate.ActionCreate, policy.ResourceOrder, nil)); err != nil {
		return nil, err
	}
	if len(in.Items) == 0 {
		return nil, ErrEmptyCart
	}
	method, err := models.ParsePaymentMethod(strings.TrimSpace(in.PaymentMethod))
	if err != nil {
		return nil, invalid(validation.Violations{"payment_method": "invalid_choice"})
	}

	managerID := actor.UserID
	order := &models.Order{
		PaymentMethod: method,
		CustomerName:  strings.TrimSpace(in.CustomerName),
		CustomerNote:  strings.TrimSpace(in.CustomerNote),
		ManagerID:     &managerID,
	}
	return s.create(ctx, actor, in.Items, order)
}

// CreateSelfServiceOrder turns a client's cart into an order paid at pickup.
func (s *OrderService) CreateSelfServiceOrder(ctx context.Context, actor models.Actor, in CreateOrderInput) (*models.Order, error) {
	if err := authzErr(s.gate.Authorize(ctx, actor, policy.ActionCheckout, policy.ResourceCart, nil)); err != nil {
		return nil, err
	}
	if len(in.Items) == 0 {
		return nil, ErrEmptyCart
	}

	name := strings.TrimSpace(in.CustomerName)
	if name == "" && s.users != nil {
		u, err := s.users.GetUser(ctx, actor.UserID)
		switch {
		case err == nil:
			name = strings.TrimSpace(u.Name)
		case errors.Is(err, store.ErrNotFound):
		default:
			return nil, storageErr("load customer", err)
		}
	}
	if name == "" {
		return nil, ErrMissingCustomerName
	}

	customerID := actor.UserID
	order := &models.Order{
		PaymentMethod: models.PaymentCash,
		CustomerName:  name,
		CustomerNote:  strings.TrimSpace(in.CustomerNote),
		CustomerID:    &customerID,
	}
	return s.create(ctx, actor, in.Items, order)
}

func (s *OrderService) create(ctx context.Context, actor models.Actor, lines []CartLine, order *models.Order) (*models.Order, error) {
	ids := make([]string, 0, len(lines))
	seen := make(map[string]struct{}, len(lines))
	for _, l := range lines {
		if _, ok := seen[l.ProductID]; ok {
			continue
		}
		seen[l.ProductID] = struct{}{}
		ids = append(ids, l.ProductID)
	}

	products, err := s.products.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, storageErr("load products", err)
	}
	byID := make(map[string]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	var missing []string
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return nil, &ProductNotFoundError{IDs: missing}
	}

	order.Status = models.OrderStatusPending
	order.Items = make([]models.OrderItem, 0, len(lines))
	for _, l := range lines {
		p := byID[l.ProductID]
		qty := l.Quantity
		if qty < 1 {
			qty = 1
		}
		order.Items = append(order.Items, models.OrderItem{
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    qty,
			UnitPrice:   p.Price,
		})
	}
	order.Total = order.ItemsTotal()

	if err := s.persist(ctx, order); err != nil {
		return nil, err
	}

	s.log.Info("order created",
		zap.String("order_id", order.ID),
		zap.String("ticket", order.TicketNumber),
		zap.String("total", order.Total.StringFixed(2)),
		zap.String("actor", actor.UserID))
	s.cacheOrder(ctx, order)
	s.publish(ctx, events.OrderEvent{
		Type:         events.TypeOrderCreated,
		OrderID:      order.ID,
		TicketNumber: order.TicketNumber,
		Status:       order.Status,
		Total:        order.Total,
		ActorID:      actor.UserID,
		OccurredAt:   s.now(),
	})
	s.record(ctx, audit.Entry{
		OrderID:   order.ID,
		Action:    audit.ActionCreated,
		ActorID:   actor.UserID,
		ActorRole: string(actor.Role),
		To:        string(order.Status),
		At:        s.now(),
	})
	return order, nil
}

// persist retries the whole insert with a fresh ticket while the number collides.
func (s *OrderService) persist(ctx context.Context, order *models.Order) error {
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		order.ID = ""
		for i := range order.Items {
			order.Items[i].ID = ""
			order.Items[i].OrderID = ""
		}
		order.TicketNumber = s.tickets.Next()

		err := s.orders.Create(ctx, order)
		if err == nil {
			return nil
		}
		if !errors.Is(err, store.ErrDuplicate) && !errors.Is(err, ErrDuplicateTicket) {
			return storageErr("create order", err)
		}
		s.log.Warn("ticket number collision",
			zap.String("ticket", order.TicketNumber),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", s.maxAttempts))
	}
	return ErrTicketGenerationFailed
}

// SetOrderStatus moves an order to any of the known statuses. Transitions
// are not restricted so staff can correct mistakes.
func (s *OrderService) SetOrderStatus(ctx context.Context, actor models.Actor, orderID, status string) (*models.Order, error) {
	if err := authzErr(s.gate.Authorize(ctx, actor, policy.ActionStatus, policy.ResourceOrder, nil)); err != nil {
		return nil, err
	}
	next, err := models.ParseOrderStatus(status)
	if err != nil {
		return nil, ErrInvalidStatus
	}

	previous, err := s.orders.UpdateStatus(ctx, orderID, next)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, storageErr("update order status", err)
	}

	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, storageErr("reload order", err)
	}

	s.log.Info("order status changed",
		zap.String("order_id", orderID),
		zap.String("from", string(previous)),
		zap.String("to", string(next)),
		zap.String("actor", actor.UserID))
	if s.cache != nil {
		if err := s.cache.InvalidateOrder(ctx, orderID); err != nil {
			s.log.Warn("order cache invalidate failed", zap.String("order_id", orderID), zap.Error(err))
		}
	}
	s.publish(ctx, events.OrderEvent{
		Type:           events.TypeOrderStatusChanged,
		OrderID:        order.ID,
		TicketNumber:   order.TicketNumber,
		Status:         next,
		PreviousStatus: previous,
		Total:          order.Total,
		ActorID:        actor.UserID,
		OccurredAt:     s.now(),
	})
	s.record(ctx, audit.Entry{
		OrderID:   orderID,
		Action:    audit.ActionStatusChanged,
		ActorID:   actor.UserID,
		ActorRole: string(actor.Role),
		From:      string(previous),
		To:        string(next),
		At:        s.now(),
	})
	return order, nil
}

// ListOrders returns orders newest first. Clients only ever see their own.
func (s *OrderService) ListOrders(ctx context.Context, actor models.Actor, f OrderFilter) ([]models.Order, error) {
	if actor.Anonymous() {
		return nil, ErrUnauthenticated
	}
	sf := store.OrderFilter{From: f.From, To: f.To, Status: f.Status, CustomerID: f.CustomerID}
	switch {
	case s.gate.Allows(ctx, actor, gate.ActionList, policy.ResourceOrder):
	case s.gate.Allows(ctx, actor, policy.ActionListOwn, policy.ResourceOrder):
		sf.CustomerID = actor.UserID
	default:
		return nil, ErrForbidden
	}

	orders, err := s.orders.List(ctx, sf)
	if err != nil {
		return nil, storageErr("list orders", err)
	}
	return orders, nil
}

// GetOrder reads through the cache. A client asking for an order that is not
// theirs gets ErrForbidden whether or not it exists.
func (s *OrderService) GetOrder(ctx context.Context, actor models.Actor, id string) (*models.Order, error) {
	if actor.Anonymous() {
		return nil, ErrUnauthenticated
	}
	staff := s.gate.Allows(ctx, actor, gate.ActionView, policy.ResourceOrder)
	if !staff && !s.gate.Allows(ctx, actor, policy.ActionViewOwn, policy.ResourceOrder) {
		return nil, ErrForbidden
	}

	order, err := s.load(ctx, id)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) && !staff {
			return nil, ErrForbidden
		}
		return nil, err
	}
	if staff {
		return order, nil
	}
	if err := authzErr(s.gate.Authorize(ctx, actor, policy.ActionViewOwn, policy.ResourceOrder, order)); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *OrderService) load(ctx context.Context, id string) (*models.Order, error) {
	if s.cache != nil {
		cached, ok, err := s.cache.GetOrder(ctx, id)
		if err != nil {
			s.log.Warn("order cache read failed", zap.String("order_id", id), zap.Error(err))
		} else if ok {
			return cached, nil
		}
	}
	order, err := s.orders.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, storageErr("get order", err)
	}
	s.cacheOrder(ctx, order)
	return order, nil
}

// Revenue applies the sales rule to already loaded orders.
func (s *OrderService) Revenue(orders []models.Order) decimal.Decimal {
	return models.Revenue(orders)
}

func (s *OrderService) cacheOrder(ctx context.Context, order *models.Order) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetOrder(ctx, order); err != nil {
		s.log.Warn("order cache write failed", zap.String("order_id", order.ID), zap.Error(err))
	}
}

func (s *OrderService) publish(ctx context.Context, evt events.OrderEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishOrderEvent(ctx, evt); err != nil {
		s.log.Warn("order event publish failed",
			zap.String("type", evt.Type),
			zap.String("order_id", evt.OrderID),
			zap.Error(err))
	}
}

func (s *OrderService) record(ctx context.Context, entry audit.Entry) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		s.log.Warn("order audit write failed", zap.String("order_id", entry.OrderID), zap.Error(err))
	}
}
