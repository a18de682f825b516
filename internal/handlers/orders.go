package handlers

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"github.com/Emma781227/Ble-dor/httpx"
	"github.com/Emma781227/Ble-dor/internal/models"
	"github.com/Emma781227/Ble-dor/internal/policy"
	"github.com/Emma781227/Ble-dor/internal/reports"
	"github.com/Emma781227/Ble-dor/internal/services"
)

// TicketQRSize is the edge in pixels of the ticket QR image.
const TicketQRSize = 256

type OrderHandler struct {
	orders *services.OrderService
	now    func() time.Time
	log    *zap.Logger
}

func NewOrderHandler(orders *services.OrderService, log *zap.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, now: time.Now, log: log}
}

// CreatePOS records a counter sale.
func (h *OrderHandler) CreatePOS(w http.ResponseWriter, r *http.Request) {
	var in services.CreateOrderInput
	if err := httpx.Decode(r, &in); err != nil {
		badBody(w, r)
		return
	}
	order, err := h.orders.CreatePOSOrder(r.Context(), policy.ActorFromContext(r.Context()), in)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, order)
}

// CreateFromCart checks out the client's cart.
func (h *OrderHandler) CreateFromCart(w http.ResponseWriter, r *http.Request) {
	var in services.CreateOrderInput
	if err := httpx.Decode(r, &in); err != nil {
		badBody(w, r)
		return
	}
	order, err := h.orders.CreateSelfServiceOrder(r.Context(), policy.ActorFromContext(r.Context()), in)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, order)
}

type orderList struct {
	Items   []models.Order `json:"items"`
	Count   int            `json:"count"`
	Revenue string         `json:"revenue"`
}

// List accepts ?from=&to= as dates (YYYY-MM-DD, to inclusive) or RFC 3339
// instants, and ?status=. Staff without a range get today's orders; clients
// get their whole history.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	actor := policy.ActorFromContext(r.Context())
	f, violations := parseOrderFilter(r.URL.Query())
	if len(violations) > 0 {
		invalidFields(w, r, violations)
		return
	}
	if f.From == nil && f.To == nil && !actor.Is(models.RoleClient) {
		today := reports.Today(h.now())
		f.From, f.To = &today.From, &today.To
	}
	if s := r.URL.Query().Get("status"); s != "" {
		st, err := models.ParseOrderStatus(s)
		if err != nil {
			writeError(w, r, h.log, services.ErrInvalidStatus)
			return
		}
		f.Status = &st
	}

	orders, err := h.orders.ListOrders(r.Context(), actor, f)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	httpx.JSON(w, http.StatusOK, orderList{
		Items:   orders,
		Count:   len(orders),
		Revenue: models.FormatMoney(h.orders.Revenue(orders)),
	})
}

func parseOrderFilter(q url.Values) (services.OrderFilter, map[string]string) {
	var f services.OrderFilter
	violations := map[string]string{}
	if v := q.Get("from"); v != "" {
		t, _, err := parseDay(v)
		if err != nil {
			violations["from"] = "invalid_date"
		} else {
			f.From = &t
		}
	}
	if v := q.Get("to"); v != "" {
		t, dateOnly, err := parseDay(v)
		switch {
		case err != nil:
			violations["to"] = "invalid_date"
		case dateOnly:
			end := t.AddDate(0, 0, 1)
			f.To = &end
		default:
			f.To = &t
		}
	}
	return f, violations
}

func parseDay(v string) (time.Time, bool, error) {
	if t, err := time.ParseInLocation(time.DateOnly, v, time.Local); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	return t, false, err
}

func (h *OrderHandler) View(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.GetOrder(r.Context(), policy.ActorFromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

// SetStatus applies {"status": "..."}.
func (h *OrderHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Status string `json:"status"`
	}
	if err := httpx.Decode(r, &in); err != nil {
		badBody(w, r)
		return
	}
	order, err := h.orders.SetOrderStatus(r.Context(), policy.ActorFromContext(r.Context()), r.PathValue("id"), in.Status)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

// TicketQR renders the ticket number as a PNG QR code for the pickup counter.
func (h *OrderHandler) TicketQR(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.GetOrder(r.Context(), policy.ActorFromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	png, err := qrcode.Encode(order.TicketNumber, qrcode.Medium, TicketQRSize)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.Header().Set("Cache-Control", "private, max-age=86400")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
