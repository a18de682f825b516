package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderStatus is where an order sits in the kitchen flow.
type OrderStatus string

const (
	OrderStatusPending     OrderStatus = "PENDING"
	OrderStatusPreparation OrderStatus = "PREPARATION"
	OrderStatusReady       OrderStatus = "READY"
	OrderStatusDelivered   OrderStatus = "DELIVERED"
	OrderStatusCanceled    OrderStatus = "CANCELED"
)

// OrderStatuses lists every status in flow order.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusPreparation,
	OrderStatusReady,
	OrderStatusDelivered,
	OrderStatusCanceled,
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPreparation, OrderStatusReady, OrderStatusDelivered, OrderStatusCanceled:
		return true
	}
	return false
}

// IsTerminal is informational: staff may still move an order out of a
// terminal status to correct a mistake.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCanceled
}

// CountsTowardRevenue is true only for orders that were actually sold.
func (s OrderStatus) CountsTowardRevenue() bool {
	return s == OrderStatusReady || s == OrderStatusDelivered
}

// ParseOrderStatus accepts exactly the five upper-case values.
func ParseOrderStatus(s string) (OrderStatus, error) {
	st := OrderStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown order status %q", s)
	}
	return st, nil
}

// PaymentMethod is how the customer settles at the counter.
type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "CASH"
	PaymentCard   PaymentMethod = "CARD"
	PaymentMobile PaymentMethod = "MOBILE"
	PaymentOther  PaymentMethod = "OTHER"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentMobile, PaymentOther:
		return true
	}
	return false
}

// ParsePaymentMethod treats an empty value as cash.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	if s == "" {
		return PaymentCash, nil
	}
	m := PaymentMethod(s)
	if !m.Valid() {
		return "", fmt.Errorf("unknown payment method %q", s)
	}
	return m, nil
}

// Order is one customer transaction. Total is computed once from the item
// snapshots when the order is created and never edited afterwards.
type Order struct {
	ID            string          `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt     time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	Status        OrderStatus     `gorm:"size:20;not null;default:'PENDING';index" json:"status"`
	PaymentMethod PaymentMethod   `gorm:"size:20;not null;default:'CASH'" json:"payment_method"`
	Total         decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"total"`
	TicketNumber  string          `gorm:"size:64;uniqueIndex;not null" json:"ticket_number"`
	CustomerName  string          `gorm:"size:255" json:"customer_name,omitempty"`
	CustomerNote  string          `gorm:"type:text" json:"customer_note,omitempty"`

	// ManagerID is the staff member who rang the order up at the counter.
	ManagerID *string `gorm:"size:36;index" json:"manager_id,omitempty"`
	// CustomerID is set for orders a client placed from their own cart.
	CustomerID *string `gorm:"size:36;index" json:"customer_id,omitempty"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
}

func (o *Order) BeforeCreate(_ *gorm.DB) error {
	assignID(&o.ID)
	if o.Status == "" {
		o.Status = OrderStatusPending
	}
	if o.PaymentMethod == "" {
		o.PaymentMethod = PaymentCash
	}
	return nil
}

// ItemsTotal sums the line totals of the loaded items.
func (o *Order) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for i := range o.Items {
		total = total.Add(o.Items[i].LineTotal())
	}
	return total
}

// PlacedBy reports whether userID is the client who placed the order.
func (o *Order) PlacedBy(userID string) bool {
	return o.CustomerID != nil && *o.CustomerID == userID
}

// OrderItem is one line of an order. ProductID is a weak reference: the
// name and unit price are copied from the catalog when the order is created.
type OrderItem struct {
	ID          string          `gorm:"primaryKey;size:36" json:"id"`
	OrderID     string          `gorm:"size:36;not null;index" json:"order_id"`
	ProductID   string          `gorm:"size:36;not null;index" json:"product_id"`
	ProductName string          `gorm:"size:255" json:"product_name"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"unit_price"`
}

func (i *OrderItem) BeforeCreate(_ *gorm.DB) error {
	assignID(&i.ID)
	return nil
}

// LineTotal is quantity × unit price.
func (i *OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Revenue sums the totals of the orders that count as sales.
func Revenue(orders []Order) decimal.Decimal {
	sum := decimal.Zero
	for i := range orders {
		if orders[i].Status.CountsTowardRevenue() {
			sum = sum.Add(orders[i].Total)
		}
	}
	return sum
}

// GetUserID is the owning client, empty for counter orders.
func (o *Order) GetUserID() string {
	if o.CustomerID == nil {
		return ""
	}
	return *o.CustomerID
}
