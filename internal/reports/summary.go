package reports

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Emma781227/Ble-dor/internal/models"
)

// Summary is the headline of the dashboard. Revenue and ValidOrders only
// count READY and DELIVERED orders.
type Summary struct {
	Revenue       decimal.Decimal                  `json:"revenue"`
	ValidOrders   int64                            `json:"valid_orders"`
	AverageTicket decimal.Decimal                  `json:"average_ticket"`
	Canceled      int64                            `json:"canceled"`
	ByStatus      map[models.OrderStatus]StatusRow `json:"by_status"`
}

// Summarize folds per-status rows. Every status is present in ByStatus.
func Summarize(rows []StatusRow) Summary {
	sum := Summary{
		Revenue:       decimal.Zero,
		AverageTicket: decimal.Zero,
		ByStatus:      make(map[models.OrderStatus]StatusRow, len(models.OrderStatuses)),
	}
	for _, st := range models.OrderStatuses {
		sum.ByStatus[st] = StatusRow{Status: st, Total: decimal.Zero}
	}
	for _, r := range rows {
		b := sum.ByStatus[r.Status]
		b.Status = r.Status
		b.Orders += r.Orders
		b.Total = b.Total.Add(r.Total)
		sum.ByStatus[r.Status] = b

		if r.Status.CountsTowardRevenue() {
			sum.Revenue = sum.Revenue.Add(r.Total)
			sum.ValidOrders += r.Orders
		}
		if r.Status == models.OrderStatusCanceled {
			sum.Canceled += r.Orders
		}
	}
	if sum.ValidOrders > 0 {
		sum.AverageTicket = sum.Revenue.Div(decimal.NewFromInt(sum.ValidOrders)).Round(2)
	}
	return sum
}

// Period is a half-open time window [From, To).
type Period struct {
	Name string    `json:"name"`
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

var ErrUnknownPeriod = errors.New("unknown period")

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Today is the calendar day of now in its location.
func Today(now time.Time) Period {
	from := startOfDay(now)
	return Period{Name: "today", From: from, To: from.AddDate(0, 0, 1)}
}

// Week runs Monday to Sunday around now.
func Week(now time.Time) Period {
	day := startOfDay(now)
	offset := (int(day.Weekday()) + 6) % 7
	from := day.AddDate(0, 0, -offset)
	return Period{Name: "week", From: from, To: from.AddDate(0, 0, 7)}
}

// ParsePeriod accepts "today" (the default) and "week".
func ParsePeriod(name string, now time.Time) (Period, error) {
	switch name {
	case "", "today":
		return Today(now), nil
	case "week":
		return Week(now), nil
	}
	return Period{}, ErrUnknownPeriod
}

// Range builds an explicit window; To must be after From.
func Range(from, to time.Time) (Period, error) {
	if !to.After(from) {
		return Period{}, ErrUnknownPeriod
	}
	return Period{Name: "range", From: from, To: to}, nil
}

func (s Summary) MarshalJSON() ([]byte, error) {
	type summary Summary
	return json.Marshal(struct {
		summary
		Revenue       string `json:"revenue"`
		AverageTicket string `json:"average_ticket"`
	}{summary(s), models.FormatMoney(s.Revenue), models.FormatMoney(s.AverageTicket)})
}

func (r StatusRow) MarshalJSON() ([]byte, error) {
	type row StatusRow
	return json.Marshal(struct {
		row
		Total string `json:"total"`
	}{row(r), models.FormatMoney(r.Total)})
}

func (r ProductRow) MarshalJSON() ([]byte, error) {
	type row ProductRow
	return json.Marshal(struct {
		row
		Revenue string `json:"revenue"`
	}{row(r), models.FormatMoney(r.Revenue)})
}
