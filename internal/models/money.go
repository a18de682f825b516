package models

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// MoneyPlaces is how many decimals amounts carry on the wire.
const MoneyPlaces = 2

// FormatMoney renders d with exactly MoneyPlaces decimals ("2.40", not "2.4").
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(MoneyPlaces)
}

// The JSON forms below shadow the decimal fields with their fixed rendering.
// Decoding is untouched: decimal.Decimal parses "2.40" back.

func (p Product) MarshalJSON() ([]byte, error) {
	type product Product
	return json.Marshal(struct {
		product
		Price string `json:"price"`
	}{product(p), FormatMoney(p.Price)})
}

func (o Order) MarshalJSON() ([]byte, error) {
	type order Order
	return json.Marshal(struct {
		order
		Total string `json:"total"`
	}{order(o), FormatMoney(o.Total)})
}

func (i OrderItem) MarshalJSON() ([]byte, error) {
	type item OrderItem
	return json.Marshal(struct {
		item
		UnitPrice string `json:"unit_price"`
	}{item(i), FormatMoney(i.UnitPrice)})
}
