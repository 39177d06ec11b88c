package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// LineItem is a single product entry in a cart. A cart holds at most one line
// per ProductID; SelectedFlavor is informational and not part of identity.
type LineItem struct {
	ProductID      string          `json:"productId"`
	Quantity       int             `json:"quantity"`
	Price          decimal.Decimal `json:"price"`
	SalePercentage decimal.Decimal `json:"salePercentage"`
	SelectedFlavor string          `json:"selectedFlavor,omitempty"`
	Name           string          `json:"name,omitempty"`
	ImageURL       string          `json:"imageUrl,omitempty"`
}

// UnitPrice returns the price after applying SalePercentage.
func (l LineItem) UnitPrice() decimal.Decimal {
	if l.SalePercentage.IsPositive() {
		return l.Price.Mul(decimal.NewFromInt(1).Sub(l.SalePercentage.Div(hundred)))
	}
	return l.Price
}

// LineTotal returns the sale-adjusted price times quantity.
func (l LineItem) LineTotal() decimal.Decimal {
	return l.UnitPrice().Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Key returns the flavor-qualified cart item key for this line.
func (l LineItem) Key() string {
	return CartItemKey(l.ProductID, l.SelectedFlavor)
}

// Cart is the normalized cart payload exchanged with the remote service.
type Cart struct {
	Items     []LineItem      `json:"items"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"itemCount"`
}

// EmptyCart is returned when a cleared cart has no decodable body.
func EmptyCart() Cart {
	return Cart{Items: []LineItem{}, Total: decimal.Zero, ItemCount: 0}
}

// Totals sums quantities and sale-adjusted amounts over items. It is a pure
// function of its input.
func Totals(items []LineItem) (int, decimal.Decimal) {
	quantity := 0
	amount := decimal.Zero
	for _, it := range items {
		quantity += it.Quantity
		amount = amount.Add(it.LineTotal())
	}
	return quantity, amount
}

// FindItem returns the line for productID, matching on product id only.
func FindItem(items []LineItem, productID string) (LineItem, bool) {
	for _, it := range items {
		if it.ProductID == productID {
			return it, true
		}
	}
	return LineItem{}, false
}

// CartItemKey builds the UI addressing key: "id" or "id_flavor".
func CartItemKey(productID, selectedFlavor string) string {
	if productID == "" {
		return ""
	}
	if selectedFlavor == "" {
		return productID
	}
	return productID + "_" + selectedFlavor
}

// ProductIDFromKey extracts the product id from a cart item key by taking
// everything before the first "_". Product ids containing "_" do not survive
// this parse.
func ProductIDFromKey(key string) string {
	id, _, _ := strings.Cut(key, "_")
	return id
}
