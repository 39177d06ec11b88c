package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry as the storefront sees it. Depending on the
// backend an identifier may arrive as id, _id or productId.
type Product struct {
	ID             string          `json:"id,omitempty"`
	LegacyID       string          `json:"_id,omitempty"`
	ProductID      string          `json:"productId,omitempty"`
	Name           string          `json:"name"`
	Description    string          `json:"description,omitempty"`
	Price          decimal.Decimal `json:"price"`
	SalePercentage decimal.Decimal `json:"salePercentage"`
	Flavors        []string        `json:"flavors,omitempty"`
	ImageURL       string          `json:"imageUrl,omitempty"`
	CreatedAt      time.Time       `json:"createdAt,omitempty"`
}

// Identifier resolves the product id in id, _id, productId order.
func (p *Product) Identifier() string {
	if p == nil {
		return ""
	}
	switch {
	case p.ID != "":
		return p.ID
	case p.LegacyID != "":
		return p.LegacyID
	default:
		return p.ProductID
	}
}
