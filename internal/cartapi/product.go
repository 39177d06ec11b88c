package cartapi

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"

	"storefront-cart/internal/domain"
)

type wireProduct struct {
	LegacyID       flexID           `json:"_id"`
	ID             flexID           `json:"id"`
	Name           string           `json:"name"`
	Title          string           `json:"title"`
	Description    string           `json:"description"`
	Short          string           `json:"shortDescription"`
	Price          decimal.Decimal  `json:"price"`
	Sale           *decimal.Decimal `json:"sale"`
	SalePercentage *decimal.Decimal `json:"salePercentage"`
	Image          string           `json:"image"`
	ImageURL       string           `json:"imageUrl"`
	Flavors        []string         `json:"flavors"`
}

// decodeProduct accepts {...product}, {product: {...}}, {data: {product: {...}}}
// and {data: {...}}, checked in that order.
func decodeProduct(body []byte) (domain.Product, error) {
	body = bytes.TrimSpace(body)
	var env struct {
		Product json.RawMessage `json:"product"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return domain.Product{}, err
	}
	payload := json.RawMessage(body)
	switch {
	case present(env.Product):
		payload = env.Product
	case present(env.Data):
		var inner struct {
			Product json.RawMessage `json:"product"`
		}
		if err := json.Unmarshal(env.Data, &inner); err == nil && present(inner.Product) {
			payload = inner.Product
		} else {
			payload = env.Data
		}
	}

	var wp wireProduct
	if err := json.Unmarshal(payload, &wp); err != nil {
		return domain.Product{}, err
	}
	p := domain.Product{
		ID:          firstNonEmpty(string(wp.LegacyID), string(wp.ID)),
		Name:        firstNonEmpty(wp.Name, wp.Title),
		Description: firstNonEmpty(wp.Description, wp.Short),
		Price:       wp.Price,
		Flavors:     wp.Flavors,
		ImageURL:    firstNonEmpty(wp.Image, wp.ImageURL),
	}
	switch {
	case wp.Sale != nil:
		p.SalePercentage = *wp.Sale
	case wp.SalePercentage != nil:
		p.SalePercentage = *wp.SalePercentage
	}
	if p.ID == "" {
		return domain.Product{}, domain.ErrMissingProduct
	}
	return p, nil
}
