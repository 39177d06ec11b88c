package cartapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"storefront-cart/internal/domain"
)

// EnvelopeVersion identifies the set of response shapes decodeEnvelope accepts.
//
// Version 1: the payload is read from the first present, non-empty key in
// envelopeKeys, or from the bare body when none is present. The payload is
// either a JSON array of line items or an object with items/total/itemCount.
const EnvelopeVersion = 1

var envelopeKeys = []string{"data", "cart"}

var errNoPayload = errors.New("no payload")

// decodeEnvelope extracts the payload from a response body.
func decodeEnvelope(body []byte) (json.RawMessage, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, errNoPayload
	}
	if body[0] != '{' {
		if body[0] == '[' {
			return body, nil
		}
		return nil, errNoPayload
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil, err
	}
	for _, key := range envelopeKeys {
		if raw, ok := obj[key]; ok && present(raw) {
			return raw, nil
		}
	}
	return body, nil
}

// present treats null, false, "" and 0 as absent.
func present(raw json.RawMessage) bool {
	switch strings.TrimSpace(string(raw)) {
	case "", "null", "false", `""`, "0":
		return false
	}
	return true
}

func hasValue(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && string(raw) != "null"
}

// wireCart keeps the server totals raw; a total of the wrong type is ignored
// rather than failing the item list.
type wireCart struct {
	Items     []json.RawMessage `json:"items"`
	Total     json.RawMessage   `json:"total"`
	ItemCount json.RawMessage   `json:"itemCount"`
}

type wireItem struct {
	ProductID      flexID          `json:"productId"`
	LegacyID       flexID          `json:"_id"`
	ID             flexID          `json:"id"`
	Quantity       int             `json:"quantity"`
	Price          decimal.Decimal `json:"price"`
	SalePercentage decimal.Decimal `json:"salePercentage"`
	SelectedFlavor *string         `json:"selectedFlavor"`
	Name           string          `json:"name"`
	ImageURL       string          `json:"imageUrl"`
	Image          string          `json:"image"`
}

// decodeCart turns a payload into a Cart. Items that cannot be decoded or
// carry no product id are skipped; missing totals are recomputed.
func decodeCart(payload json.RawMessage) (domain.Cart, int, error) {
	payload = bytes.TrimSpace(payload)
	if len(payload) == 0 {
		return domain.Cart{}, 0, errNoPayload
	}

	var wc wireCart
	switch payload[0] {
	case '[':
		if err := json.Unmarshal(payload, &wc.Items); err != nil {
			return domain.Cart{}, 0, err
		}
	case '{':
		if err := json.Unmarshal(payload, &wc); err != nil {
			return domain.Cart{}, 0, err
		}
	default:
		return domain.Cart{}, 0, errNoPayload
	}

	items := make([]domain.LineItem, 0, len(wc.Items))
	skipped := 0
	for _, raw := range wc.Items {
		item, ok := decodeItem(raw)
		if !ok {
			skipped++
			continue
		}
		items = append(items, item)
	}

	qty, amount := domain.Totals(items)
	cart := domain.Cart{Items: items, Total: amount, ItemCount: qty}
	if hasValue(wc.Total) {
		var total decimal.Decimal
		if err := json.Unmarshal(wc.Total, &total); err == nil {
			cart.Total = total
		}
	}
	if hasValue(wc.ItemCount) {
		var count int
		if err := json.Unmarshal(wc.ItemCount, &count); err == nil {
			cart.ItemCount = count
		}
	}
	return cart, skipped, nil
}

func decodeItem(raw json.RawMessage) (domain.LineItem, bool) {
	var wi wireItem
	if err := json.Unmarshal(raw, &wi); err != nil {
		return domain.LineItem{}, false
	}
	id := firstNonEmpty(string(wi.ProductID), string(wi.LegacyID), string(wi.ID))
	if id == "" {
		return domain.LineItem{}, false
	}
	item := domain.LineItem{
		ProductID:      id,
		Quantity:       wi.Quantity,
		Price:          wi.Price,
		SalePercentage: wi.SalePercentage,
		Name:           wi.Name,
		ImageURL:       firstNonEmpty(wi.ImageURL, wi.Image),
	}
	if wi.SelectedFlavor != nil {
		item.SelectedFlavor = *wi.SelectedFlavor
	}
	return item, true
}

// decodeToken reads a token from {token} or an enveloped {data: {token}}.
func decodeToken(body []byte) (string, error) {
	payload, err := decodeEnvelope(body)
	if err != nil {
		return "", err
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(payload, &out); err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", errNoPayload
	}
	return out.Token, nil
}

// flexID decodes a product reference given as a string, a number, or an
// embedded object carrying _id or id.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexID(strings.TrimSpace(s))
	case '{':
		var ref struct {
			LegacyID flexID `json:"_id"`
			ID       flexID `json:"id"`
		}
		if err := json.Unmarshal(b, &ref); err != nil {
			return err
		}
		*f = flexID(firstNonEmpty(string(ref.LegacyID), string(ref.ID)))
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return err
		}
		if i, err := n.Int64(); err == nil {
			*f = flexID(strconv.FormatInt(i, 10))
		} else {
			*f = flexID(n.String())
		}
	}
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
