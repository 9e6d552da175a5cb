package domain

import "strconv"

// Item is a line entry scoped to one shopcart. ItemID is the business
// identifier, unique within the shopcart; ID is an optional server row id.
type Item struct {
	ID          *int64  `json:"id,omitempty"`
	ShopcartID  int64   `json:"shopcart_id"`
	ItemID      string  `json:"item_id"`
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
}

// QuantityString renders Quantity for a form field.
func (i Item) QuantityString() string {
	return strconv.Itoa(i.Quantity)
}

// PriceString renders Price for a form field using the shortest exact
// representation, so 9.5 stays "9.5" and 3 stays "3".
func (i Item) PriceString() string {
	return strconv.FormatFloat(i.Price, 'f', -1, 64)
}

// ItemBody is the payload of item create and update requests.
type ItemBody struct {
	ShopcartID  int64   `json:"shopcart_id"`
	ItemID      string  `json:"item_id"`
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
}

// FindItem returns the first item whose ItemID equals itemID.
func FindItem(items []Item, itemID string) (Item, bool) {
	for _, it := range items {
		if it.ItemID == itemID {
			return it, true
		}
	}
	return Item{}, false
}

// ItemFilter selects items from a listing. Nil and empty fields match all.
type ItemFilter struct {
	ItemID   string
	Quantity *int
	Price    *float64
}

// Empty reports whether f has no predicate.
func (f ItemFilter) Empty() bool {
	return f.ItemID == "" && f.Quantity == nil && f.Price == nil
}

// Matches reports whether it satisfies every predicate set on f.
func (f ItemFilter) Matches(it Item) bool {
	if f.ItemID != "" && it.ItemID != f.ItemID {
		return false
	}
	if f.Quantity != nil && it.Quantity != *f.Quantity {
		return false
	}
	if f.Price != nil && it.Price != *f.Price {
		return false
	}
	return true
}

// First returns the first item in items that matches f.
func (f ItemFilter) First(items []Item) (Item, bool) {
	for _, it := range items {
		if f.Matches(it) {
			return it, true
		}
	}
	return Item{}, false
}
