package domain

import (
	"strconv"
	"strings"
)

// Shopcart is a named collection of items as returned by the shopcart API.
// ID is assigned by the server.
type Shopcart struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Items []Item `json:"items"`
}

// IDString renders the id the way it appears in the id form field.
func (s Shopcart) IDString() string {
	return strconv.FormatInt(s.ID, 10)
}

// ShopcartBody is the payload of create and update requests. Items is always
// sent, and always empty: items are managed through their own endpoints.
type ShopcartBody struct {
	Name  string `json:"name"`
	Items []Item `json:"items"`
}

// NewShopcartBody builds a create/update payload for name.
func NewShopcartBody(name string) ShopcartBody {
	return ShopcartBody{Name: name, Items: []Item{}}
}

// ShopcartFilter selects shopcarts from a listing. Empty fields match all.
type ShopcartFilter struct {
	ID   string
	Name string
}

// Matches reports whether s passes both predicates: the decimal id equals
// f.ID, and s.Name contains f.Name (case-sensitive).
func (f ShopcartFilter) Matches(s Shopcart) bool {
	if f.ID != "" && s.IDString() != f.ID {
		return false
	}
	if f.Name != "" && !strings.Contains(s.Name, f.Name) {
		return false
	}
	return true
}

// Filter returns the shopcarts matching f, preserving order. The result is
// never nil.
func (f ShopcartFilter) Filter(carts []Shopcart) []Shopcart {
	out := make([]Shopcart, 0, len(carts))
	for _, c := range carts {
		if f.Matches(c) {
			out = append(out, c)
		}
	}
	return out
}
