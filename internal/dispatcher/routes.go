package dispatcher

import (
	"fmt"
	"net/url"
	"strings"
)

// Addressing selects how a shopcart's item listing is requested.
type Addressing string

const (
	// Nested lists items at {prefix}/{id}/items.
	Nested Addressing = "nested"
	// Flat lists items at {items}?shopcart_id={id}.
	Flat Addressing = "flat"
)

// SearchStrategy selects who filters an item search.
type SearchStrategy string

const (
	// SearchServer forwards item_id, quantity and price as query parameters
	// and renders whatever comes back.
	SearchServer SearchStrategy = "server"
	// SearchScan fetches the full listing and picks the first item whose
	// item_id matches.
	SearchScan SearchStrategy = "scan"
)

// Routes is the URL contract of the shopcart API. Item create, read, update
// and delete always use the nested sub-resource; only listing varies.
type Routes struct {
	Prefix     string
	ItemsPath  string
	Addressing Addressing
	Search     SearchStrategy
}

// DefaultRoutes is the contract of the reference shopcart service.
func DefaultRoutes() Routes {
	return Routes{
		Prefix:     "/shopcarts",
		ItemsPath:  "/items",
		Addressing: Nested,
		Search:     SearchServer,
	}
}

func (r Routes) validate() error {
	if !strings.HasPrefix(r.Prefix, "/") || len(r.Prefix) < 2 {
		return fmt.Errorf("route prefix %q must start with / and name a resource", r.Prefix)
	}
	switch r.Addressing {
	case Nested:
	case Flat:
		if !strings.HasPrefix(r.ItemsPath, "/") {
			return fmt.Errorf("items path %q must start with /", r.ItemsPath)
		}
	default:
		return fmt.Errorf("unknown item addressing %q", r.Addressing)
	}
	if r.Search != SearchServer && r.Search != SearchScan {
		return fmt.Errorf("unknown item search strategy %q", r.Search)
	}
	return nil
}

func (r Routes) shopcarts() string {
	return r.Prefix
}

func (r Routes) shopcart(id string) string {
	return r.Prefix + "/" + url.PathEscape(id)
}

func (r Routes) clearShopcart(id string) string {
	return r.shopcart(id) + "/clear"
}

func (r Routes) items(shopcartID string) string {
	return r.shopcart(shopcartID) + "/items"
}

func (r Routes) item(shopcartID, itemID string) string {
	return r.items(shopcartID) + "/" + url.PathEscape(itemID)
}

// itemListing returns the path and query for listing a shopcart's items
// with the given extra filters.
func (r Routes) itemListing(shopcartID string, filters url.Values) (string, url.Values) {
	q := url.Values{}
	for k, vs := range filters {
		q[k] = append([]string(nil), vs...)
	}
	if r.Addressing == Flat {
		q.Set("shopcart_id", shopcartID)
		return r.ItemsPath, q
	}
	return r.items(shopcartID), q
}
