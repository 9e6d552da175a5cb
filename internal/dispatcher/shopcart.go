package dispatcher

import (
	"context"
	"net/http"
	"strings"

	"github.com/CSCI-GA-2820-FA24-001/shopcarts/internal/domain"
)

// NoShopcartsMessage is the empty-result message of a shopcart search.
const NoShopcartsMessage = "No shopcarts match the search criteria."

type shopcartName struct {
	Name string `label:"Name" validate:"required"`
}

type shopcartID struct {
	ID string `label:"Shopcart ID" validate:"required,wholenum"`
}

type shopcartIDName struct {
	ID   string `label:"Shopcart ID" validate:"required,wholenum"`
	Name string `label:"Name" validate:"required"`
}

// CreateShopcart creates a shopcart called name. The id is assigned by the
// server and never sent.
func (d *Dispatcher) CreateShopcart(ctx context.Context, name string) (domain.Shopcart, error) {
	ctx, finish := d.start(ctx, "create_shopcart")
	s, err := d.createShopcart(ctx, name)
	finish(err)
	return s, err
}

func (d *Dispatcher) createShopcart(ctx context.Context, name string) (domain.Shopcart, error) {
	if err := check(shopcartName{Name: name}); err != nil {
		return domain.Shopcart{}, err
	}
	var out domain.Shopcart
	err := d.call(ctx, http.MethodPost, d.routes.shopcarts(), nil, domain.NewShopcartBody(name), &out)
	return out, err
}

// UpdateShopcart renames shopcart id. Items are sent empty; the reference
// service leaves existing items in place.
func (d *Dispatcher) UpdateShopcart(ctx context.Context, id, name string) (domain.Shopcart, error) {
	ctx, finish := d.start(ctx, "update_shopcart")
	s, err := d.updateShopcart(ctx, id, name)
	finish(err)
	return s, err
}

func (d *Dispatcher) updateShopcart(ctx context.Context, id, name string) (domain.Shopcart, error) {
	id = strings.TrimSpace(id)
	if err := check(shopcartIDName{ID: id, Name: name}); err != nil {
		return domain.Shopcart{}, err
	}
	var out domain.Shopcart
	err := d.call(ctx, http.MethodPut, d.routes.shopcart(id), nil, domain.NewShopcartBody(name), &out)
	return out, err
}

// GetShopcart reads shopcart id.
func (d *Dispatcher) GetShopcart(ctx context.Context, id string) (domain.Shopcart, error) {
	ctx, finish := d.start(ctx, "get_shopcart")
	s, err := d.shopcartByID(ctx, http.MethodGet, id, false)
	finish(err)
	return s, err
}

// ClearShopcart empties shopcart id of all its items and returns the result.
func (d *Dispatcher) ClearShopcart(ctx context.Context, id string) (domain.Shopcart, error) {
	ctx, finish := d.start(ctx, "clear_shopcart")
	s, err := d.shopcartByID(ctx, http.MethodPut, id, true)
	finish(err)
	return s, err
}

func (d *Dispatcher) shopcartByID(ctx context.Context, method, id string, clear bool) (domain.Shopcart, error) {
	id = strings.TrimSpace(id)
	if err := check(shopcartID{ID: id}); err != nil {
		return domain.Shopcart{}, err
	}
	path := d.routes.shopcart(id)
	if clear {
		path = d.routes.clearShopcart(id)
	}
	var out domain.Shopcart
	err := d.call(ctx, method, path, nil, nil, &out)
	return out, err
}

// DeleteShopcart deletes shopcart id.
func (d *Dispatcher) DeleteShopcart(ctx context.Context, id string) error {
	ctx, finish := d.start(ctx, "delete_shopcart")
	err := d.deleteShopcart(ctx, id)
	finish(err)
	return err
}

func (d *Dispatcher) deleteShopcart(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if err := check(shopcartID{ID: id}); err != nil {
		return err
	}
	return d.call(ctx, http.MethodDelete, d.routes.shopcart(id), nil, nil, nil)
}

// ListShopcarts returns every shopcart. The result is never nil on success.
func (d *Dispatcher) ListShopcarts(ctx context.Context) ([]domain.Shopcart, error) {
	ctx, finish := d.start(ctx, "list_shopcarts")
	carts, err := d.listShopcarts(ctx)
	finish(err)
	return carts, err
}

func (d *Dispatcher) listShopcarts(ctx context.Context) ([]domain.Shopcart, error) {
	var out []domain.Shopcart
	if err := d.call(ctx, http.MethodGet, d.routes.shopcarts(), nil, nil, &out); err != nil {
		return []domain.Shopcart{}, err
	}
	if out == nil {
		out = []domain.Shopcart{}
	}
	return out, nil
}

// SearchShopcarts lists every shopcart and keeps those matching filter. The
// filtering happens here rather than through ?name=, because the service
// matches names exactly while the console matches substrings. No match is a
// KindEmptyResult failure carrying NoShopcartsMessage and an empty slice.
func (d *Dispatcher) SearchShopcarts(ctx context.Context, filter domain.ShopcartFilter) ([]domain.Shopcart, error) {
	ctx, finish := d.start(ctx, "search_shopcarts")
	carts, err := d.searchShopcarts(ctx, filter)
	finish(err)
	return carts, err
}

func (d *Dispatcher) searchShopcarts(ctx context.Context, filter domain.ShopcartFilter) ([]domain.Shopcart, error) {
	all, err := d.listShopcarts(ctx)
	if err != nil {
		return all, err
	}
	filter.ID = strings.TrimSpace(filter.ID)
	matched := filter.Filter(all)
	if len(matched) == 0 {
		return matched, emptyResult(NoShopcartsMessage)
	}
	return matched, nil
}
