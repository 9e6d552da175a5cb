package dispatcher

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/CSCI-GA-2820-FA24-001/shopcarts/internal/domain"
)

// MissingShopcartForSearch is flashed when an item search has no shopcart id.
const MissingShopcartForSearch = "Shopcart ID is required to search for items."

// NoItemsMessage is the empty-result message of a scan search filtered only
// by quantity or price.
const NoItemsMessage = "No items match the search criteria."

// ItemInput carries the item form fields as typed.
type ItemInput struct {
	ShopcartID  string
	ItemID      string
	Description string
	Quantity    string
	Price       string
}

func (in ItemInput) trimmed() ItemInput {
	return ItemInput{
		ShopcartID:  strings.TrimSpace(in.ShopcartID),
		ItemID:      strings.TrimSpace(in.ItemID),
		Description: in.Description,
		Quantity:    strings.TrimSpace(in.Quantity),
		Price:       strings.TrimSpace(in.Price),
	}
}

type itemWrite struct {
	ShopcartID string `label:"Shopcart ID" validate:"required,wholenum"`
	ItemID     string `label:"Item ID" validate:"required"`
	Quantity   string `label:"Quantity" validate:"required,wholenum"`
	Price      string `label:"Price" validate:"required,amount"`
}

type itemKey struct {
	ShopcartID string `label:"Shopcart ID" validate:"required,wholenum"`
	ItemID     string `label:"Item ID" validate:"required"`
}

type itemQuery struct {
	ShopcartID string `label:"Shopcart ID" validate:"required,wholenum"`
	Quantity   string `label:"Quantity" validate:"omitempty,wholenum"`
	Price      string `label:"Price" validate:"omitempty,amount"`
}

// body converts validated input into a request payload.
func (in ItemInput) body() (domain.ItemBody, error) {
	sid, err := strconv.ParseInt(in.ShopcartID, 10, 64)
	if err != nil {
		return domain.ItemBody{}, err
	}
	qty, err := strconv.Atoi(in.Quantity)
	if err != nil {
		return domain.ItemBody{}, err
	}
	price, err := strconv.ParseFloat(in.Price, 64)
	if err != nil {
		return domain.ItemBody{}, err
	}
	return domain.ItemBody{
		ShopcartID:  sid,
		ItemID:      in.ItemID,
		Description: in.Description,
		Quantity:    qty,
		Price:       price,
	}, nil
}

// CreateItem adds an item to a shopcart. Quantity and price must parse as a
// non-negative integer and a non-negative number; otherwise nothing is sent.
func (d *Dispatcher) CreateItem(ctx context.Context, in ItemInput) (domain.Item, error) {
	ctx, finish := d.start(ctx, "create_item")
	it, err := d.writeItem(ctx, http.MethodPost, in)
	finish(err)
	return it, err
}

// UpdateItem replaces an item's fields.
func (d *Dispatcher) UpdateItem(ctx context.Context, in ItemInput) (domain.Item, error) {
	ctx, finish := d.start(ctx, "update_item")
	it, err := d.writeItem(ctx, http.MethodPut, in)
	finish(err)
	return it, err
}

func (d *Dispatcher) writeItem(ctx context.Context, method string, in ItemInput) (domain.Item, error) {
	in = in.trimmed()
	if err := check(itemWrite{ShopcartID: in.ShopcartID, ItemID: in.ItemID, Quantity: in.Quantity, Price: in.Price}); err != nil {
		return domain.Item{}, err
	}
	body, err := in.body()
	if err != nil {
		return domain.Item{}, validationFailure("Invalid input.", err)
	}

	path := d.routes.items(in.ShopcartID)
	if method == http.MethodPut {
		path = d.routes.item(in.ShopcartID, in.ItemID)
	}
	var out domain.Item
	err = d.call(ctx, method, path, nil, body, &out)
	return out, err
}

// GetItem reads one item of a shopcart.
func (d *Dispatcher) GetItem(ctx context.Context, shopcartID, itemID string) (domain.Item, error) {
	ctx, finish := d.start(ctx, "get_item")
	it, err := d.getItem(ctx, shopcartID, itemID)
	finish(err)
	return it, err
}

func (d *Dispatcher) getItem(ctx context.Context, shopcartID, itemID string) (domain.Item, error) {
	key := itemKey{ShopcartID: strings.TrimSpace(shopcartID), ItemID: strings.TrimSpace(itemID)}
	if err := check(key); err != nil {
		return domain.Item{}, err
	}
	var out domain.Item
	err := d.call(ctx, http.MethodGet, d.routes.item(key.ShopcartID, key.ItemID), nil, nil, &out)
	return out, err
}

// DeleteItem removes one item from a shopcart.
func (d *Dispatcher) DeleteItem(ctx context.Context, shopcartID, itemID string) error {
	ctx, finish := d.start(ctx, "delete_item")
	err := d.deleteItem(ctx, shopcartID, itemID)
	finish(err)
	return err
}

func (d *Dispatcher) deleteItem(ctx context.Context, shopcartID, itemID string) error {
	key := itemKey{ShopcartID: strings.TrimSpace(shopcartID), ItemID: strings.TrimSpace(itemID)}
	if err := check(key); err != nil {
		return err
	}
	return d.call(ctx, http.MethodDelete, d.routes.item(key.ShopcartID, key.ItemID), nil, nil, nil)
}

// ItemSearchResult is the outcome of SearchItems. Match is set only by the
// scan strategy when an item id was requested and found.
type ItemSearchResult struct {
	Items []domain.Item
	Match *domain.Item
}

// SearchItems lists a shopcart's items using the configured strategy.
//
// With SearchServer the item_id, quantity and price filters are forwarded
// as query parameters. With SearchScan the full listing is fetched and, when
// any filter is given, the first item matching all of them is returned in
// Match; a miss is a KindEmptyResult failure, returned together with the
// listing.
func (d *Dispatcher) SearchItems(ctx context.Context, q ItemInput) (ItemSearchResult, error) {
	ctx, finish := d.start(ctx, "search_items")
	res, err := d.searchItems(ctx, q)
	finish(err)
	return res, err
}

func (d *Dispatcher) searchItems(ctx context.Context, q ItemInput) (ItemSearchResult, error) {
	q = q.trimmed()
	empty := ItemSearchResult{Items: []domain.Item{}}
	if q.ShopcartID == "" {
		return empty, validationFailure(MissingShopcartForSearch, nil)
	}
	if err := check(itemQuery{ShopcartID: q.ShopcartID, Quantity: q.Quantity, Price: q.Price}); err != nil {
		return empty, err
	}

	filters := url.Values{}
	if d.routes.Search == SearchServer {
		setIf(filters, "item_id", q.ItemID)
		setIf(filters, "quantity", q.Quantity)
		setIf(filters, "price", q.Price)
	}
	path, query := d.routes.itemListing(q.ShopcartID, filters)

	var items []domain.Item
	if err := d.call(ctx, http.MethodGet, path, query, nil, &items); err != nil {
		return empty, err
	}
	if items == nil {
		items = []domain.Item{}
	}
	res := ItemSearchResult{Items: items}

	if d.routes.Search == SearchScan {
		filter, err := q.filter()
		if err != nil {
			return empty, validationFailure(err.Error(), err)
		}
		if filter.Empty() {
			return res, nil
		}
		match, ok := filter.First(items)
		if !ok {
			if q.ItemID != "" {
				return res, emptyResult(fmt.Sprintf("Item with id '%s' was not found.", q.ItemID))
			}
			return res, emptyResult(NoItemsMessage)
		}
		res.Match = &match
	}
	return res, nil
}

// filter converts validated search input into an item filter.
func (in ItemInput) filter() (domain.ItemFilter, error) {
	f := domain.ItemFilter{ItemID: in.ItemID}
	if in.Quantity != "" {
		qty, err := strconv.Atoi(in.Quantity)
		if err != nil {
			return f, err
		}
		f.Quantity = &qty
	}
	if in.Price != "" {
		price, err := strconv.ParseFloat(in.Price, 64)
		if err != nil {
			return f, err
		}
		f.Price = &price
	}
	return f, nil
}

func setIf(v url.Values, key, value string) {
	if value != "" {
		v.Set(key, value)
	}
}
