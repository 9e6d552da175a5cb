// Package console turns a user action and the current view into the next
// view, calling the shopcart API through the dispatcher.
package console

import (
	"context"
	"log/slog"

	"github.com/CSCI-GA-2820-FA24-001/shopcarts/internal/binder"
	"github.com/CSCI-GA-2820-FA24-001/shopcarts/internal/dispatcher"
	"github.com/CSCI-GA-2820-FA24-001/shopcarts/internal/domain"
	"github.com/CSCI-GA-2820-FA24-001/shopcarts/pkg/httpclient"
	"github.com/CSCI-GA-2820-FA24-001/shopcarts/pkg/logger"
)

// Flash texts shown on success, and on a failed shopcart delete.
const (
	MsgShopcartCreated   = "Shopcart created successfully!"
	MsgShopcartUpdated   = "Shopcart updated successfully!"
	MsgShopcartRetrieved = "Shopcart retrieved successfully!"
	MsgShopcartDeleted   = "Shopcart has been deleted!"
	MsgShopcartCleared   = "Shopcart has been cleared!"
	MsgShopcartsLoaded   = "Shopcarts loaded successfully!"
	MsgItemCreated       = "Item created successfully!"
	MsgItemUpdated       = "Item updated successfully!"
	MsgItemRetrieved     = "Item retrieved successfully!"
	MsgItemDeleted       = "Item has been deleted!"
	MsgItemsLoaded       = "Items loaded successfully!"
	MsgServerError       = httpclient.FallbackMessage
	MsgUnknownAction     = "Unknown action."
)

// Dispatcher is the subset of *dispatcher.Dispatcher the console drives.
type Dispatcher interface {
	CreateShopcart(ctx context.Context, name string) (domain.Shopcart, error)
	UpdateShopcart(ctx context.Context, id, name string) (domain.Shopcart, error)
	GetShopcart(ctx context.Context, id string) (domain.Shopcart, error)
	DeleteShopcart(ctx context.Context, id string) error
	ClearShopcart(ctx context.Context, id string) (domain.Shopcart, error)
	SearchShopcarts(ctx context.Context, filter domain.ShopcartFilter) ([]domain.Shopcart, error)
	CreateItem(ctx context.Context, in dispatcher.ItemInput) (domain.Item, error)
	UpdateItem(ctx context.Context, in dispatcher.ItemInput) (domain.Item, error)
	GetItem(ctx context.Context, shopcartID, itemID string) (domain.Item, error)
	DeleteItem(ctx context.Context, shopcartID, itemID string) error
	SearchItems(ctx context.Context, q dispatcher.ItemInput) (dispatcher.ItemSearchResult, error)
}

// Console reduces actions into views. It keeps no state between calls and
// is safe for concurrent use.
type Console struct {
	api    Dispatcher
	logger *slog.Logger
}

// New creates a console over api.
func New(api Dispatcher, logger *slog.Logger) *Console {
	return &Console{api: api, logger: logger}
}

// Handle applies action to v and returns the resulting view. Every outcome,
// including failures, is reported through the view's flash banner.
func (c *Console) Handle(ctx context.Context, action Action, v binder.View) binder.View {
	ctx = logger.WithAction(ctx, string(action))
	v = v.Normalized()
	v.Flash = binder.Flash{}

	var next binder.View
	switch action {
	case CreateShopcart:
		next = c.createShopcart(ctx, v)
	case UpdateShopcart:
		next = c.updateShopcart(ctx, v)
	case RetrieveShopcart:
		next = c.retrieveShopcart(ctx, v)
	case DeleteShopcart:
		next = c.deleteShopcart(ctx, v)
	case ClearShopcart:
		next = c.clearShopcart(ctx, v)
	case SearchShopcarts:
		next = c.searchShopcarts(ctx, v)
	case CreateItem:
		next = c.writeItem(ctx, v, c.api.CreateItem, MsgItemCreated)
	case UpdateItem:
		next = c.writeItem(ctx, v, c.api.UpdateItem, MsgItemUpdated)
	case RetrieveItem:
		next = c.retrieveItem(ctx, v)
	case DeleteItem:
		next = c.deleteItem(ctx, v)
	case SearchItems:
		next = c.searchItems(ctx, v)
	case Reset:
		next = binder.ClearAll()
	default:
		next = v.WithFlash(MsgUnknownAction, false)
	}

	c.log(ctx).DebugContext(ctx, "console action handled",
		slog.Bool("success", next.Flash.Success()),
		slog.String("flash", next.Flash.Message),
	)
	return next.Normalized()
}

func fail(v binder.View, err error) binder.View {
	return v.WithFlash(message(err), false)
}

// message is the flash text for err: the failure's own message, or the
// generic server error when err carries none.
func message(err error) string {
	if f, ok := dispatcher.AsFailure(err); ok && f.Message != "" {
		return f.Message
	}
	return MsgServerError
}

func (c *Console) log(ctx context.Context) *slog.Logger {
	return logger.WithContext(ctx, c.logger)
}
