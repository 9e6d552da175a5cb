package console

import (
	"context"

	"github.com/CSCI-GA-2820-FA24-001/shopcarts/internal/binder"
	"github.com/CSCI-GA-2820-FA24-001/shopcarts/internal/dispatcher"
	"github.com/CSCI-GA-2820-FA24-001/shopcarts/internal/domain"
)

type itemWriter func(ctx context.Context, in dispatcher.ItemInput) (domain.Item, error)

func itemInput(f binder.ItemForm) dispatcher.ItemInput {
	return dispatcher.ItemInput{
		ShopcartID:  f.ShopcartID,
		ItemID:      f.ItemID,
		Description: f.Description,
		Quantity:    f.Quantity,
		Price:       f.Price,
	}
}

func (c *Console) writeItem(ctx context.Context, v binder.View, write itemWriter, success string) binder.View {
	it, err := write(ctx, itemInput(v.Item))
	if err != nil {
		return fail(v, err)
	}
	v.Item = binder.PopulateItem(v.Item, it)
	return v.WithFlash(success, true)
}

func (c *Console) retrieveItem(ctx context.Context, v binder.View) binder.View {
	it, err := c.api.GetItem(ctx, v.Item.ShopcartID, v.Item.ItemID)
	if err != nil {
		v.Item = binder.ClearItemForm()
		return fail(v, err)
	}
	v.Item = binder.PopulateItem(v.Item, it)
	return v.WithFlash(MsgItemRetrieved, true)
}

func (c *Console) deleteItem(ctx context.Context, v binder.View) binder.View {
	if err := c.api.DeleteItem(ctx, v.Item.ShopcartID, v.Item.ItemID); err != nil {
		return fail(v, err)
	}
	v.Item = binder.ClearItemForm()
	return v.WithFlash(MsgItemDeleted, true)
}

// searchItems renders the listing. When the scan strategy picked a match it
// is written into the item form; a scan miss leaves the form untouched.
func (c *Console) searchItems(ctx context.Context, v binder.View) binder.View {
	res, err := c.api.SearchItems(ctx, itemInput(v.Item))
	switch {
	case err == nil:
		v.ItemRows = res.Items
		if res.Match != nil {
			v.Item = binder.PopulateItem(v.Item, *res.Match)
		}
		return v.WithFlash(MsgItemsLoaded, true)
	case dispatcher.IsKind(err, dispatcher.KindEmptyResult):
		v.ItemRows = res.Items
		return fail(v, err)
	default:
		return fail(v, err)
	}
}
