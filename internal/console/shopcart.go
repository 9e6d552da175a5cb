package console

import (
	"context"

	"github.com/CSCI-GA-2820-FA24-001/shopcarts/internal/binder"
	"github.com/CSCI-GA-2820-FA24-001/shopcarts/internal/dispatcher"
	"github.com/CSCI-GA-2820-FA24-001/shopcarts/internal/domain"
)

func (c *Console) createShopcart(ctx context.Context, v binder.View) binder.View {
	// The server assigns the id.
	v.Shopcart.ID = ""
	s, err := c.api.CreateShopcart(ctx, v.Shopcart.Name)
	if err != nil {
		return fail(v, err)
	}
	v.Shopcart = binder.PopulateShopcart(v.Shopcart, s)
	return v.WithFlash(MsgShopcartCreated, true)
}

func (c *Console) updateShopcart(ctx context.Context, v binder.View) binder.View {
	s, err := c.api.UpdateShopcart(ctx, v.Shopcart.ID, v.Shopcart.Name)
	if err != nil {
		return fail(v, err)
	}
	v.Shopcart = binder.PopulateShopcart(v.Shopcart, s)
	return v.WithFlash(MsgShopcartUpdated, true)
}

func (c *Console) retrieveShopcart(ctx context.Context, v binder.View) binder.View {
	s, err := c.api.GetShopcart(ctx, v.Shopcart.ID)
	if err != nil {
		v.Shopcart = binder.ClearShopcartForm()
		return fail(v, err)
	}
	v.Shopcart = binder.PopulateShopcart(v.Shopcart, s)
	return v.WithFlash(MsgShopcartRetrieved, true)
}

func (c *Console) deleteShopcart(ctx context.Context, v binder.View) binder.View {
	err := c.api.DeleteShopcart(ctx, v.Shopcart.ID)
	switch {
	case err == nil:
		v.Shopcart = binder.ClearShopcartForm()
		return v.WithFlash(MsgShopcartDeleted, true)
	case dispatcher.IsKind(err, dispatcher.KindValidation):
		return fail(v, err)
	default:
		// Server-reported details are not shown for deletes.
		return v.WithFlash(MsgServerError, false)
	}
}

func (c *Console) clearShopcart(ctx context.Context, v binder.View) binder.View {
	s, err := c.api.ClearShopcart(ctx, v.Shopcart.ID)
	if err != nil {
		return fail(v, err)
	}
	v.Shopcart = binder.PopulateShopcart(v.Shopcart, s)
	return v.WithFlash(MsgShopcartCleared, true)
}

func (c *Console) searchShopcarts(ctx context.Context, v binder.View) binder.View {
	rows, err := c.api.SearchShopcarts(ctx, domain.ShopcartFilter{ID: v.Shopcart.ID, Name: v.Shopcart.Name})
	switch {
	case err == nil:
		v.ShopcartRows = rows
		return v.WithFlash(MsgShopcartsLoaded, true)
	case dispatcher.IsKind(err, dispatcher.KindEmptyResult):
		v.ShopcartRows = rows
		return fail(v, err)
	default:
		return fail(v, err)
	}
}
