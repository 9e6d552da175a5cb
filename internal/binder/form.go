// Package binder holds the console's view-model and the pure functions that
// move records in and out of it. Nothing here performs I/O.
package binder

import "github.com/CSCI-GA-2820-FA24-001/shopcarts/internal/domain"

// ShopcartForm mirrors the shopcart input fields, exactly as typed.
type ShopcartForm struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ItemForm mirrors the item input fields, exactly as typed.
type ItemForm struct {
	ShopcartID  string `json:"shopcart_id"`
	ItemID      string `json:"item_id"`
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	Price       string `json:"price"`
}

// PopulateShopcart writes the record's id and name into form. A zero id
// means the response carried none, and the field is left as it was.
func PopulateShopcart(form ShopcartForm, s domain.Shopcart) ShopcartForm {
	if s.ID != 0 {
		form.ID = s.IDString()
	}
	form.Name = s.Name
	return form
}

// PopulateItem writes item_id, description, quantity and price into form,
// and the shopcart id when the record carries one.
func PopulateItem(form ItemForm, it domain.Item) ItemForm {
	if it.ShopcartID != 0 {
		form.ShopcartID = formatID(it.ShopcartID)
	}
	form.ItemID = it.ItemID
	form.Description = it.Description
	form.Quantity = it.QuantityString()
	form.Price = it.PriceString()
	return form
}

// ClearShopcartForm returns an empty shopcart form.
func ClearShopcartForm() ShopcartForm {
	return ShopcartForm{}
}

// ClearItemForm returns an empty item form.
func ClearItemForm() ItemForm {
	return ItemForm{}
}

func formatID(id int64) string {
	return domain.Shopcart{ID: id}.IDString()
}
