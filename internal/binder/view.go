package binder

import "github.com/CSCI-GA-2820-FA24-001/shopcarts/internal/domain"

// View is the whole console state: both forms, the flash banner and the two
// result tables. It is rebuilt on every action.
type View struct {
	Shopcart     ShopcartForm      `json:"shopcart"`
	Item         ItemForm          `json:"item"`
	Flash        Flash             `json:"flash"`
	ShopcartRows []domain.Shopcart `json:"shopcart_rows"`
	ItemRows     []domain.Item     `json:"item_rows"`
}

// ClearAll resets every field, the banner and both tables.
func ClearAll() View {
	return View{
		ShopcartRows: []domain.Shopcart{},
		ItemRows:     []domain.Item{},
	}
}

// WithFlash returns v showing message in the given style.
func (v View) WithFlash(message string, success bool) View {
	v.Flash = NewFlash(message, success)
	return v
}

// Normalized replaces nil tables with empty ones so JSON renders [] rather
// than null.
func (v View) Normalized() View {
	if v.ShopcartRows == nil {
		v.ShopcartRows = []domain.Shopcart{}
	}
	if v.ItemRows == nil {
		v.ItemRows = []domain.Item{}
	}
	return v
}
