package http

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"net/url"

	"github.com/CSCI-GA-2820-FA24-001/shopcarts/internal/binder"
	"github.com/CSCI-GA-2820-FA24-001/shopcarts/internal/console"
)

//go:embed templates/console.html
var templates embed.FS

// Form field names. They match the element ids of the page.
const (
	fieldShopcartID      = "shopcart_id"
	fieldShopcartName    = "shopcart_name"
	fieldItemShopcartID  = "item_shopcart_id"
	fieldItemID          = "item_id"
	fieldItemDescription = "item_description"
	fieldItemQuantity    = "item_quantity"
	fieldItemPrice       = "item_price"
)

type button struct {
	ID     string
	Action console.Action
	Label  string
}

var buttons = []button{
	{"create-shopcart-btn", console.CreateShopcart, "Create"},
	{"retrieve-shopcart-btn", console.RetrieveShopcart, "Retrieve"},
	{"update-shopcart-btn", console.UpdateShopcart, "Update"},
	{"delete-shopcart-btn", console.DeleteShopcart, "Delete"},
	{"clear-items-btn", console.ClearShopcart, "Empty Cart"},
	{"search-shopcart-btn", console.SearchShopcarts, "Search"},
	{"create-item-btn", console.CreateItem, "Add Item"},
	{"retrieve-item-btn", console.RetrieveItem, "Retrieve Item"},
	{"update-item-btn", console.UpdateItem, "Update Item"},
	{"delete-item-btn", console.DeleteItem, "Delete Item"},
	{"search-item-btn", console.SearchItems, "Search Items"},
	{"clear-shopcart-btn", console.Reset, "Clear"},
}

type pageData struct {
	ActionPath string
	View       binder.View
	Buttons    []button
}

type page struct {
	tmpl *template.Template
}

func newPage() (*page, error) {
	tmpl, err := template.ParseFS(templates, "templates/console.html")
	if err != nil {
		return nil, fmt.Errorf("parse console template: %w", err)
	}
	return &page{tmpl: tmpl}, nil
}

// render writes the page for v. The template is executed into a buffer first
// so a failure can still produce a clean error response.
func (p *page) render(w http.ResponseWriter, status int, v binder.View) error {
	var buf bytes.Buffer
	data := pageData{ActionPath: formActionPrefix, View: v.Normalized(), Buttons: buttons}
	if err := p.tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("render console page: %w", err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
	return nil
}

// viewFromForm reads both forms from posted fields. Result tables are not
// part of the form and start empty.
func viewFromForm(f url.Values) binder.View {
	return binder.View{
		Shopcart: binder.ShopcartForm{
			ID:   f.Get(fieldShopcartID),
			Name: f.Get(fieldShopcartName),
		},
		Item: binder.ItemForm{
			ShopcartID:  f.Get(fieldItemShopcartID),
			ItemID:      f.Get(fieldItemID),
			Description: f.Get(fieldItemDescription),
			Quantity:    f.Get(fieldItemQuantity),
			Price:       f.Get(fieldItemPrice),
		},
	}.Normalized()
}
