package console

import (
	apperrors "github.com/CSCI-GA-2820-FA24-001/shopcarts/pkg/errors"
)

// Action names one button of the console.
type Action string

const (
	CreateShopcart   Action = "create_shopcart"
	UpdateShopcart   Action = "update_shopcart"
	RetrieveShopcart Action = "retrieve_shopcart"
	DeleteShopcart   Action = "delete_shopcart"
	ClearShopcart    Action = "clear_shopcart"
	SearchShopcarts  Action = "search_shopcarts"
	CreateItem       Action = "create_item"
	UpdateItem       Action = "update_item"
	RetrieveItem     Action = "retrieve_item"
	DeleteItem       Action = "delete_item"
	SearchItems      Action = "search_items"
	Reset            Action = "reset"
)

var actions = []Action{
	CreateShopcart,
	UpdateShopcart,
	RetrieveShopcart,
	DeleteShopcart,
	ClearShopcart,
	SearchShopcarts,
	CreateItem,
	UpdateItem,
	RetrieveItem,
	DeleteItem,
	SearchItems,
	Reset,
}

// Actions lists every known action in button order.
func Actions() []Action {
	return append([]Action(nil), actions...)
}

// ParseAction resolves an action name. Unknown names are a NOT_FOUND error.
func ParseAction(name string) (Action, error) {
	for _, a := range actions {
		if string(a) == name {
			return a, nil
		}
	}
	return "", apperrors.NotFound("action", name)
}
