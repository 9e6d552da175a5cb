// Package seed resets the shopcart API to a known set of shopcarts and items.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/CSCI-GA-2820-FA24-001/shopcarts/internal/dispatcher"
	"github.com/CSCI-GA-2820-FA24-001/shopcarts/internal/domain"
	"github.com/CSCI-GA-2820-FA24-001/shopcarts/pkg/validator"
)

// API is the part of the dispatcher the seeder uses.
type API interface {
	ListShopcarts(ctx context.Context) ([]domain.Shopcart, error)
	DeleteShopcart(ctx context.Context, id string) error
	CreateShopcart(ctx context.Context, name string) (domain.Shopcart, error)
	CreateItem(ctx context.Context, in dispatcher.ItemInput) (domain.Item, error)
}

// Fixture is the seed file format.
type Fixture struct {
	Shopcarts []Shopcart `json:"shopcarts" validate:"dive"`
}

// Shopcart is one shopcart to create, with its items.
type Shopcart struct {
	Name  string `json:"name" validate:"required"`
	Items []Item `json:"items" validate:"dive"`
}

// Item is one item to add to a seeded shopcart.
type Item struct {
	ItemID      string  `json:"item_id" validate:"required"`
	Description string  `json:"description"`
	Quantity    int     `json:"quantity" validate:"gte=0"`
	Price       float64 `json:"price" validate:"gte=0"`
}

// FixtureFromNames builds a fixture of empty shopcarts.
func FixtureFromNames(names ...string) Fixture {
	f := Fixture{Shopcarts: make([]Shopcart, 0, len(names))}
	for _, n := range names {
		f.Shopcarts = append(f.Shopcarts, Shopcart{Name: n})
	}
	return f
}

// ReadFixture decodes and validates a JSON fixture.
func ReadFixture(r io.Reader) (Fixture, error) {
	var f Fixture
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return Fixture{}, fmt.Errorf("decode fixture: %w", err)
	}
	if err := validator.Validate(f); err != nil {
		return Fixture{}, fmt.Errorf("invalid fixture: %w", err)
	}
	return f, nil
}

// Seeder wipes and repopulates the shopcart API.
type Seeder struct {
	api    API
	logger *slog.Logger
}

// New creates a seeder.
func New(api API, logger *slog.Logger) *Seeder {
	return &Seeder{api: api, logger: logger}
}

// Wipe deletes every shopcart and returns how many were removed.
func (s *Seeder) Wipe(ctx context.Context) (int, error) {
	carts, err := s.api.ListShopcarts(ctx)
	if err != nil {
		return 0, fmt.Errorf("list shopcarts: %w", err)
	}
	for i, c := range carts {
		if err := s.api.DeleteShopcart(ctx, c.IDString()); err != nil {
			return i, fmt.Errorf("delete shopcart %d: %w", c.ID, err)
		}
	}
	return len(carts), nil
}

// Load wipes the API and creates every shopcart in f in order, then its
// items. It stops at the first failure.
func (s *Seeder) Load(ctx context.Context, f Fixture) ([]domain.Shopcart, error) {
	removed, err := s.Wipe(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "shopcarts wiped", slog.Int("count", removed))

	created := make([]domain.Shopcart, 0, len(f.Shopcarts))
	for _, fc := range f.Shopcarts {
		cart, err := s.api.CreateShopcart(ctx, fc.Name)
		if err != nil {
			return created, fmt.Errorf("create shopcart %q: %w", fc.Name, err)
		}
		for _, it := range fc.Items {
			item, err := s.api.CreateItem(ctx, dispatcher.ItemInput{
				ShopcartID:  cart.IDString(),
				ItemID:      it.ItemID,
				Description: it.Description,
				Quantity:    strconv.Itoa(it.Quantity),
				Price:       strconv.FormatFloat(it.Price, 'f', -1, 64),
			})
			if err != nil {
				return created, fmt.Errorf("create item %q in shopcart %d: %w", it.ItemID, cart.ID, err)
			}
			cart.Items = append(cart.Items, item)
		}
		created = append(created, cart)
	}

	s.logger.InfoContext(ctx, "shopcarts seeded", slog.Int("count", len(created)))
	return created, nil
}
