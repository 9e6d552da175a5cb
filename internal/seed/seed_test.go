package seed

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CSCI-GA-2820-FA24-001/shopcarts/internal/dispatcher"
	"github.com/CSCI-GA-2820-FA24-001/shopcarts/internal/domain"
	"github.com/CSCI-GA-2820-FA24-001/shopcarts/internal/shopcarttest"
	"github.com/CSCI-GA-2820-FA24-001/shopcarts/pkg/httpclient"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newSeeder(t *testing.T) (*Seeder, *shopcarttest.API) {
	t.Helper()
	srv, api := shopcarttest.NewServer(t)
	client, err := httpclient.New(httpclient.Config{BaseURL: srv.URL, Timeout: 5 * time.Second, MaxConnsPerHost: 4})
	require.NoError(t, err)
	d, err := dispatcher.New(client, client, dispatcher.DefaultRoutes(), testLogger())
	require.NoError(t, err)
	return New(d, testLogger()), api
}

func cartNames(carts []domain.Shopcart) []string {
	names := make([]string, 0, len(carts))
	for _, c := range carts {
		names = append(names, c.Name)
	}
	return names
}

func TestLoad_ReplacesEverything(t *testing.T) {
	s, api := newSeeder(t)
	api.Seed("stale one")
	api.Seed("stale two", domain.Item{ItemID: "X"})

	created, err := s.Load(context.Background(), FixtureFromNames("Alice Cart", "Bob Cart", "Alice2"))

	require.NoError(t, err)
	assert.Equal(t, []string{"Alice Cart", "Bob Cart", "Alice2"}, cartNames(created))
	assert.Equal(t, []string{"Alice Cart", "Bob Cart", "Alice2"}, cartNames(api.Carts()))

	var posts int
	for _, r := range api.Requests() {
		if r.Method == http.MethodPost {
			posts++
			assert.JSONEq(t, `{"name":"`+cartNames(created)[posts-1]+`","items":[]}`, r.Body)
		}
	}
	assert.Equal(t, 3, posts)
}

func TestLoad_WithItems(t *testing.T) {
	s, api := newSeeder(t)
	f, err := ReadFixture(strings.NewReader(`{
		"shopcarts": [
			{"name": "Groceries", "items": [
				{"item_id": "A", "description": "Apple", "quantity": 3, "price": 0.5},
				{"item_id": "B", "description": "Bread", "quantity": 1, "price": 2}
			]},
			{"name": "Empty"}
		]
	}`))
	require.NoError(t, err)

	created, err := s.Load(context.Background(), f)

	require.NoError(t, err)
	require.Len(t, created, 2)
	require.Len(t, created[0].Items, 2)
	assert.Equal(t, 3, created[0].Items[0].Quantity)

	carts := api.Carts()
	require.Len(t, carts, 2)
	assert.Len(t, carts[0].Items, 2)
	assert.InDelta(t, 0.5, carts[0].Items[0].Price, 1e-9)
	assert.Empty(t, carts[1].Items)
}

func TestLoad_StopsOnFailure(t *testing.T) {
	s, api := newSeeder(t)
	api.Override(shopcarttest.Override{Method: http.MethodPost, Path: "/shopcarts", Status: http.StatusInternalServerError, Body: `{"message":"db down"}`})

	created, err := s.Load(context.Background(), FixtureFromNames("a", "b"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
	assert.Empty(t, created)
	assert.Empty(t, api.Carts())
}

func TestWipe(t *testing.T) {
	s, api := newSeeder(t)
	api.Seed("a")
	api.Seed("b")

	n, err := s.Wipe(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Empty(t, api.Carts())
}

func TestReadFixture_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `shopcarts: []`},
		{"missing name", `{"shopcarts":[{"name":""}]}`},
		{"missing item id", `{"shopcarts":[{"name":"a","items":[{"quantity":1}]}]}`},
		{"negative quantity", `{"shopcarts":[{"name":"a","items":[{"item_id":"x","quantity":-1}]}]}`},
		{"unknown field", `{"carts":[]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadFixture(strings.NewReader(tt.body))
			assert.Error(t, err)
		})
	}
}
