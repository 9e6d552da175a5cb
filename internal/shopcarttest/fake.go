// Package shopcarttest provides an in-memory shopcart API for tests. It
// follows the reference service: nested item routes keyed by item_id, a flat
// item listing, PUT /clear, a /health endpoint and
// {"status": ..., "error": ..., "message": ...} errors.
package shopcarttest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/CSCI-GA-2820-FA24-001/shopcarts/internal/domain"
	"github.com/CSCI-GA-2820-FA24-001/shopcarts/pkg/httputil"
)

// Request is a request observed by the fake.
type Request struct {
	Method      string
	Path        string
	Query       string
	ContentType string
	Accept      string
	Body        string
}

// Override replaces the response to the next matching request.
type Override struct {
	Method string
	Path   string
	Status int
	Body   string
}

// API is an in-memory shopcart service.
type API struct {
	mu        sync.Mutex
	nextID    int64
	nextRowID int64
	carts     map[int64]*domain.Shopcart
	requests  []Request
	overrides []Override
	prefix    string
	itemsPath string
}

// New creates an empty API serving shopcarts under prefix and the flat item
// listing under itemsPath.
func New(prefix, itemsPath string) *API {
	return &API{
		nextID:    1,
		nextRowID: 1,
		carts:     make(map[int64]*domain.Shopcart),
		prefix:    prefix,
		itemsPath: itemsPath,
	}
}

// NewServer starts an httptest server for a fresh API with the default
// routes, closed when the test ends.
func NewServer(t testing.TB) (*httptest.Server, *API) {
	t.Helper()
	return NewServerWithRoutes(t, "/shopcarts", "/items")
}

// NewServerWithRoutes is NewServer with explicit route settings.
func NewServerWithRoutes(t testing.TB, prefix, itemsPath string) (*httptest.Server, *API) {
	t.Helper()
	api := New(prefix, itemsPath)
	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)
	return srv, api
}

// Seed stores a shopcart and returns it with its assigned id.
func (a *API) Seed(name string, items ...domain.Item) domain.Shopcart {
	a.mu.Lock()
	defer a.mu.Unlock()
	c := &domain.Shopcart{ID: a.nextID, Name: name, Items: []domain.Item{}}
	a.nextID++
	for _, it := range items {
		c.Items = append(c.Items, a.newRow(c.ID, it))
	}
	a.carts[c.ID] = c
	return cloneCart(c)
}

// Carts returns a snapshot of all shopcarts ordered by id.
func (a *API) Carts() []domain.Shopcart {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sortedLocked()
}

// Requests returns the requests seen so far.
func (a *API) Requests() []Request {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Request(nil), a.requests...)
}

// LastRequest returns the most recent request.
func (a *API) LastRequest() (Request, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.requests) == 0 {
		return Request{}, false
	}
	return a.requests[len(a.requests)-1], true
}

// Override makes the next request matching method and path answer with
// status and raw body.
func (a *API) Override(o Override) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.overrides = append(a.overrides, o)
}

// Handler returns the HTTP handler of the fake.
func (a *API) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(a.record)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]any{"status": 200, "message": "Healthy"})
	})

	r.Route(a.prefix, func(r chi.Router) {
		r.Get("/", a.listShopcarts)
		r.With(requireJSON).Post("/", a.createShopcart)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", a.getShopcart)
			r.With(requireJSON).Put("/", a.updateShopcart)
			r.Delete("/", a.deleteShopcart)
			r.Put("/clear", a.clearShopcart)
			r.Get("/items", a.listNestedItems)
			r.With(requireJSON).Post("/items", a.createItem)
			r.Get("/items/{itemID}", a.getItem)
			r.With(requireJSON).Put("/items/{itemID}", a.updateItem)
			r.Delete("/items/{itemID}", a.deleteItem)
		})
	})
	if a.itemsPath != "" {
		r.Get(a.itemsPath, a.listFlatItems)
	}
	return r
}

func (a *API) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = r.Body.Close()
		r.Body = io.NopCloser(strings.NewReader(string(body)))

		a.mu.Lock()
		a.requests = append(a.requests, Request{
			Method:      r.Method,
			Path:        r.URL.EscapedPath(),
			Query:       r.URL.RawQuery,
			ContentType: r.Header.Get("Content-Type"),
			Accept:      r.Header.Get("Accept"),
			Body:        string(body),
		})
		for i, o := range a.overrides {
			if o.Method == r.Method && o.Path == r.URL.EscapedPath() {
				a.overrides = append(a.overrides[:i], a.overrides[i+1:]...)
				a.mu.Unlock()
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(o.Status)
				_, _ = io.WriteString(w, o.Body)
				return
			}
		}
		a.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

func requireJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			httputil.WriteMessage(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *API) cartLocked(w http.ResponseWriter, r *http.Request) (*domain.Shopcart, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		httputil.WriteMessage(w, http.StatusNotFound, "The requested URL was not found on the server.")
		return nil, false
	}
	c, ok := a.carts[id]
	if !ok {
		httputil.WriteMessage(w, http.StatusNotFound, fmt.Sprintf("Shopcart with id '%d' was not found.", id))
		return nil, false
	}
	return c, true
}

func (a *API) listShopcarts(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	carts := a.sortedLocked()
	a.mu.Unlock()

	if name := r.URL.Query().Get("name"); name != "" {
		filtered := []domain.Shopcart{}
		for _, c := range carts {
			if c.Name == name {
				filtered = append(filtered, c)
			}
		}
		carts = filtered
	}
	httputil.WriteJSON(w, http.StatusOK, carts)
}

func (a *API) createShopcart(w http.ResponseWriter, r *http.Request) {
	var body domain.ShopcartBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Name == "" {
		httputil.WriteMessage(w, http.StatusBadRequest, "Invalid Shopcart: missing name")
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, a.Seed(body.Name))
}

func (a *API) getShopcart(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()
	c, ok := a.cartLocked(w, r)
	if !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, cloneCart(c))
}

func (a *API) updateShopcart(w http.ResponseWriter, r *http.Request) {
	var body domain.ShopcartBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Name == "" {
		httputil.WriteMessage(w, http.StatusBadRequest, "Invalid Shopcart: missing name")
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	c, ok := a.cartLocked(w, r)
	if !ok {
		return
	}
	c.Name = body.Name
	httputil.WriteJSON(w, http.StatusOK, cloneCart(c))
}

func (a *API) deleteShopcart(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64); err == nil {
		delete(a.carts, id)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) clearShopcart(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()
	c, ok := a.cartLocked(w, r)
	if !ok {
		return
	}
	c.Items = []domain.Item{}
	httputil.WriteJSON(w, http.StatusOK, cloneCart(c))
}

func (a *API) listNestedItems(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()
	c, ok := a.cartLocked(w, r)
	if !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, filterItems(c.Items, r))
}

func (a *API) listFlatItems(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()
	items := []domain.Item{}
	sid := r.URL.Query().Get("shopcart_id")
	for _, c := range a.sortedLocked() {
		if sid == "" || c.IDString() == sid {
			items = append(items, c.Items...)
		}
	}
	httputil.WriteJSON(w, http.StatusOK, filterItems(items, r))
}

// filterItems applies the item_id, quantity and price query filters by
// comparing their string forms.
func filterItems(items []domain.Item, r *http.Request) []domain.Item {
	q := r.URL.Query()
	out := []domain.Item{}
	for _, it := range items {
		if v := q.Get("item_id"); v != "" && it.ItemID != v {
			continue
		}
		if v := q.Get("quantity"); v != "" && it.QuantityString() != v {
			continue
		}
		if v := q.Get("price"); v != "" && it.PriceString() != v {
			if f, err := strconv.ParseFloat(v, 64); err != nil || f != it.Price {
				continue
			}
		}
		out = append(out, it)
	}
	return out
}

func (a *API) createItem(w http.ResponseWriter, r *http.Request) {
	var body domain.ItemBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.ItemID == "" {
		httputil.WriteMessage(w, http.StatusBadRequest, "Invalid Item: missing item_id")
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	c, ok := a.cartLocked(w, r)
	if !ok {
		return
	}
	if _, exists := domain.FindItem(c.Items, body.ItemID); exists {
		httputil.WriteMessage(w, http.StatusConflict, fmt.Sprintf("Item '%s' already exists in shopcart %d.", body.ItemID, c.ID))
		return
	}
	it := a.newRow(c.ID, domain.Item{
		ItemID:      body.ItemID,
		Description: body.Description,
		Quantity:    body.Quantity,
		Price:       body.Price,
	})
	c.Items = append(c.Items, it)
	httputil.WriteJSON(w, http.StatusCreated, it)
}

func (a *API) getItem(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()
	c, ok := a.cartLocked(w, r)
	if !ok {
		return
	}
	idx := itemIndex(c, itemParam(r))
	if idx < 0 {
		httputil.WriteMessage(w, http.StatusNotFound, fmt.Sprintf("Item with id '%s' could not be found.", itemParam(r)))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, c.Items[idx])
}

func (a *API) updateItem(w http.ResponseWriter, r *http.Request) {
	var body domain.ItemBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httputil.WriteMessage(w, http.StatusBadRequest, "Invalid Item: body is not JSON")
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	c, ok := a.cartLocked(w, r)
	if !ok {
		return
	}
	idx := itemIndex(c, itemParam(r))
	if idx < 0 {
		httputil.WriteMessage(w, http.StatusNotFound, fmt.Sprintf("Item with id '%s' could not be found.", itemParam(r)))
		return
	}
	it := &c.Items[idx]
	it.Description = body.Description
	it.Quantity = body.Quantity
	it.Price = body.Price
	httputil.WriteJSON(w, http.StatusOK, *it)
}

func (a *API) deleteItem(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()
	c, ok := a.cartLocked(w, r)
	if !ok {
		return
	}
	if idx := itemIndex(c, itemParam(r)); idx >= 0 {
		c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
	}
	w.WriteHeader(http.StatusNoContent)
}

func itemParam(r *http.Request) string {
	raw := chi.URLParam(r, "itemID")
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

func itemIndex(c *domain.Shopcart, itemID string) int {
	for i := range c.Items {
		if c.Items[i].ItemID == itemID {
			return i
		}
	}
	return -1
}

func (a *API) newRow(shopcartID int64, it domain.Item) domain.Item {
	row := a.nextRowID
	a.nextRowID++
	it.ID = &row
	it.ShopcartID = shopcartID
	return it
}

func (a *API) sortedLocked() []domain.Shopcart {
	out := make([]domain.Shopcart, 0, len(a.carts))
	for _, c := range a.carts {
		out = append(out, cloneCart(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func cloneCart(c *domain.Shopcart) domain.Shopcart {
	cp := *c
	cp.Items = append([]domain.Item{}, c.Items...)
	return cp
}
