package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/CSCI-GA-2820-FA24-001/shopcarts/internal/binder"
	"github.com/CSCI-GA-2820-FA24-001/shopcarts/internal/console"
	"github.com/CSCI-GA-2820-FA24-001/shopcarts/internal/dispatcher"
	"github.com/CSCI-GA-2820-FA24-001/shopcarts/internal/domain"
	"github.com/CSCI-GA-2820-FA24-001/shopcarts/internal/shopcarttest"
	"github.com/CSCI-GA-2820-FA24-001/shopcarts/pkg/health"
	"github.com/CSCI-GA-2820-FA24-001/shopcarts/pkg/httpclient"
	"github.com/CSCI-GA-2820-FA24-001/shopcarts/pkg/httputil"
	pkgmiddleware "github.com/CSCI-GA-2820-FA24-001/shopcarts/pkg/middleware"
)

// =============================================================================
// Mock console
// =============================================================================

type mockConsole struct {
	mock.Mock
}

func (m *mockConsole) Handle(ctx context.Context, action console.Action, v binder.View) binder.View {
	args := m.Called(ctx, action, v)
	return args.Get(0).(binder.View)
}

// =============================================================================
// Test helpers
// =============================================================================

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestRouter(t *testing.T, c ActionHandler, limiter *pkgmiddleware.RateLimiter) http.Handler {
	t.Helper()
	h, err := NewConsoleHandler(c, testLogger())
	require.NoError(t, err)
	if limiter == nil {
		limiter = pkgmiddleware.NewRateLimiter(0, 1, testLogger())
	}
	t.Cleanup(limiter.Close)
	return NewRouter(RouterConfig{CORSAllowedOrigins: []string{"*"}}, h, health.NewHandler(time.Second), limiter, testLogger())
}

func postForm(router http.Handler, action string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/actions/"+action, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func postJSON(router http.Handler, action, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/actions/"+action, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeView(t *testing.T, rec *httptest.ResponseRecorder) binder.View {
	t.Helper()
	var v binder.View
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

// =============================================================================
// Tests
// =============================================================================

func TestPage(t *testing.T) {
	router := newTestRouter(t, new(mockConsole), nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	body := rec.Body.String()
	assert.Contains(t, body, `id="shopcart_id"`)
	assert.Contains(t, body, `formaction="/actions/search_items"`)
	assert.Contains(t, body, `formaction="/actions/reset"`)
	assert.NotContains(t, body, "alert-")
}

func TestFormAction(t *testing.T) {
	c := new(mockConsole)
	router := newTestRouter(t, c, nil)

	posted := binder.View{
		Shopcart: binder.ShopcartForm{Name: "Groceries"},
		Item:     binder.ItemForm{ItemID: "A", Quantity: "2"},
	}.Normalized()
	result := posted
	result.Shopcart.ID = "12"
	result = result.WithFlash(console.MsgShopcartCreated, true)
	c.On("Handle", mock.Anything, console.CreateShopcart, posted).Return(result)

	rec := postForm(router, "create_shopcart", url.Values{
		"shopcart_name": {"Groceries"},
		"item_id":       {"A"},
		"item_quantity": {"2"},
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `value="12"`)
	assert.Contains(t, body, `class="alert alert-success"`)
	assert.Contains(t, body, console.MsgShopcartCreated)
	c.AssertExpectations(t)
}

func TestFormAction_EscapesValues(t *testing.T) {
	c := new(mockConsole)
	router := newTestRouter(t, c, nil)
	v := binder.ClearAll().WithFlash(`<script>alert("x")</script>`, false)
	v.ShopcartRows = []domain.Shopcart{{ID: 1, Name: "<b>bold</b>"}}
	c.On("Handle", mock.Anything, console.SearchShopcarts, mock.Anything).Return(v)

	rec := postForm(router, "search_shopcarts", url.Values{})

	body := rec.Body.String()
	assert.NotContains(t, body, "<script>")
	assert.NotContains(t, body, "<b>bold</b>")
	assert.Contains(t, body, "&lt;b&gt;bold&lt;/b&gt;")
}

func TestFormAction_UnknownAction(t *testing.T) {
	c := new(mockConsole)
	router := newTestRouter(t, c, nil)

	rec := postForm(router, "launch", url.Values{})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	c.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything, mock.Anything)
}

func TestJSONAction(t *testing.T) {
	c := new(mockConsole)
	router := newTestRouter(t, c, nil)

	in := binder.View{Shopcart: binder.ShopcartForm{ID: "3"}, ShopcartRows: []domain.Shopcart{}, ItemRows: []domain.Item{}}
	out := in.WithFlash(console.MsgShopcartRetrieved, true)
	out.Shopcart.Name = "Three"
	c.On("Handle", mock.Anything, console.RetrieveShopcart, in).Return(out)

	rec := postJSON(router, "retrieve_shopcart", `{"shopcart":{"id":"3","name":""},"shopcart_rows":[],"item_rows":[]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	got := decodeView(t, rec)
	assert.Equal(t, "Three", got.Shopcart.Name)
	assert.Equal(t, binder.StyleSuccess, got.Flash.Style)
}

func TestJSONAction_BadBodies(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `shopcart=1`},
		{"unknown field", `{"shopcart":{"id":"1"},"extra":true}`},
		{"trailing data", `{} {}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := new(mockConsole)
			router := newTestRouter(t, c, nil)

			rec := postJSON(router, "retrieve_shopcart", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			var resp httputil.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, "INVALID_INPUT", resp.Code)
			assert.NotEmpty(t, resp.RequestID)
			c.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestActions_RateLimited(t *testing.T) {
	c := new(mockConsole)
	c.On("Handle", mock.Anything, console.Reset, mock.Anything).Return(binder.ClearAll())
	router := newTestRouter(t, c, pkgmiddleware.NewRateLimiter(0.001, 1, testLogger()))

	first := postJSON(router, "reset", `{}`)
	second := postJSON(router, "reset", `{}`)

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	var resp httputil.ErrorResponse
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &resp))
	assert.Equal(t, "RATE_LIMITED", resp.Code)
	assert.Equal(t, pkgmiddleware.RateLimitedMessage, resp.Message)

	// The page itself is not limited.
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestFormAction_RateLimitedRendersPage(t *testing.T) {
	c := new(mockConsole)
	c.On("Handle", mock.Anything, console.RetrieveShopcart, mock.Anything).Return(binder.ClearAll())
	router := newTestRouter(t, c, pkgmiddleware.NewRateLimiter(0.001, 1, testLogger()))
	form := url.Values{"shopcart_id": {"7"}, "shopcart_name": {"Kept"}}

	first := postForm(router, "retrieve_shopcart", form)
	second := postForm(router, "retrieve_shopcart", form)

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Contains(t, second.Header().Get("Content-Type"), "text/html")
	body := second.Body.String()
	assert.Contains(t, body, pkgmiddleware.RateLimitedMessage)
	assert.Contains(t, body, `class="alert alert-danger"`)
	assert.Contains(t, body, `value="Kept"`)
	c.AssertNumberOfCalls(t, "Handle", 1)
}

func TestProbesAndMetrics(t *testing.T) {
	router := newTestRouter(t, new(mockConsole), nil)

	for _, path := range []string{"/health/live", "/health/ready", "/metrics"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestCORSPreflight(t *testing.T) {
	router := newTestRouter(t, new(mockConsole), nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/actions/reset", nil)
	req.Header.Set("Origin", "http://admin.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

// =============================================================================
// End to end against the in-memory shopcart API
// =============================================================================

func newLiveRouter(t *testing.T) (http.Handler, *shopcarttest.API) {
	t.Helper()
	srv, api := shopcarttest.NewServer(t)
	client, err := httpclient.New(httpclient.Config{BaseURL: srv.URL, Timeout: 5 * time.Second, MaxConnsPerHost: 4})
	require.NoError(t, err)
	d, err := dispatcher.New(client, client, dispatcher.DefaultRoutes(), testLogger())
	require.NoError(t, err)
	return newTestRouter(t, console.New(d, testLogger()), nil), api
}

func TestLive_CreateThenSearch(t *testing.T) {
	router, api := newLiveRouter(t)
	api.Seed("Alice Cart")
	api.Seed("Bob Cart")

	created := postJSON(router, "create_shopcart", `{"shopcart":{"id":"99","name":"Alice2"}}`)
	require.Equal(t, http.StatusOK, created.Code)
	v := decodeView(t, created)
	assert.Equal(t, "3", v.Shopcart.ID)
	assert.Equal(t, console.MsgShopcartCreated, v.Flash.Message)

	rec := postForm(router, "search_shopcarts", url.Values{"shopcart_name": {"Alice"}})
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<td>Alice Cart</td>")
	assert.Contains(t, body, "<td>Alice2</td>")
	assert.NotContains(t, body, "<td>Bob Cart</td>")
	assert.Contains(t, body, console.MsgShopcartsLoaded)
}

func TestLive_SearchNoMatch(t *testing.T) {
	router, api := newLiveRouter(t)
	api.Seed("Alice Cart")
	api.Seed("Bob Cart")
	api.Seed("Alice2")

	rec := postJSON(router, "search_shopcarts", `{"shopcart":{"id":"2","name":"Alice"}}`)

	v := decodeView(t, rec)
	assert.Empty(t, v.ShopcartRows)
	assert.NotNil(t, v.ShopcartRows)
	assert.Equal(t, dispatcher.NoShopcartsMessage, v.Flash.Message)
	assert.Equal(t, binder.StyleDanger, v.Flash.Style)
}

func TestLive_ItemValidationNeverReachesAPI(t *testing.T) {
	router, api := newLiveRouter(t)
	api.Seed("Cart")
	before := len(api.Requests())

	rec := postForm(router, "create_item", url.Values{
		"item_shopcart_id": {"1"},
		"item_id":          {"A"},
		"item_quantity":    {"many"},
		"item_price":       {"1"},
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Quantity must be a non-negative whole number.")
	assert.Len(t, api.Requests(), before)
}

func TestLive_ServerMessageSurfaces(t *testing.T) {
	router, api := newLiveRouter(t)
	api.Override(shopcarttest.Override{Method: http.MethodGet, Path: "/shopcarts/5", Status: http.StatusInternalServerError, Body: `<html>oops</html>`})

	rec := postJSON(router, "retrieve_shopcart", `{"shopcart":{"id":"5","name":"typed"}}`)

	v := decodeView(t, rec)
	assert.Equal(t, httpclient.FallbackMessage, v.Flash.Message)
	assert.Equal(t, binder.ShopcartForm{}, v.Shopcart)
}

func TestLive_CorrelationIDReachesAPI(t *testing.T) {
	api := shopcarttest.New("/shopcarts", "/items")
	var (
		mu   sync.Mutex
		seen []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.Header.Get(pkgmiddleware.CorrelationHeader))
		mu.Unlock()
		api.Handler().ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := httpclient.New(httpclient.Config{BaseURL: srv.URL, Timeout: 5 * time.Second, MaxConnsPerHost: 4})
	require.NoError(t, err)
	d, err := dispatcher.New(client, client, dispatcher.DefaultRoutes(), testLogger())
	require.NoError(t, err)
	router := newTestRouter(t, console.New(d, testLogger()), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/actions/search_shopcarts", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(pkgmiddleware.CorrelationHeader, "corr-123")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "corr-123", rec.Header().Get(pkgmiddleware.CorrelationHeader))
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 1)
	assert.Equal(t, "corr-123", seen[0])
}
