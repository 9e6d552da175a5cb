package dispatcher

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CSCI-GA-2820-FA24-001/shopcarts/internal/shopcarttest"
	"github.com/CSCI-GA-2820-FA24-001/shopcarts/pkg/httpclient"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newDispatcher(t *testing.T, baseURL string, routes Routes) *Dispatcher {
	t.Helper()
	client, err := httpclient.New(httpclient.Config{BaseURL: baseURL, Timeout: 5 * time.Second, MaxConnsPerHost: 4})
	require.NoError(t, err)
	d, err := New(client, client, routes, testLogger())
	require.NoError(t, err)
	return d
}

func setup(t *testing.T) (*Dispatcher, *shopcarttest.API) {
	t.Helper()
	srv, api := shopcarttest.NewServer(t)
	return newDispatcher(t, srv.URL, DefaultRoutes()), api
}

func requireFailure(t *testing.T, err error, kind Kind) *Failure {
	t.Helper()
	require.Error(t, err)
	f, ok := AsFailure(err)
	require.True(t, ok, "expected *Failure, got %T", err)
	assert.Equal(t, kind, f.Kind)
	assert.NotEmpty(t, f.Message)
	return f
}

func TestNew_RejectsBadRoutes(t *testing.T) {
	client, err := httpclient.New(httpclient.DefaultConfig("http://localhost"))
	require.NoError(t, err)

	tests := []Routes{
		{Prefix: "shopcarts", Addressing: Nested, Search: SearchServer},
		{Prefix: "/", Addressing: Nested, Search: SearchServer},
		{Prefix: "/shopcarts", Addressing: "query", Search: SearchServer},
		{Prefix: "/shopcarts", Addressing: Flat, ItemsPath: "items", Search: SearchServer},
		{Prefix: "/shopcarts", Addressing: Nested, Search: "fuzzy"},
	}
	for _, routes := range tests {
		_, err := New(client, client, routes, testLogger())
		assert.Error(t, err, "%+v", routes)
	}
}

func TestCall_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	baseURL := srv.URL
	srv.Close()

	d := newDispatcher(t, baseURL, DefaultRoutes())
	_, err := d.GetShopcart(context.Background(), "1")

	f := requireFailure(t, err, KindRequest)
	assert.Equal(t, httpclient.FallbackMessage, f.Message)
	assert.Zero(t, f.Status)
}

func TestCall_ErrorMessageExtraction(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"flat message", http.StatusNotFound, `{"message":"Shopcart with id 1 was not found"}`, "Shopcart with id 1 was not found"},
		{"envelope", http.StatusConflict, `{"error":{"code":"CONFLICT","message":"duplicate cart"}}`, "duplicate cart"},
		{"no message", http.StatusInternalServerError, `{"status":500}`, "Server error!"},
		{"html", http.StatusBadGateway, `<html>bad gateway</html>`, "Server error!"},
		{"abort body", http.StatusNotFound, `{"status":404,"error":"Not Found","message":"Shopcart with id '1' was not found."}`, "Shopcart with id '1' was not found."},
		{"string error only", http.StatusBadRequest, `{"error":"bad"}`, "Server error!"},
		{"empty", http.StatusServiceUnavailable, ``, "Server error!"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, api := setup(t)
			api.Override(shopcarttest.Override{Method: http.MethodGet, Path: "/shopcarts/1", Status: tt.status, Body: tt.body})

			_, err := d.GetShopcart(context.Background(), "1")

			f := requireFailure(t, err, KindRequest)
			assert.Equal(t, tt.want, f.Message)
			assert.Equal(t, tt.status, f.Status)
		})
	}
}

func TestCall_ServiceErrorBodyKeepsMessage(t *testing.T) {
	d, _ := setup(t)

	_, err := d.GetShopcart(context.Background(), "5")

	f := requireFailure(t, err, KindRequest)
	assert.Equal(t, http.StatusNotFound, f.Status)
	assert.Equal(t, "Shopcart with id '5' was not found.", f.Message)
}

func TestCall_MalformedSuccessBody(t *testing.T) {
	d, api := setup(t)
	api.Override(shopcarttest.Override{Method: http.MethodGet, Path: "/shopcarts/1", Status: http.StatusOK, Body: `{"id":`})

	_, err := d.GetShopcart(context.Background(), "1")

	f := requireFailure(t, err, KindRequest)
	assert.Equal(t, httpclient.FallbackMessage, f.Message)
}

func TestCall_CircuitOpen(t *testing.T) {
	srv, api := shopcarttest.NewServer(t)
	client, err := httpclient.New(httpclient.DefaultConfig(srv.URL))
	require.NoError(t, err)

	cbCfg := httpclient.DefaultCircuitBreakerConfig("dispatcher-open-test")
	cbCfg.MinRequests = 1
	cbCfg.FailureRatio = 1
	cbCfg.Timeout = time.Minute
	breaker := httpclient.NewCircuitBreakerClient(client, cbCfg, testLogger())

	d, err := New(client, breaker, DefaultRoutes(), testLogger())
	require.NoError(t, err)

	api.Override(shopcarttest.Override{Method: http.MethodGet, Path: "/shopcarts", Status: http.StatusInternalServerError, Body: `{"message":"db down"}`})
	_, err = d.ListShopcarts(context.Background())
	f := requireFailure(t, err, KindRequest)
	assert.Equal(t, "db down", f.Message)

	before := len(api.Requests())
	_, err = d.ListShopcarts(context.Background())
	f = requireFailure(t, err, KindRequest)
	assert.Equal(t, UnavailableMessage, f.Message)
	assert.ErrorIs(t, err, httpclient.ErrCircuitOpen)
	assert.Len(t, api.Requests(), before)
}

func TestDispatcher_ConcurrentUse(t *testing.T) {
	d, api := setup(t)
	cart := api.Seed("Shared")

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := d.GetShopcart(context.Background(), cart.IDString())
			if err == nil && got.Name != "Shared" {
				err = assert.AnError
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
}

func TestDispatcher_CountsOutcomes(t *testing.T) {
	d, api := setup(t)
	api.Seed("Counted")

	before := testutil.ToFloat64(actionsTotal.WithLabelValues("get_shopcart", "validation"))
	_, err := d.GetShopcart(context.Background(), "")
	requireFailure(t, err, KindValidation)
	after := testutil.ToFloat64(actionsTotal.WithLabelValues("get_shopcart", "validation"))
	assert.Equal(t, before+1, after)

	before = testutil.ToFloat64(actionsTotal.WithLabelValues("get_shopcart", "success"))
	_, err = d.GetShopcart(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, before+1, testutil.ToFloat64(actionsTotal.WithLabelValues("get_shopcart", "success")))
}

func TestFailure_ErrorAndKinds(t *testing.T) {
	f := &Failure{Kind: KindRequest, Message: "Server error!", Err: assert.AnError}
	assert.Contains(t, f.Error(), "request: Server error!")
	assert.ErrorIs(t, f, assert.AnError)
	assert.True(t, IsKind(f, KindRequest))
	assert.False(t, IsKind(f, KindValidation))
	assert.False(t, IsKind(assert.AnError, KindRequest))

	assert.Equal(t, "validation", KindValidation.String())
	assert.Equal(t, "empty_result", KindEmptyResult.String())
	assert.Equal(t, "unknown", Kind(0).String())
	assert.Equal(t, "empty_result: nothing", emptyResult("nothing").Error())
}

func TestRoutes_ItemListing(t *testing.T) {
	nested := DefaultRoutes()
	path, q := nested.itemListing("4", nil)
	assert.Equal(t, "/shopcarts/4/items", path)
	assert.Empty(t, q)

	flat := Routes{Prefix: "/api/shopcarts", ItemsPath: "/api/items", Addressing: Flat, Search: SearchServer}
	path, q = flat.itemListing("4", map[string][]string{"item_id": {"B"}})
	assert.Equal(t, "/api/items", path)
	assert.Equal(t, "4", q.Get("shopcart_id"))
	assert.Equal(t, "B", q.Get("item_id"))

	assert.Equal(t, "/api/shopcarts/4/items/a%2Fb", flat.item("4", "a/b"))
	assert.Equal(t, "/api/shopcarts/4/clear", flat.clearShopcart("4"))
}
