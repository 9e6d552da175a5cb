// Package dispatcher turns console actions into calls against the shopcart
// API. Every operation validates its input, sends at most one request and
// returns either a decoded record or a *Failure.
package dispatcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/CSCI-GA-2820-FA24-001/shopcarts/pkg/httpclient"
	"github.com/CSCI-GA-2820-FA24-001/shopcarts/pkg/logger"
	"github.com/CSCI-GA-2820-FA24-001/shopcarts/pkg/tracing"
	"github.com/CSCI-GA-2820-FA24-001/shopcarts/pkg/validator"
)

// UnavailableMessage is flashed while the circuit breaker is open.
const UnavailableMessage = "Shopcart service is temporarily unavailable."

var actionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "shopcart_console_dispatch_total",
		Help: "Dispatched shopcart API operations by outcome",
	},
	[]string{"operation", "outcome"},
)

// RequestBuilder builds JSON requests relative to the shopcart API base URL.
type RequestBuilder interface {
	NewJSONRequest(ctx context.Context, method, path string, query url.Values, body any) (*http.Request, error)
}

// Dispatcher holds no per-action state and is safe for concurrent use.
type Dispatcher struct {
	builder RequestBuilder
	doer    httpclient.Doer
	routes  Routes
	logger  *slog.Logger
	tracer  trace.Tracer
}

// New creates a Dispatcher. Requests are built by builder and sent through
// doer, which is typically a circuit breaker wrapping the same client.
func New(builder RequestBuilder, doer httpclient.Doer, routes Routes, logger *slog.Logger) (*Dispatcher, error) {
	if err := routes.validate(); err != nil {
		return nil, fmt.Errorf("dispatcher routes: %w", err)
	}
	return &Dispatcher{
		builder: builder,
		doer:    doer,
		routes:  routes,
		logger:  logger,
		tracer:  tracing.Tracer("github.com/CSCI-GA-2820-FA24-001/shopcarts/internal/dispatcher"),
	}, nil
}

// Routes returns the URL contract the dispatcher was built with.
func (d *Dispatcher) Routes() Routes {
	return d.routes
}

// start opens a span for op and returns a finish func that records the
// outcome on the span, the metrics and the log.
func (d *Dispatcher) start(ctx context.Context, op string) (context.Context, func(error)) {
	ctx, span := d.tracer.Start(ctx, "dispatcher."+op, trace.WithAttributes(attribute.String("shopcart.operation", op)))
	return ctx, func(err error) {
		outcome := "success"
		var spanErr error
		if f, ok := AsFailure(err); ok {
			outcome = f.Kind.String()
			span.SetAttributes(attribute.String("shopcart.failure", outcome))
			if f.Kind == KindRequest {
				spanErr = err
				d.log(ctx).WarnContext(ctx, "shopcart api request failed",
					slog.String("operation", op),
					slog.Int("status", f.Status),
					slog.String("message", f.Message),
					slog.Any("error", f.Err),
				)
			}
		}
		actionsTotal.WithLabelValues(op, outcome).Inc()
		tracing.End(span, spanErr)
	}
}

func (d *Dispatcher) log(ctx context.Context) *slog.Logger {
	if l := logger.FromContext(ctx); l != slog.Default() {
		return l
	}
	return d.logger
}

// check validates in and turns a validation error into a Failure.
func check(in any) error {
	err := validator.Validate(in)
	if err == nil {
		return nil
	}
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		return validationFailure(valErr.Message(), err)
	}
	return validationFailure("Invalid input.", err)
}

// call sends one request and decodes a 2xx body into out (when out is
// non-nil and the body is non-empty). Every error is a *Failure of kind
// KindRequest.
func (d *Dispatcher) call(ctx context.Context, method, path string, query url.Values, body, out any) error {
	req, err := d.builder.NewJSONRequest(ctx, method, path, query, body)
	if err != nil {
		return &Failure{Kind: KindRequest, Message: httpclient.FallbackMessage, Err: err}
	}

	resp, err := d.doer.Do(ctx, req)
	if err != nil {
		msg := httpclient.FallbackMessage
		if errors.Is(err, httpclient.ErrCircuitOpen) {
			msg = UnavailableMessage
		}
		return &Failure{Kind: KindRequest, Message: msg, Err: err}
	}

	if !httpclient.IsSuccess(resp.StatusCode) {
		appErr := httpclient.ParseResponseError(resp)
		return &Failure{Kind: KindRequest, Message: appErr.Message, Status: resp.StatusCode, Err: appErr}
	}
	defer func() { _ = resp.Body.Close() }()

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return &Failure{
			Kind:    KindRequest,
			Message: httpclient.FallbackMessage,
			Status:  resp.StatusCode,
			Err:     fmt.Errorf("decode %s %s response: %w", method, path, err),
		}
	}
	return nil
}
