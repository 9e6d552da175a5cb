package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/CSCI-GA-2820-FA24-001/shopcarts/internal/binder"
	"github.com/CSCI-GA-2820-FA24-001/shopcarts/internal/console"
	apperrors "github.com/CSCI-GA-2820-FA24-001/shopcarts/pkg/errors"
	"github.com/CSCI-GA-2820-FA24-001/shopcarts/pkg/httputil"
	pkgmiddleware "github.com/CSCI-GA-2820-FA24-001/shopcarts/pkg/middleware"
	"github.com/CSCI-GA-2820-FA24-001/shopcarts/pkg/validator"
)

const (
	formActionPrefix = "/actions"
	jsonActionPrefix = "/api/actions"
)

// ActionHandler applies a console action to a view.
type ActionHandler interface {
	Handle(ctx context.Context, action console.Action, v binder.View) binder.View
}

// ConsoleHandler serves the console page and its two action endpoints.
type ConsoleHandler struct {
	console ActionHandler
	page    *page
	logger  *slog.Logger
}

// NewConsoleHandler creates the console HTTP handler.
func NewConsoleHandler(c ActionHandler, logger *slog.Logger) (*ConsoleHandler, error) {
	p, err := newPage()
	if err != nil {
		return nil, err
	}
	return &ConsoleHandler{console: c, page: p, logger: logger}, nil
}

// Page handles GET /
func (h *ConsoleHandler) Page(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, http.StatusOK, binder.ClearAll())
}

// FormAction handles POST /actions/{action}. Fields are read from the posted
// form and the resulting view is rendered as the page.
func (h *ConsoleHandler) FormAction(w http.ResponseWriter, r *http.Request) {
	action, err := console.ParseAction(chi.URLParam(r, "action"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if err := r.ParseForm(); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("Malformed form data."), h.logger)
		return
	}

	v := h.console.Handle(r.Context(), action, viewFromForm(r.PostForm))
	h.renderPage(w, r, http.StatusOK, v)
}

// FormLimited answers a rate-limited form POST with the submitted page and a
// failure banner, so the browser keeps its fields.
func (h *ConsoleHandler) FormLimited(w http.ResponseWriter, r *http.Request) {
	v := binder.ClearAll()
	if err := r.ParseForm(); err == nil {
		v = viewFromForm(r.PostForm)
	}
	h.renderPage(w, r, http.StatusTooManyRequests, v.WithFlash(pkgmiddleware.RateLimitedMessage, false))
}

// JSONAction handles POST /api/actions/{action}. The body is the current
// view and the response is the next one. Action outcomes, failures included,
// are reported in the view's flash with a 200 status.
func (h *ConsoleHandler) JSONAction(w http.ResponseWriter, r *http.Request) {
	action, err := console.ParseAction(chi.URLParam(r, "action"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	var v binder.View
	if err := validator.DecodeAndValidate(r, &v); err != nil {
		var valErr *validator.ValidationError
		if errors.As(err, &valErr) {
			httputil.WriteError(w, r, err, h.logger)
			return
		}
		httputil.WriteError(w, r, apperrors.InvalidInput("Request body must be a console view in JSON."), h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, h.console.Handle(r.Context(), action, v))
}

func (h *ConsoleHandler) renderPage(w http.ResponseWriter, r *http.Request, status int, v binder.View) {
	if err := h.page.render(w, status, v); err != nil {
		httputil.WriteError(w, r, err, h.logger)
	}
}
