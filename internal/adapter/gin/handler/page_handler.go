package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"currencies-app/internal/adapter/metrics"
	"currencies-app/internal/domain/about"
	"currencies-app/internal/domain/currency"
	"currencies-app/internal/domain/subscription"
	"currencies-app/internal/domain/user"
	currencyuc "currencies-app/internal/usecase/currency"
	apperrors "currencies-app/pkg/errors"
	"currencies-app/pkg/logger"
)

// CurrencyService is the currency use case as seen by the pages.
type CurrencyService interface {
	ListCurrencies(ctx context.Context) ([]*currency.Currency, error)
	CreateCurrency(ctx context.Context, f currency.Fields) (*currency.Currency, error)
	UpdateCurrency(ctx context.Context, id int64, f currency.Fields) (bool, error)
	DeleteCurrency(ctx context.Context, id int64) (bool, error)
	RefreshRates(ctx context.Context, source currencyuc.RateSource) (int, error)
}

// UserService is the user use case as seen by the pages.
type UserService interface {
	ListUsers(ctx context.Context) ([]*user.User, error)
	GetUser(ctx context.Context, id int64) (*user.User, error)
	CreateUser(ctx context.Context, name string) (*user.User, error)
	GetUserSubscriptions(ctx context.Context, userID int64) ([]subscription.Entry, error)
	Subscribe(ctx context.Context, userID, currencyID int64) (int64, error)
	Unsubscribe(ctx context.Context, subscriptionID int64) (bool, error)
}

// homeListLimit is how many currencies and users the home page previews.
const homeListLimit = 2

// PageHandler serves the HTML pages and form posts.
type PageHandler struct {
	currencies  CurrencyService
	users       UserService
	rates       currencyuc.RateSource
	rateMetrics *metrics.RateMetrics
	app         about.App
	pages       *Renderer
	log         *zap.Logger
}

// NewPageHandler creates a PageHandler rendering pages from pages.
// rateMetrics may be nil.
func NewPageHandler(
	currencies CurrencyService,
	users UserService,
	rates currencyuc.RateSource,
	app about.App,
	pages *Renderer,
	rateMetrics *metrics.RateMetrics,
	log *zap.Logger,
) *PageHandler {
	return &PageHandler{
		currencies:  currencies,
		users:       users,
		rates:       rates,
		rateMetrics: rateMetrics,
		app:         app,
		pages:       pages,
		log:         log,
	}
}

// currencyForm is the field set posted by the create and update forms.
type currencyForm struct {
	NumCode  string `form:"num_code" binding:"required"`
	CharCode string `form:"char_code" binding:"required"`
	Name     string `form:"name" binding:"required"`
	// Numbers are bound as text so a blank field is reported instead of read as 0.
	Value   string `form:"value" binding:"required"`
	Nominal string `form:"nominal" binding:"required"`
}

func (f currencyForm) fields() (currency.Fields, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(f.Value), 64)
	if err != nil {
		return currency.Fields{}, apperrors.NewValidationError("value", fmt.Sprintf("%q is not a number", f.Value))
	}
	nominal, err := strconv.Atoi(strings.TrimSpace(f.Nominal))
	if err != nil {
		return currency.Fields{}, apperrors.NewValidationError("nominal", fmt.Sprintf("%q is not an integer", f.Nominal))
	}
	return currency.Fields{
		NumCode:  f.NumCode,
		CharCode: f.CharCode,
		Name:     f.Name,
		Value:    value,
		Nominal:  nominal,
	}, nil
}

type updateCurrencyForm struct {
	ID int64 `form:"id" binding:"required"`
	currencyForm
}

type createUserForm struct {
	Name string `form:"name"`
}

type subscribeForm struct {
	UserID     int64 `form:"user_id" binding:"required"`
	CurrencyID int64 `form:"currency_id" binding:"required"`
}

type unsubscribeForm struct {
	UserID         int64 `form:"user_id" binding:"required"`
	SubscriptionID int64 `form:"subscription_id" binding:"required"`
}

// Index handles GET /
func (h *PageHandler) Index(c *gin.Context) {
	ctx := c.Request.Context()

	currencies, err := h.currencies.ListCurrencies(ctx)
	if err != nil {
		h.fail(c, "Failed to load currencies", err)
		return
	}
	users, err := h.users.ListUsers(ctx)
	if err != nil {
		h.fail(c, "Failed to load users", err)
		return
	}

	h.render(c, http.StatusOK, "index", &page{
		Title:      "Home",
		Currencies: firstN(currencies, homeListLimit),
		Users:      firstN(users, homeListLimit),
	})
}

// Author handles GET /author
func (h *PageHandler) Author(c *gin.Context) {
	h.render(c, http.StatusOK, "author", &page{Title: "Author"})
}

// Users handles GET /users
func (h *PageHandler) Users(c *gin.Context) {
	users, err := h.users.ListUsers(c.Request.Context())
	if err != nil {
		h.fail(c, "Failed to load users", err)
		return
	}
	h.render(c, http.StatusOK, "users", &page{Title: "Users", Users: users})
}

// User handles GET /user?id=
func (h *PageHandler) User(c *gin.Context) {
	ctx := c.Request.Context()

	raw := c.Query("id")
	if raw == "" {
		h.RenderError(c, http.StatusBadRequest, "400 - User ID is required")
		return
	}
	id, err := parseID(raw)
	if err != nil {
		h.RenderError(c, http.StatusBadRequest, "400 - Invalid user ID")
		return
	}

	u, err := h.users.GetUser(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			h.RenderError(c, http.StatusNotFound, "404 - User not found")
			return
		}
		h.fail(c, "Failed to load user", err)
		return
	}

	subs, err := h.users.GetUserSubscriptions(ctx, id)
	if err != nil {
		h.fail(c, "Failed to load subscriptions", err)
		return
	}
	all, err := h.currencies.ListCurrencies(ctx)
	if err != nil {
		h.fail(c, "Failed to load currencies", err)
		return
	}

	h.render(c, http.StatusOK, "user", &page{
		Title:         u.Name(),
		User:          u,
		Subscriptions: subs,
		Available:     unsubscribed(all, subs),
	})
}

// Currencies handles GET /currencies. It refreshes stored rates from the
// external source first; when the source fails the stored values are shown
// together with the error.
func (h *PageHandler) Currencies(c *gin.Context) {
	ctx := c.Request.Context()

	data := &page{Title: "Exchange rates"}

	start := time.Now()
	updated, err := h.currencies.RefreshRates(ctx, h.rates)
	if h.rateMetrics != nil {
		h.rateMetrics.ObserveRefresh(time.Since(start).Seconds(), updated, err)
	}
	if err != nil {
		logger.WithContext(ctx, h.log).Warn("showing stored rates, refresh failed", zap.Error(err))
		data.RefreshError = err.Error()
	}

	currencies, err := h.currencies.ListCurrencies(ctx)
	if err != nil {
		h.fail(c, "Failed to load currencies", err)
		return
	}
	data.Currencies = currencies

	h.render(c, http.StatusOK, "currencies", data)
}

// CurrenciesAdmin handles GET /currencies/admin
func (h *PageHandler) CurrenciesAdmin(c *gin.Context) {
	currencies, err := h.currencies.ListCurrencies(c.Request.Context())
	if err != nil {
		h.fail(c, "Failed to load currencies", err)
		return
	}
	h.render(c, http.StatusOK, "currencies_admin", &page{Title: "Manage currencies", Currencies: currencies})
}

// ShowCurrencies handles GET /currency/show, a JSON dump of the currency table.
func (h *PageHandler) ShowCurrencies(c *gin.Context) {
	currencies, err := h.currencies.ListCurrencies(c.Request.Context())
	if err != nil {
		h.fail(c, "Failed to load currencies", err)
		return
	}

	dump, err := json.MarshalIndent(currencies, "", "  ")
	if err != nil {
		h.fail(c, "Failed to encode currencies", err)
		return
	}
	h.render(c, http.StatusOK, "currency_show", &page{Title: "Stored currencies", Dump: string(dump)})
}

// DeleteCurrency handles GET /currency/delete?id=
func (h *PageHandler) DeleteCurrency(c *gin.Context) {
	raw := c.Query("id")
	if raw == "" {
		h.RenderError(c, http.StatusBadRequest, "400 - Currency ID is required")
		return
	}
	id, err := parseID(raw)
	if err != nil {
		h.RenderError(c, http.StatusBadRequest, "400 - Invalid currency ID")
		return
	}

	deleted, err := h.currencies.DeleteCurrency(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "Failed to delete currency", err)
		return
	}
	if !deleted {
		h.RenderError(c, http.StatusNotFound, "404 - Currency not found")
		return
	}
	c.Redirect(http.StatusSeeOther, "/currencies/admin")
}

// CreateCurrency handles POST /currency/create
func (h *PageHandler) CreateCurrency(c *gin.Context) {
	var form currencyForm
	if err := c.ShouldBind(&form); err != nil {
		h.badForm(c, "Failed to create currency", err)
		return
	}
	fields, err := form.fields()
	if err != nil {
		h.fail(c, "Failed to create currency", err)
		return
	}

	if _, err := h.currencies.CreateCurrency(c.Request.Context(), fields); err != nil {
		h.fail(c, "Failed to create currency", err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/currencies/admin")
}

// UpdateCurrency handles POST /currency/update
func (h *PageHandler) UpdateCurrency(c *gin.Context) {
	var form updateCurrencyForm
	if err := c.ShouldBind(&form); err != nil {
		h.badForm(c, "Failed to update currency", err)
		return
	}
	fields, err := form.fields()
	if err != nil {
		h.fail(c, "Failed to update currency", err)
		return
	}

	updated, err := h.currencies.UpdateCurrency(c.Request.Context(), form.ID, fields)
	if err != nil {
		h.fail(c, "Failed to update currency", err)
		return
	}
	if !updated {
		h.RenderError(c, http.StatusNotFound, "404 - Currency not found")
		return
	}
	c.Redirect(http.StatusSeeOther, "/currencies/admin")
}

// CreateUser handles POST /user/create
func (h *PageHandler) CreateUser(c *gin.Context) {
	var form createUserForm
	if err := c.ShouldBind(&form); err != nil {
		h.badForm(c, "Failed to create user", err)
		return
	}

	if _, err := h.users.CreateUser(c.Request.Context(), form.Name); err != nil {
		h.fail(c, "Failed to create user", err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/users")
}

// Subscribe handles POST /user/subscribe
func (h *PageHandler) Subscribe(c *gin.Context) {
	var form subscribeForm
	if err := c.ShouldBind(&form); err != nil {
		h.badForm(c, "Failed to subscribe", err)
		return
	}

	if _, err := h.users.Subscribe(c.Request.Context(), form.UserID, form.CurrencyID); err != nil {
		h.fail(c, "Failed to subscribe", err)
		return
	}
	c.Redirect(http.StatusSeeOther, userURL(form.UserID))
}

// Unsubscribe handles POST /user/unsubscribe
func (h *PageHandler) Unsubscribe(c *gin.Context) {
	var form unsubscribeForm
	if err := c.ShouldBind(&form); err != nil {
		h.badForm(c, "Failed to unsubscribe", err)
		return
	}

	removed, err := h.users.Unsubscribe(c.Request.Context(), form.SubscriptionID)
	if err != nil {
		h.fail(c, "Failed to unsubscribe", err)
		return
	}
	if !removed {
		h.RenderError(c, http.StatusNotFound, "404 - Subscription not found")
		return
	}
	c.Redirect(http.StatusSeeOther, userURL(form.UserID))
}

// NotFound renders the 404 page for unknown paths.
func (h *PageHandler) NotFound(c *gin.Context) {
	h.RenderError(c, http.StatusNotFound, "404 - Page not found")
}

// RenderError renders the error page with message.
func (h *PageHandler) RenderError(c *gin.Context, status int, message string) {
	h.render(c, status, "error", &page{Title: http.StatusText(status), Message: message})
}

// fail renders err with the status its type maps to. Unclassified errors are 500s.
func (h *PageHandler) fail(c *gin.Context, action string, err error) {
	log := logger.WithContext(c.Request.Context(), h.log)
	status := apperrors.HTTPStatus(err)

	if status >= http.StatusInternalServerError {
		log.Error(action, zap.Error(err))
		h.RenderError(c, status, fmt.Sprintf("%d - Internal server error: %v", status, err))
		return
	}

	log.Warn(action, zap.Int("status", status), zap.Error(err))
	h.RenderError(c, status, fmt.Sprintf("%d - %s: %v", status, action, err))
}

// badForm reports a form that could not be bound as a validation failure.
func (h *PageHandler) badForm(c *gin.Context, action string, err error) {
	h.fail(c, action, apperrors.NewValidationError("", err.Error()))
}

func (h *PageHandler) render(c *gin.Context, status int, name string, data *page) {
	data.AppName = h.app.Name
	data.App = h.app
	data.Navigation = navFor(c.Request.URL.Path)

	var buf bytes.Buffer
	if err := h.pages.Render(&buf, name, data); err != nil {
		logger.WithContext(c.Request.Context(), h.log).Error("template execution failed",
			zap.String("page", name), zap.Error(err))
		c.Data(http.StatusInternalServerError, "text/plain; charset=utf-8", []byte("Failed to render page"))
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

func userURL(id int64) string {
	return "/user?id=" + strconv.FormatInt(id, 10)
}

func firstN[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}

// unsubscribed returns the currencies of all that none of subs points at.
func unsubscribed(all []*currency.Currency, subs []subscription.Entry) []*currency.Currency {
	taken := make(map[int64]struct{}, len(subs))
	for _, s := range subs {
		taken[s.Currency.ID()] = struct{}{}
	}

	var free []*currency.Currency
	for _, c := range all {
		if _, ok := taken[c.ID()]; !ok {
			free = append(free, c)
		}
	}
	return free
}

// RegisterRoutes mounts every page and form endpoint on r.
func (h *PageHandler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/", h.Index)
	r.GET("/author", h.Author)
	r.GET("/users", h.Users)
	r.GET("/user", h.User)
	r.GET("/currencies", h.Currencies)
	r.GET("/currencies/admin", h.CurrenciesAdmin)
	r.GET("/currency/show", h.ShowCurrencies)
	r.GET("/currency/delete", h.DeleteCurrency)

	r.POST("/currency/create", h.CreateCurrency)
	r.POST("/currency/update", h.UpdateCurrency)
	r.POST("/user/create", h.CreateUser)
	r.POST("/user/subscribe", h.Subscribe)
	r.POST("/user/unsubscribe", h.Unsubscribe)
}
