package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/go-timestore/internal/concierge"
	"github.com/ariefcatur/go-timestore/internal/shop"
	"github.com/ariefcatur/go-timestore/internal/shop/shoptest"
	"github.com/ariefcatur/go-timestore/internal/timestore"
)

type client struct {
	t   *testing.T
	mux *chi.Mux
	sid string
}

func setup(t *testing.T) (*client, *timestore.Store) {
	t.Helper()
	b := shoptest.NewBackend(shop.DefaultCatalog()...)
	store, err := timestore.New(context.Background(), b, timestore.Options{})
	require.NoError(t, err)
	t.Cleanup(store.Close)

	mux := NewRouter(nil)
	h := &Handler{Store: store, Concierge: concierge.New(nil, nil), AuthRate: "100-M"}
	require.NoError(t, h.Register(mux))
	return &client{t: t, mux: mux}, store
}

func (c *client) do(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if c.sid != "" {
		req.Header.Set(HeaderSessionID, c.sid)
	}
	rec := httptest.NewRecorder()
	c.mux.ServeHTTP(rec, req)
	if sid := rec.Header().Get(HeaderSessionID); sid != "" {
		c.sid = sid
	}
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func (c *client) loginAdmin() {
	rec := c.do(http.MethodPost, "/auth/login", map[string]string{"email": shop.AdminEmail, "password": shop.AdminPassword})
	require.Equal(c.t, http.StatusOK, rec.Code)
}

func TestHealthz(t *testing.T) {
	c, _ := setup(t)
	rec := c.do(http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestProducts(t *testing.T) {
	c, _ := setup(t)

	rec := c.do(http.MethodGet, "/products?category=luxury&min_price=20000", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	products := decodeBody[[]shop.Product](t, rec)
	require.Len(t, products, 2)
	assert.Equal(t, "3", products[0].ID)

	rec = c.do(http.MethodGet, "/products/featured", nil)
	assert.Len(t, decodeBody[[]shop.Product](t, rec), timestore.FeaturedLimit)

	assert.Equal(t, http.StatusNotFound, c.do(http.MethodGet, "/products/99", nil).Code)
	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodGet, "/products?category=cuckoo", nil).Code)
	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodGet, "/products?max_price=abc", nil).Code)
}

func TestCartAndCheckout(t *testing.T) {
	c, store := setup(t)

	rec := c.do(http.MethodGet, "/cart", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, c.sid, "session id issued")

	rec = c.do(http.MethodPost, "/cart/items", map[string]string{"productId": "4"})
	require.Equal(t, http.StatusOK, rec.Code)
	cart := decodeBody[cartResp](t, rec)
	assert.True(t, cart.Open)
	assert.Equal(t, 1, cart.Count)

	rec = c.do(http.MethodPatch, "/cart/items/4", map[string]int{"delta": 1})
	cart = decodeBody[cartResp](t, rec)
	assert.Equal(t, 2, cart.Count)
	assert.True(t, cart.Subtotal.Equal(decimal.NewFromInt(1798)))

	assert.Equal(t, http.StatusNotFound, c.do(http.MethodPost, "/cart/items", map[string]string{"productId": "nope"}).Code)

	rec = c.do(http.MethodPost, "/checkout", map[string]string{"cardName": "J. Doe"})
	require.Equal(t, http.StatusCreated, rec.Code)
	sale := decodeBody[shop.Sale](t, rec)
	assert.Equal(t, "J. Doe", sale.ClientName)
	assert.True(t, sale.Total.Equal(decimal.NewFromInt(1798)))

	p, _ := store.Product("4")
	assert.Equal(t, shop.DefaultStock-2, p.Stock)
	assert.Equal(t, http.StatusConflict, c.do(http.MethodPost, "/checkout", map[string]string{}).Code)
}

func TestCartRemoveClearToggle(t *testing.T) {
	c, _ := setup(t)
	c.do(http.MethodPost, "/cart/items", map[string]string{"productId": "1"})
	c.do(http.MethodPost, "/cart/items", map[string]string{"productId": "2"})

	cart := decodeBody[cartResp](t, c.do(http.MethodDelete, "/cart/items/1", nil))
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "2", cart.Items[0].ID)

	cart = decodeBody[cartResp](t, c.do(http.MethodDelete, "/cart", nil))
	assert.Empty(t, cart.Items)

	toggled := decodeBody[map[string]bool](t, c.do(http.MethodPost, "/cart/toggle", nil))
	assert.False(t, toggled["open"], "cart was open after adding")
}

func TestRegisterAndLogin(t *testing.T) {
	c, store := setup(t)

	rec := c.do(http.MethodPost, "/auth/register", map[string]string{"name": "Ana", "email": "ana@example.com", "password": "pw"})
	require.Equal(t, http.StatusCreated, rec.Code)
	res := decodeBody[timestore.Result](t, rec)
	assert.True(t, res.Success)
	assert.Equal(t, timestore.MsgRegistered, res.Message)

	rec = c.do(http.MethodPost, "/auth/register", map[string]string{"name": "Ana", "email": "ana@example.com", "password": "pw"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "El email ya está registrado.", decodeBody[timestore.Result](t, rec).Message)

	rec = c.do(http.MethodPost, "/auth/register", map[string]string{"name": "Bad", "email": "not-an-email", "password": "pw"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, decodeBody[timestore.Result](t, rec).Success)

	rec = c.do(http.MethodPost, "/auth/register", map[string]string{"name": "Bo", "email": "bo@example.com", "password": "a", "confirmPassword": "b"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, msgPasswordMismatch, decodeBody[timestore.Result](t, rec).Message)

	rec = c.do(http.MethodPost, "/auth/login", map[string]string{"email": "ana@example.com", "password": "pw"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, decodeBody[timestore.Result](t, rec).Message, "pendiente")

	var id string
	for _, u := range store.Users() {
		if u.Email == "ana@example.com" {
			id = u.ID
		}
	}
	require.NoError(t, store.Approve(context.Background(), id))

	rec = c.do(http.MethodPost, "/auth/login", map[string]string{"email": "ana@example.com", "password": "pw"})
	require.Equal(t, http.StatusOK, rec.Code)
	lr := decodeBody[loginResp](t, rec)
	assert.True(t, lr.Success)
	require.NotNil(t, lr.User)
	assert.Empty(t, lr.User.Password)

	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, "/auth/me", nil).Code)
	assert.Equal(t, http.StatusForbidden, c.do(http.MethodGet, "/admin/dashboard", nil).Code)
	assert.Equal(t, http.StatusNoContent, c.do(http.MethodPost, "/auth/logout", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodGet, "/auth/me", nil).Code)
}

func TestLoginWrongPassword(t *testing.T) {
	c, _ := setup(t)
	rec := c.do(http.MethodPost, "/auth/login", map[string]string{"email": shop.AdminEmail, "password": "x"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Contraseña incorrecta.", decodeBody[timestore.Result](t, rec).Message)
}

func TestAdminRequiresLogin(t *testing.T) {
	c, _ := setup(t)
	assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodGet, "/admin/dashboard", nil).Code)
}

func TestAdminFlows(t *testing.T) {
	c, store := setup(t)
	c.loginAdmin()

	rec := c.do(http.MethodPost, "/admin/products", map[string]any{"name": "Diver 300", "brand": "Sea", "price": "750", "category": "Deportivo"})
	require.Equal(t, http.StatusCreated, rec.Code)
	p := decodeBody[shop.Product](t, rec)
	assert.Equal(t, shop.DefaultStock, p.Stock)

	rec = c.do(http.MethodPut, "/admin/products/"+p.ID, map[string]any{"name": "Diver 300", "brand": "Sea", "price": "700", "category": "sport", "stock": 2})
	require.Equal(t, http.StatusOK, rec.Code)
	got, _ := store.Product(p.ID)
	assert.Equal(t, 2, got.Stock)
	assert.Equal(t, http.StatusNotFound, c.do(http.MethodPut, "/admin/products/ghost", map[string]any{"name": "x", "brand": "y", "category": "sport"}).Code)
	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodPost, "/admin/products", map[string]any{"name": "x", "brand": "y", "category": "cuckoo"}).Code)

	rec = c.do(http.MethodPost, "/admin/suppliers", map[string]string{"name": "Swiss Parts"})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = c.do(http.MethodPost, "/admin/purchases", map[string]any{
		"supplierName": "Swiss Parts",
		"items":        []map[string]any{{"productId": p.ID, "quantity": 3, "cost": "400"}},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	purchase := decodeBody[shop.Purchase](t, rec)
	assert.NotEqual(t, "unknown", purchase.SupplierID)
	assert.True(t, purchase.Total.Equal(decimal.NewFromInt(1200)))
	got, _ = store.Product(p.ID)
	assert.Equal(t, 5, got.Stock)

	rec = c.do(http.MethodPost, "/admin/sales", map[string]any{"items": []map[string]any{{"productId": p.ID, "quantity": 1}}})
	require.Equal(t, http.StatusCreated, rec.Code)
	sale := decodeBody[shop.Sale](t, rec)
	assert.Equal(t, timestore.DefaultClientName, sale.ClientName)
	assert.True(t, sale.Total.Equal(decimal.NewFromInt(700)))
	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodPost, "/admin/sales", map[string]any{"items": []any{}}).Code)

	rec = c.do(http.MethodGet, "/admin/dashboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	d := decodeBody[timestore.Dashboard](t, rec)
	assert.Equal(t, 1, d.TotalOrders)
	assert.Equal(t, 9, d.TotalProducts)

	rec = c.do(http.MethodPost, "/admin/clients", map[string]string{"name": "Ana", "email": "ana@example.com"})
	require.Equal(t, http.StatusCreated, rec.Code)
	cl := decodeBody[shop.Client](t, rec)
	assert.Equal(t, http.StatusNoContent, c.do(http.MethodDelete, "/admin/clients/"+cl.ID, nil).Code)
	assert.Empty(t, decodeBody[[]shop.Client](t, c.do(http.MethodGet, "/admin/clients", nil)))
}

func TestAdminApprovesUsers(t *testing.T) {
	c, _ := setup(t)
	other := &client{t: t, mux: c.mux}
	other.do(http.MethodPost, "/auth/register", map[string]string{"name": "Ana", "email": "ana@example.com", "password": "pw"})
	c.loginAdmin()

	users := decodeBody[[]shop.User](t, c.do(http.MethodGet, "/admin/users", nil))
	var id string
	for _, u := range users {
		assert.Empty(t, u.Password)
		if u.Email == "ana@example.com" {
			id = u.ID
		}
	}
	require.NotEmpty(t, id)
	assert.Equal(t, http.StatusNoContent, c.do(http.MethodPost, "/admin/users/"+id+"/approve", nil).Code)

	rec := other.do(http.MethodPost, "/auth/login", map[string]string{"email": "ana@example.com", "password": "pw"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestConciergeUnavailable(t *testing.T) {
	c, _ := setup(t)
	rec := c.do(http.MethodPost, "/concierge", map[string]string{"query": "algo deportivo"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, concierge.MsgUnavailable, decodeBody[map[string]string](t, rec)["answer"])
	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodPost, "/concierge", map[string]string{}).Code)
}

func TestAuthRateLimit(t *testing.T) {
	b := shoptest.NewBackend()
	store, err := timestore.New(context.Background(), b, timestore.Options{})
	require.NoError(t, err)
	defer store.Close()
	mux := NewRouter(nil)
	require.NoError(t, (&Handler{Store: store, AuthRate: "2-M"}).Register(mux))
	c := &client{t: t, mux: mux}

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodGet, "/auth/me", nil).Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, c.do(http.MethodGet, "/auth/me", nil).Code)

	assert.Error(t, (&Handler{Store: store, AuthRate: "lots"}).Register(NewRouter(nil)))
}

func TestAdminProductEditKeepsStock(t *testing.T) {
	c, store := setup(t)
	c.loginAdmin()

	rec := c.do(http.MethodPost, "/admin/purchases", map[string]any{"supplierName": "Swiss Parts", "items": []map[string]any{{"productId": "1", "quantity": 30, "cost": "100"}}})
	require.Equal(t, http.StatusCreated, rec.Code)
	before, _ := store.Product("1")
	require.Equal(t, shop.DefaultStock+30, before.Stock)

	rec = c.do(http.MethodPut, "/admin/products/1", map[string]any{"name": "Renamed", "brand": before.Brand, "price": before.Price.String(), "category": string(before.Category)})
	require.Equal(t, http.StatusOK, rec.Code)
	after, _ := store.Product("1")
	assert.Equal(t, "Renamed", after.Name)
	assert.Equal(t, before.Stock, after.Stock)
}
