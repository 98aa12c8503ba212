package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/ariefcatur/go-timestore/internal/shop"
	"github.com/ariefcatur/go-timestore/internal/timestore"
)

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var f timestore.Filter
	if c := q.Get("category"); c != "" {
		cat, ok := shop.ParseCategory(c)
		if !ok {
			writeError(w, http.StatusBadRequest, "unknown category")
			return
		}
		f.Category = cat
	}
	f.Search = q.Get("search")
	for _, p := range []struct {
		name string
		dst  *decimal.Decimal
	}{{"min_price", &f.MinPrice}, {"max_price", &f.MaxPrice}} {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		d, err := decimal.NewFromString(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid "+p.name)
			return
		}
		*p.dst = d
	}
	writeJSON(w, http.StatusOK, h.Store.Search(f))
}

func (h *Handler) featuredProducts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Store.Featured(timestore.FeaturedLimit))
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Store.Product(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type cartResp struct {
	Items    []shop.CartLine `json:"items"`
	Count    int             `json:"count"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Open     bool            `json:"open"`
}

func cartOf(sess *timestore.Session) cartResp {
	c := sess.Cart()
	items := c.Lines()
	if items == nil {
		items = []shop.CartLine{}
	}
	return cartResp{Items: items, Count: c.Count(), Subtotal: c.Subtotal(), Open: sess.CartOpen()}
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, cartOf(sessionFrom(r.Context())))
}

type addItemReq struct {
	ProductID string `json:"productId" validate:"required"`
}

func (h *Handler) addCartItem(w http.ResponseWriter, r *http.Request) {
	var req addItemReq
	if err := h.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	p, ok := h.Store.Product(req.ProductID)
	if !ok {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	ctx, cancel := timeout(r)
	defer cancel()
	sess := sessionFrom(r.Context())
	if err := sess.AddToCart(ctx, p); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cartOf(sess))
}

type updateItemReq struct {
	Delta int `json:"delta" validate:"required"`
}

func (h *Handler) updateCartItem(w http.ResponseWriter, r *http.Request) {
	var req updateItemReq
	if err := h.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ctx, cancel := timeout(r)
	defer cancel()
	sess := sessionFrom(r.Context())
	if err := sess.UpdateQuantity(ctx, chi.URLParam(r, "id"), req.Delta); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cartOf(sess))
}

func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeout(r)
	defer cancel()
	sess := sessionFrom(r.Context())
	if err := sess.RemoveFromCart(ctx, chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cartOf(sess))
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeout(r)
	defer cancel()
	sess := sessionFrom(r.Context())
	if err := sess.ClearCart(ctx); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cartOf(sess))
}

func (h *Handler) toggleCart(w http.ResponseWriter, r *http.Request) {
	open := sessionFrom(r.Context()).ToggleCart()
	writeJSON(w, http.StatusOK, map[string]bool{"open": open})
}

type checkoutReq struct {
	CardName string `json:"cardName" validate:"max=120"`
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutReq
	if err := h.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ctx, cancel := timeout(r)
	defer cancel()
	sale, err := sessionFrom(r.Context()).Checkout(ctx, req.CardName)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sale)
}

type conciergeReq struct {
	Query string `json:"query" validate:"required"`
}

func (h *Handler) askConcierge(w http.ResponseWriter, r *http.Request) {
	var req conciergeReq
	if err := h.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	answer := h.Concierge.Recommend(r.Context(), req.Query, h.Store.Products())
	writeJSON(w, http.StatusOK, map[string]string{"answer": answer})
}
