package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/ariefcatur/go-timestore/internal/concierge"
	"github.com/ariefcatur/go-timestore/internal/shop"
	"github.com/ariefcatur/go-timestore/internal/timestore"
)

const requestTimeout = 5 * time.Second

type Handler struct {
	Store     *timestore.Store
	Concierge *concierge.Concierge
	// AuthRate limits /auth per client IP, e.g. "10-M". Empty disables it.
	AuthRate string
	Log      *log.Entry

	validate *validator.Validate
}

// Register mounts every route on r.
func (h *Handler) Register(r chi.Router) error {
	if h.Log == nil {
		h.Log = log.NewEntry(log.StandardLogger())
	}
	h.Log = h.Log.WithField("component", "http")
	h.validate = validator.New()

	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.listProducts)
		r.Get("/featured", h.featuredProducts)
		r.Get("/{id}", h.getProduct)
	})

	var authMW []func(http.Handler) http.Handler
	if h.AuthRate != "" {
		mw, err := rateLimit(h.AuthRate)
		if err != nil {
			return errors.Wrap(err, "auth rate limit")
		}
		authMW = append(authMW, mw)
	}

	r.Group(func(r chi.Router) {
		r.Use(h.withSession)

		r.Get("/cart", h.getCart)
		r.Post("/cart/items", h.addCartItem)
		r.Patch("/cart/items/{id}", h.updateCartItem)
		r.Delete("/cart/items/{id}", h.removeCartItem)
		r.Delete("/cart", h.clearCart)
		r.Post("/cart/toggle", h.toggleCart)
		r.Post("/checkout", h.checkout)
		r.Post("/concierge", h.askConcierge)

		r.Route("/auth", func(r chi.Router) {
			r.Use(authMW...)
			r.Post("/register", h.register)
			r.Post("/login", h.login)
			r.Post("/logout", h.logout)
			r.Get("/me", h.me)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(requireAdmin)
			h.registerAdmin(r)
		})
	})
	return nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// decode reads a JSON body into v and validates its struct tags.
func (h *Handler) decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Wrap(err, "invalid json")
	}
	return h.validate.Struct(v)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, shop.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, shop.ErrEmptyCart):
		return http.StatusConflict
	case errors.Is(err, shop.ErrDuplicateEmail):
		return http.StatusConflict
	case errors.Is(err, shop.ErrUserNotFound), errors.Is(err, shop.ErrInvalidCredentials), errors.Is(err, shop.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, shop.ErrAccountPending), errors.Is(err, shop.ErrAccountRejected):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// fail logs server-side errors and answers with the mapped status.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		h.Log.WithError(err).WithField("path", r.URL.Path).Error("request failed")
		writeError(w, code, "internal error")
		return
	}
	writeError(w, code, err.Error())
}

func timeout(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), requestTimeout)
}
