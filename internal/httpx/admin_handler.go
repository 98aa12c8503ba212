package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/ariefcatur/go-timestore/internal/shop"
)

func (h *Handler) registerAdmin(r chi.Router) {
	r.Get("/dashboard", h.dashboard)

	r.Get("/products", h.adminListProducts)
	r.Post("/products", h.createProduct)
	r.Put("/products/{id}", h.updateProduct)
	r.Delete("/products/{id}", h.deleteProduct)

	r.Get("/clients", h.listClients)
	r.Post("/clients", h.createClient)
	r.Put("/clients/{id}", h.updateClient)
	r.Delete("/clients/{id}", h.deleteClient)

	r.Get("/suppliers", h.listSuppliers)
	r.Post("/suppliers", h.createSupplier)
	r.Put("/suppliers/{id}", h.updateSupplier)
	r.Delete("/suppliers/{id}", h.deleteSupplier)

	r.Get("/sales", h.listSales)
	r.Post("/sales", h.createSale)
	r.Get("/purchases", h.listPurchases)
	r.Post("/purchases", h.createPurchase)

	r.Get("/users", h.listUsers)
	r.Post("/users/{id}/approve", h.approveUser)
	r.Post("/users/{id}/reject", h.rejectUser)
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Store.Dashboard())
}

type productReq struct {
	Name        string          `json:"name" validate:"required"`
	Brand       string          `json:"brand" validate:"required"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category" validate:"required"`
	Image       string          `json:"image"`
	Description string          `json:"description"`
	Specs       []string        `json:"specs"`
	IsFeatured  bool            `json:"isFeatured"`
	Stock       *int            `json:"stock" validate:"omitempty,gte=0"`
}

// productFrom decodes a product body. Stock is left at -1 when the body
// omits it.
func (h *Handler) productFrom(w http.ResponseWriter, r *http.Request) (shop.Product, bool) {
	var req productReq
	if err := h.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return shop.Product{}, false
	}
	cat, ok := shop.ParseCategory(req.Category)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown category")
		return shop.Product{}, false
	}
	if req.Price.IsNegative() {
		writeError(w, http.StatusBadRequest, "price must not be negative")
		return shop.Product{}, false
	}
	p := shop.Product{
		Name:        req.Name,
		Brand:       req.Brand,
		Price:       req.Price,
		Category:    cat,
		Image:       req.Image,
		Description: req.Description,
		Specs:       req.Specs,
		IsFeatured:  req.IsFeatured,
		Stock:       -1,
	}
	if req.Stock != nil {
		p.Stock = *req.Stock
	}
	return p, true
}

func (h *Handler) adminListProducts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Store.Products())
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	p, ok := h.productFrom(w, r)
	if !ok {
		return
	}
	if p.Stock < 0 {
		p.Stock = shop.DefaultStock
	}
	ctx, cancel := timeout(r)
	defer cancel()
	created, err := h.Store.CreateProduct(ctx, p)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	p, ok := h.productFrom(w, r)
	if !ok {
		return
	}
	p.ID = chi.URLParam(r, "id")
	current, found := h.Store.Product(p.ID)
	if !found {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	// Stock moves through sales and purchases; an edit without it keeps the count.
	if p.Stock < 0 {
		p.Stock = current.Stock
	}
	ctx, cancel := timeout(r)
	defer cancel()
	if err := h.Store.UpdateProduct(ctx, p); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeout(r)
	defer cancel()
	if err := h.Store.DeleteProduct(ctx, chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type clientReq struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

func (req clientReq) client(id string) shop.Client {
	return shop.Client{ID: id, Name: req.Name, Email: req.Email, Phone: req.Phone, Address: req.Address}
}

func (h *Handler) listClients(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Store.Clients())
}

func (h *Handler) createClient(w http.ResponseWriter, r *http.Request) {
	var req clientReq
	if err := h.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ctx, cancel := timeout(r)
	defer cancel()
	c, err := h.Store.AddClient(ctx, req.client(""))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *Handler) updateClient(w http.ResponseWriter, r *http.Request) {
	var req clientReq
	if err := h.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ctx, cancel := timeout(r)
	defer cancel()
	c := req.client(chi.URLParam(r, "id"))
	if err := h.Store.UpdateClient(ctx, c); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handler) deleteClient(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeout(r)
	defer cancel()
	if err := h.Store.DeleteClient(ctx, chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type supplierReq struct {
	Name        string `json:"name" validate:"required"`
	ContactName string `json:"contactName"`
	Email       string `json:"email" validate:"omitempty,email"`
	Phone       string `json:"phone"`
}

func (req supplierReq) supplier(id string) shop.Supplier {
	return shop.Supplier{ID: id, Name: req.Name, ContactName: req.ContactName, Email: req.Email, Phone: req.Phone}
}

func (h *Handler) listSuppliers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Store.Suppliers())
}

func (h *Handler) createSupplier(w http.ResponseWriter, r *http.Request) {
	var req supplierReq
	if err := h.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ctx, cancel := timeout(r)
	defer cancel()
	s, err := h.Store.AddSupplier(ctx, req.supplier(""))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, s)
}

func (h *Handler) updateSupplier(w http.ResponseWriter, r *http.Request) {
	var req supplierReq
	if err := h.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ctx, cancel := timeout(r)
	defer cancel()
	s := req.supplier(chi.URLParam(r, "id"))
	if err := h.Store.UpdateSupplier(ctx, s); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *Handler) deleteSupplier(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeout(r)
	defer cancel()
	if err := h.Store.DeleteSupplier(ctx, chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listSales(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Store.Sales())
}

type lineReq struct {
	ProductID string          `json:"productId" validate:"required"`
	Quantity  int             `json:"quantity" validate:"gte=1"`
	Cost      decimal.Decimal `json:"cost"`
}

type saleReq struct {
	ClientName string    `json:"clientName"`
	Items      []lineReq `json:"items" validate:"required,min=1,dive"`
}

func (h *Handler) createSale(w http.ResponseWriter, r *http.Request) {
	var req saleReq
	if err := h.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	items := make([]shop.SaleItem, 0, len(req.Items))
	for _, l := range req.Items {
		it, err := h.Store.SaleItemFor(l.ProductID, l.Quantity)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		items = append(items, it)
	}
	ctx, cancel := timeout(r)
	defer cancel()
	sale, err := h.Store.RecordSale(ctx, h.Store.NewSale(req.ClientName, items))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sale)
}

func (h *Handler) listPurchases(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Store.Purchases())
}

type purchaseReq struct {
	SupplierName string    `json:"supplierName"`
	Items        []lineReq `json:"items" validate:"required,min=1,dive"`
}

func (h *Handler) createPurchase(w http.ResponseWriter, r *http.Request) {
	var req purchaseReq
	if err := h.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	items := make([]shop.PurchaseItem, 0, len(req.Items))
	for _, l := range req.Items {
		it, err := h.Store.PurchaseItemFor(l.ProductID, l.Quantity, l.Cost)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		items = append(items, it)
	}
	ctx, cancel := timeout(r)
	defer cancel()
	p, err := h.Store.RecordPurchase(ctx, h.Store.NewPurchase(req.SupplierName, items))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Store.Users())
}

func (h *Handler) approveUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeout(r)
	defer cancel()
	if err := h.Store.Approve(ctx, chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) rejectUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeout(r)
	defer cancel()
	if err := h.Store.Reject(ctx, chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
