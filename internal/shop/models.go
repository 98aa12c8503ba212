package shop

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultStock is applied to products whose stored document carries no stock.
const DefaultStock = 10

type Category string

const (
	CategorySport   Category = "Deportivo"
	CategoryClassic Category = "Clásico"
	CategorySmart   Category = "Inteligente"
	CategoryLuxury  Category = "Lujo"
)

var Categories = []Category{CategorySport, CategoryClassic, CategorySmart, CategoryLuxury}

var categoryAliases = map[string]Category{
	"sport":   CategorySport,
	"classic": CategoryClassic,
	"smart":   CategorySmart,
	"luxury":  CategoryLuxury,
}

// ParseCategory accepts the wire value or the english name, case-insensitive.
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	for _, c := range Categories {
		if strings.EqualFold(string(c), s) {
			return c, true
		}
	}
	c, ok := categoryAliases[strings.ToLower(s)]
	return c, ok
}

type Product struct {
	ID          string          `json:"id,omitempty"`
	Name        string          `json:"name"`
	Brand       string          `json:"brand"`
	Price       decimal.Decimal `json:"price"`
	Category    Category        `json:"category"`
	Image       string          `json:"image"`
	Description string          `json:"description"`
	Specs       []string        `json:"specs"`
	IsFeatured  bool            `json:"isFeatured,omitempty"`
	Stock       int             `json:"stock"`
}

func (p Product) Key() string { return p.ID }

func (p Product) WithKey(id string) Product {
	p.ID = id
	return p
}

// UnmarshalJSON defaults a missing stock field to DefaultStock.
func (p *Product) UnmarshalJSON(b []byte) error {
	type plain Product
	var aux struct {
		plain
		Stock *int `json:"stock"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*p = Product(aux.plain)
	if aux.Stock == nil {
		p.Stock = DefaultStock
	} else {
		p.Stock = *aux.Stock
	}
	return nil
}

type CartLine struct {
	Product
	Quantity int `json:"quantity"`
}

// UnmarshalJSON is needed because the embedded Product's decoder would
// otherwise be promoted and swallow the quantity.
func (l *CartLine) UnmarshalJSON(b []byte) error {
	if err := json.Unmarshal(b, &l.Product); err != nil {
		return err
	}
	var q struct {
		Quantity int `json:"quantity"`
	}
	if err := json.Unmarshal(b, &q); err != nil {
		return err
	}
	l.Quantity = q.Quantity
	return nil
}

func (l CartLine) LineTotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

type User struct {
	ID       string     `json:"id,omitempty"`
	Name     string     `json:"name"`
	Email    string     `json:"email"`
	Password string     `json:"password,omitempty"` // plaintext, local backend only
	IsAdmin  bool       `json:"isAdmin"`
	Role     Role       `json:"role"`
	Status   UserStatus `json:"status"`
}

func (u User) Key() string { return u.ID }

func (u User) WithKey(id string) User {
	u.ID = id
	return u
}

// Public strips the credential before the record leaves the store.
func (u User) Public() User {
	u.Password = ""
	return u
}

type Client struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

func (c Client) Key() string { return c.ID }

func (c Client) WithKey(id string) Client {
	c.ID = id
	return c
}

type Supplier struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	ContactName string `json:"contactName"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
}

func (s Supplier) Key() string { return s.ID }

func (s Supplier) WithKey(id string) Supplier {
	s.ID = id
	return s
}

type SaleStatus string

const (
	SaleCompleted SaleStatus = "completed"
	SalePending   SaleStatus = "pending"
	SaleCancelled SaleStatus = "cancelled"
)

// SaleItem is a snapshot: name and price are copied at sale time.
type SaleItem struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

type Sale struct {
	ID         string          `json:"id,omitempty"`
	Date       time.Time       `json:"date"`
	ClientID   string          `json:"clientId,omitempty"`
	ClientName string          `json:"clientName"`
	Items      []SaleItem      `json:"items"`
	Total      decimal.Decimal `json:"total"`
	Status     SaleStatus      `json:"status"`
}

func (s Sale) Key() string { return s.ID }

func (s Sale) WithKey(id string) Sale {
	s.ID = id
	return s
}

// ItemsTotal is Σ price × quantity over the line items.
func (s Sale) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range s.Items {
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

type PurchaseStatus string

const (
	PurchaseReceived PurchaseStatus = "received"
	PurchasePending  PurchaseStatus = "pending"
)

type PurchaseItem struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	Cost        decimal.Decimal `json:"cost"`
}

type Purchase struct {
	ID           string          `json:"id,omitempty"`
	Date         time.Time       `json:"date"`
	SupplierID   string          `json:"supplierId"`
	SupplierName string          `json:"supplierName"`
	Items        []PurchaseItem  `json:"items"`
	Total        decimal.Decimal `json:"total"`
	Status       PurchaseStatus  `json:"status"`
}

func (p Purchase) Key() string { return p.ID }

func (p Purchase) WithKey(id string) Purchase {
	p.ID = id
	return p
}

// ItemsTotal is Σ cost × quantity over the line items.
func (p Purchase) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range p.Items {
		total = total.Add(it.Cost.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}
