package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"

	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

// Element ids the page markup and any client script rely on.
const (
	ProductListID = "product-list"
	CartID        = "cart"
	BadgeID       = "cart-text-number"
	OrderModalID  = "order-modal"
	OrderDetailID = "order-details"
)

// Money formats an amount the way the page shows prices, e.g. "$6.50".
func Money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

// Static returns the embedded stylesheet tree rooted at "static".
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

type CartLine struct {
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}

// CartView is the cart panel projection of a store.
type CartView struct {
	Lines     []CartLine
	ItemCount int
	Total     decimal.Decimal
}

func (c CartView) Empty() bool {
	return len(c.Lines) == 0
}

func NewCartView(store *cart.Store) CartView {
	entries := store.Entries()
	v := CartView{
		Lines: make([]CartLine, 0, len(entries)),
		Total: decimal.Zero,
	}
	for _, e := range entries {
		line := CartLine{
			Name:      e.Product.Name,
			Quantity:  e.Quantity,
			UnitPrice: e.Product.Price,
			LineTotal: e.LineTotal(),
		}
		v.Lines = append(v.Lines, line)
		v.ItemCount += e.Quantity
		v.Total = v.Total.Add(line.LineTotal)
	}
	return v
}

type Page struct {
	Cards []cart.CardState
	Cart  CartView
	Order *domain.OrderSnapshot
}

type Renderer struct {
	tmpl *template.Template
}

func New() (*Renderer, error) {
	tmpl, err := template.New("view").
		Funcs(template.FuncMap{"money": Money}).
		ParseFS(templatesFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

func (r *Renderer) Page(w io.Writer, p Page) error {
	return r.tmpl.ExecuteTemplate(w, "page", p)
}

func (r *Renderer) Card(w io.Writer, card cart.CardState) error {
	return r.tmpl.ExecuteTemplate(w, "card", card)
}

func (r *Renderer) CartPanel(w io.Writer, v CartView) error {
	return r.tmpl.ExecuteTemplate(w, "cart", v)
}

func (r *Renderer) Badge(w io.Writer, itemCount int) error {
	return r.tmpl.ExecuteTemplate(w, "badge", itemCount)
}

// OrderModal renders the confirmation overlay; a nil snapshot renders it hidden.
func (r *Renderer) OrderModal(w io.Writer, order *domain.OrderSnapshot) error {
	return r.tmpl.ExecuteTemplate(w, "modal", order)
}
