package view

import (
	"bytes"
	"io/fs"
	"strings"
	"testing"
	"time"

	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/order"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

var (
	waffle = domain.Product{
		Name:     "Waffle",
		Category: "Waffle",
		Price:    decimal.RequireFromString("6.50"),
		Image:    domain.Image{Thumbnail: "waffle-thumb.jpg", Desktop: "waffle-desktop.jpg"},
	}
	brownie = domain.Product{
		Name:     "Salted Caramel Brownie",
		Category: "Brownie",
		Price:    decimal.RequireFromString("4.50"),
		Image:    domain.Image{Thumbnail: "brownie-thumb.jpg", Desktop: "brownie-desktop.jpg"},
	}
)

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func hasClass(n *html.Node, class string) bool {
	v, _ := attr(n, "class")
	for _, c := range strings.Fields(v) {
		if c == class {
			return true
		}
	}
	return false
}

func findAll(root *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && match(n) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return out
}

func byID(t *testing.T, root *html.Node, id string) *html.Node {
	t.Helper()
	nodes := findAll(root, func(n *html.Node) bool {
		v, ok := attr(n, "id")
		return ok && v == id
	})
	require.Len(t, nodes, 1, "expected exactly one #%s", id)
	return nodes[0]
}

func byClass(root *html.Node, class string) []*html.Node {
	return findAll(root, func(n *html.Node) bool { return hasClass(n, class) })
}

func text(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

func render(t *testing.T, fn func(*Renderer, *bytes.Buffer) error) *html.Node {
	t.Helper()
	r, err := New()
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, fn(r, &buf))
	doc, err := html.Parse(&buf)
	require.NoError(t, err)
	return doc
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "$6.50", Money(decimal.RequireFromString("6.5")))
	assert.Equal(t, "$13.00", Money(decimal.NewFromInt(13)))
	assert.Equal(t, "$0.00", Money(decimal.Zero))
	assert.Equal(t, "$0.30", Money(decimal.RequireFromString("0.1").Add(decimal.RequireFromString("0.2"))))
}

func TestCartPanel_EmptyShowsPlaceholder(t *testing.T) {
	doc := render(t, func(r *Renderer, b *bytes.Buffer) error {
		return r.CartPanel(b, NewCartView(cart.NewStore()))
	})

	panel := byID(t, doc, CartID)
	assert.Contains(t, text(panel), "Your added items would appear here")
	assert.Empty(t, byClass(panel, "cart-total"))
	assert.Empty(t, byClass(panel, "confirm-order"))
	assert.Equal(t, "(0)", text(byID(t, doc, BadgeID)))
}

func TestCartPanel_LinesAndTotal(t *testing.T) {
	store := cart.NewStore()
	require.NoError(t, store.Add(brownie, 1))
	require.NoError(t, store.Add(waffle, 2))

	doc := render(t, func(r *Renderer, b *bytes.Buffer) error {
		return r.CartPanel(b, NewCartView(store))
	})

	lines := byClass(doc, "cart-item")
	require.Len(t, lines, 2)
	name, _ := attr(lines[0], "data-product-name")
	assert.Equal(t, brownie.Name, name)

	second := lines[1]
	assert.Equal(t, "Waffle", text(byClass(second, "cart-item-name")[0]))
	assert.Equal(t, "2x", text(byClass(second, "cart-item-quantity")[0]))
	assert.Equal(t, "@ $6.50", text(byClass(second, "cart-item-price")[0]))
	assert.Equal(t, "$13.00", text(byClass(second, "cart-item-total")[0]))
	assert.Len(t, byClass(second, "cart-item-remove"), 1)

	assert.Equal(t, "$17.50", text(byClass(doc, "cart-total-amount")[0]))
	assert.Equal(t, "(3)", text(byID(t, doc, BadgeID)))
	assert.Len(t, byClass(doc, "confirm-order"), 1)
	assert.Empty(t, byClass(doc, "cart-empty"))
}

func TestCard_IdleAndActive(t *testing.T) {
	idle := render(t, func(r *Renderer, b *bytes.Buffer) error {
		return r.Card(b, cart.CardState{Product: waffle, Mode: cart.CardIdle})
	})
	card := byClass(idle, "product-card")[0]
	name, _ := attr(card, "data-product-name")
	assert.Equal(t, "Waffle", name)
	state, _ := attr(card, "data-state")
	assert.Equal(t, "idle", state)
	assert.Len(t, byClass(card, "add-to-cart-button"), 1)
	assert.Empty(t, byClass(card, "quantity-stepper"))
	assert.Equal(t, "$6.50", text(byClass(card, "product-price")[0]))
	img := byClass(card, "product-image")[0]
	src, _ := attr(img, "src")
	assert.Equal(t, "waffle-desktop.jpg", src)

	active := render(t, func(r *Renderer, b *bytes.Buffer) error {
		return r.Card(b, cart.CardState{Product: waffle, Mode: cart.CardActive, Quantity: 3})
	})
	card = byClass(active, "product-card")[0]
	state, _ = attr(card, "data-state")
	assert.Equal(t, "active", state)
	assert.Empty(t, byClass(card, "add-to-cart-button"))
	assert.Equal(t, "3", text(byClass(card, "quantity")[0]))
	assert.Len(t, byClass(card, "increment"), 1)
	assert.Len(t, byClass(card, "decrement"), 1)
}

func TestOrderModal_HiddenWithoutOrder(t *testing.T) {
	doc := render(t, func(r *Renderer, b *bytes.Buffer) error {
		return r.OrderModal(b, nil)
	})

	modal := byID(t, doc, OrderModalID)
	_, hidden := attr(modal, "hidden")
	assert.True(t, hidden)
	assert.Empty(t, byClass(byID(t, doc, OrderDetailID), "order-item"))
}

func TestOrderModal_ShowsSnapshot(t *testing.T) {
	snapshot, err := order.NewSnapshot([]domain.CartEntry{
		{Product: waffle, Quantity: 2},
		{Product: brownie, Quantity: 1},
	}, time.Now())
	require.NoError(t, err)

	doc := render(t, func(r *Renderer, b *bytes.Buffer) error {
		return r.OrderModal(b, snapshot)
	})

	modal := byID(t, doc, OrderModalID)
	_, hidden := attr(modal, "hidden")
	assert.False(t, hidden)
	assert.True(t, hasClass(modal, "modal--open"))

	items := byClass(byID(t, doc, OrderDetailID), "order-item")
	require.Len(t, items, 2)
	thumb, _ := attr(byClass(items[0], "order-item-thumbnail")[0], "src")
	assert.Equal(t, "waffle-thumb.jpg", thumb)
	assert.Equal(t, "2x", text(byClass(items[0], "order-item-quantity")[0]))
	assert.Equal(t, "$13.00", text(byClass(items[0], "order-item-total")[0]))
	assert.Equal(t, "$17.50", text(byClass(doc, "order-total-amount")[0]))
}

func TestPage_HasLoadBearingIDs(t *testing.T) {
	store := cart.NewStore()
	ctrl := cart.NewController(store, []domain.Product{waffle, brownie})
	defer ctrl.Close()
	require.NoError(t, ctrl.PressAdd(waffle.Name))

	doc := render(t, func(r *Renderer, b *bytes.Buffer) error {
		return r.Page(b, Page{Cards: ctrl.Cards(), Cart: NewCartView(store)})
	})

	list := byID(t, doc, ProductListID)
	cards := byClass(list, "product-card")
	require.Len(t, cards, 2)
	assert.True(t, hasClass(cards[0], "product-card--active"))
	assert.False(t, hasClass(cards[1], "product-card--active"))

	byID(t, doc, CartID)
	byID(t, doc, OrderModalID)
	byID(t, doc, OrderDetailID)
	assert.Equal(t, "(1)", text(byID(t, doc, BadgeID)))
	assert.Equal(t, "$6.50", text(byClass(doc, "cart-total-amount")[0]))
}

func TestPage_EscapesProductNames(t *testing.T) {
	evil := domain.Product{Name: `<script>alert(1)</script>`, Price: decimal.NewFromInt(1)}
	r, err := New()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Card(&buf, cart.CardState{Product: evil}))

	assert.NotContains(t, buf.String(), "<script>")
}

func TestStatic_HasStylesheet(t *testing.T) {
	data, err := fs.ReadFile(Static(), "style.css")
	require.NoError(t, err)
	assert.Contains(t, string(data), ".product-card")
}
