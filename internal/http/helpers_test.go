package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/session"
	"github.com/fjod/go_cart/storefront/internal/view"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/net/html"
)

var (
	waffle = domain.Product{
		Name:     "Waffle with Berries",
		Category: "Waffle",
		Price:    decimal.RequireFromString("6.50"),
		Image:    domain.Image{Thumbnail: "waffle-thumb.jpg", Desktop: "waffle-desktop.jpg"},
	}
	brulee = domain.Product{
		Name:     "Vanilla Bean Crème Brûlée",
		Category: "Crème Brûlée",
		Price:    decimal.RequireFromString("7.00"),
		Image:    domain.Image{Thumbnail: "brulee-thumb.jpg", Desktop: "brulee-desktop.jpg"},
	}
	brownie = domain.Product{
		Name:     "Salted Caramel Brownie",
		Category: "Brownie",
		Price:    decimal.RequireFromString("4.50"),
		Image:    domain.Image{Thumbnail: "brownie-thumb.jpg", Desktop: "brownie-desktop.jpg"},
	}
)

type staticCatalog []domain.Product

func (c staticCatalog) Products() []domain.Product {
	return c
}

func (c staticCatalog) Product(name string) (domain.Product, bool) {
	for _, p := range c {
		if p.Name == name {
			return p, true
		}
	}
	return domain.Product{}, false
}

var testCatalog = staticCatalog{waffle, brulee, brownie}

type brokenStore struct{}

var errStoreDown = errors.New("dial tcp: connection refused")

func (brokenStore) Get(context.Context, string) (*session.Session, error) { return nil, errStoreDown }
func (brokenStore) Save(context.Context, *session.Session) error          { return errStoreDown }
func (brokenStore) Delete(context.Context, string) error                  { return errStoreDown }
func (brokenStore) Update(context.Context, string, func(*session.Session) error) (*session.Session, error) {
	return nil, errStoreDown
}

func newTestHandler(t *testing.T, sessions session.Store) *Handler {
	t.Helper()
	renderer, err := view.New()
	require.NoError(t, err)
	return NewHandler(HandlerParams{
		Catalog:  testCatalog,
		Sessions: sessions,
		Renderer: renderer,
		Logger:   zaptest.NewLogger(t),
		Timeout:  5 * time.Second,
	})
}

// newTestServer starts the full router over a memory session store and
// returns a client that keeps the session cookie between requests.
func newTestServer(t *testing.T) (*httptest.Server, *http.Client) {
	t.Helper()
	sessions := session.NewMemoryStore(time.Hour, time.Minute)
	t.Cleanup(sessions.Close)

	srv := httptest.NewServer(NewRouter(newTestHandler(t, sessions), zaptest.NewLogger(t), 5*time.Second))
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return srv, &http.Client{Jar: jar}
}

func readBody(t *testing.T, resp *http.Response) []byte {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return body
}

func parsePage(t *testing.T, resp *http.Response) *html.Node {
	t.Helper()
	body := readBody(t, resp)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	doc, err := html.Parse(bytes.NewReader(body))
	require.NoError(t, err)
	return doc
}

func doJSON(t *testing.T, client *http.Client, method, url string, body interface{}) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	require.NoError(t, err)
	return resp, readBody(t, resp)
}

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

func cardFor(t *testing.T, root *html.Node, name string) *html.Node {
	t.Helper()
	cards := findAll(root, func(n *html.Node) bool {
		v, ok := attr(n, "data-product-name")
		return ok && v == name && hasClass(n, "product-card")
	})
	require.Len(t, cards, 1, "expected one card for %q", name)
	return cards[0]
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
