package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yashrajoria/storefront/auth"
	"github.com/yashrajoria/storefront/clients"
	apperrors "github.com/yashrajoria/storefront/errors"
	"github.com/yashrajoria/storefront/include"
	"github.com/yashrajoria/storefront/middleware"
	"github.com/yashrajoria/storefront/models"
	"github.com/yashrajoria/storefront/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testPage = `<!DOCTYPE html><html><head><base href="/"></head><body>
<div id="navbar-placeholder"></div>
<main id="content">%s</main>
<div id="footer-placeholder"></div>
</body></html>`

var testPages = map[string]string{
	"_navbar.html": `<nav><ul id="navbarCategories"></ul>` +
		`<span id="cartBadge" style="display: none">0</span>` +
		`<div id="nav-guest">Đăng nhập</div>` +
		`<div id="nav-user" class="d-none"><span id="nav-username"></span><a id="logoutBtn" href="#">Đăng xuất</a></div></nav>`,
	"_footer.html": `<footer>© Bookstore</footer>`,
	"index.html":   strings.Replace(testPage, "%s", `<h1>Trang chủ</h1>`, 1),
	"login.html":   strings.Replace(testPage, "%s", `<form id="loginForm" data-api="x"></form>`, 1),
	"category.html": strings.Replace(testPage, "%s",
		`<h1 id="categoryTitle"></h1><div id="productGrid"></div><nav id="pagination"></nav>`, 1),
	"admin/products.html": strings.Replace(testPage, "%s",
		`<div id="productList"><table><tbody id="productTableBody"></tbody></table></div><nav id="pagination"></nav>`, 1),
	"admin/categories.html": strings.Replace(testPage, "%s",
		`<div id="categoryList"><table><tbody id="categoryTableBody"></tbody></table></div><nav id="pagination"></nav>`, 1),
	"css/style.css": `body{}`,
}

type fakeBackend struct {
	products   []models.Product
	categories []models.Category
	users      map[string]models.UserProfile
	err        error
	queries    []clients.ProductQuery
}

func (f *fakeBackend) Products(_ context.Context, q clients.ProductQuery) ([]models.Product, error) {
	f.queries = append(f.queries, q)
	if f.err != nil {
		return nil, f.err
	}
	if q.CategoryID == "" {
		return f.products, nil
	}
	var out []models.Product
	for _, p := range f.products {
		if p.CategoryID == q.CategoryID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeBackend) Categories(context.Context) ([]models.Category, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.categories, nil
}

func (f *fakeBackend) Me(_ context.Context, token string) (models.UserProfile, error) {
	u, ok := f.users[token]
	if !ok {
		return models.UserProfile{}, &clients.UpstreamError{Method: "GET", Path: "/users/me", Status: http.StatusUnauthorized}
	}
	return u, nil
}

type harness struct {
	router  *gin.Engine
	kv      *storage.MemoryStore
	backend *fakeBackend
}

func token(t *testing.T, userID string) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"id": userID}).SignedString([]byte("k"))
	require.NoError(t, err)
	return tok
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	for name, body := range testPages {
		full := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(body), 0o644))
	}

	h := &harness{
		kv: storage.NewMemoryStore(),
		backend: &fakeBackend{
			users: map[string]models.UserProfile{},
		},
	}
	stores := func(http.ResponseWriter, *http.Request) storage.Store { return h.kv }
	log := zap.NewNop()

	loader, err := include.NewLoader(include.Full, include.NewDirSource(dir),
		include.WithCategories(h.backend), include.WithProfiles(h.backend))
	require.NoError(t, err)

	session := SessionCookie{Name: "token"}
	resolver := auth.NewResolver()
	pages := NewPageController(PageConfig{Dir: dir, CartKeyPrefix: "cart", APIBaseURL: "http://api.test", Session: session}, loader, stores, log)
	carts := NewCartController(stores, "cart", log)
	admin := NewAdminController(pages, h.backend, 6, log)
	catalog := NewCatalogController(pages, h.backend, h.backend, 6, log)
	sessions := NewSessionController(session, resolver, "/login.html", log)

	r := gin.New()
	r.Use(middleware.Session(resolver, "token"), apperrors.ErrorMiddleware())
	r.GET("/healthz", Health)
	r.POST("/session", sessions.Login)
	r.GET("/logout", sessions.Logout)
	api := r.Group("/api/cart")
	api.GET("", carts.GetCart)
	api.DELETE("", carts.ClearCart)
	api.GET("/badge", carts.Badge)
	api.POST("/items", carts.AddItem)
	api.PUT("/items/:id", carts.UpdateQuantity)
	api.DELETE("/items/:id", carts.RemoveItem)
	r.GET("/category.html", catalog.Category)
	r.GET("/admin/products", admin.Products)
	r.GET("/admin/categories", admin.Categories)
	r.NoRoute(pages.Serve)

	h.router = r
	return h
}

type request struct {
	method, path, body, token string
}

func (h *harness) do(req request) *httptest.ResponseRecorder {
	var r *http.Request
	if req.body != "" {
		r = httptest.NewRequest(req.method, req.path, strings.NewReader(req.body))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(req.method, req.path, nil)
	}
	if req.token != "" {
		r.AddCookie(&http.Cookie{Name: "token", Value: req.token})
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, r)
	return w
}
