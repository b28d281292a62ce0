package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yashrajoria/storefront/config"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.Get(ctx, "cart")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, "cart", `[]`))
	v, err := s.Get(ctx, "cart")
	require.NoError(t, err)
	assert.Equal(t, `[]`, v)
	assert.Equal(t, []string{"cart"}, s.Keys())

	require.NoError(t, s.Delete(ctx, "cart"))
	_, err = s.Get(ctx, "cart")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCookieStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	value := `[{"id":"b1","title":"Dế Mèn","quantity":2}]`

	// first request writes
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	s := NewCookieStore(w, r, CookieOptions{MaxAge: time.Hour})
	require.NoError(t, s.Set(ctx, "cart_u1", value))

	got, err := s.Get(ctx, "cart_u1")
	require.NoError(t, err)
	assert.Equal(t, value, got, "write is visible within the same request")

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "cart_u1", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, 3600, cookies[0].MaxAge)

	// next request reads the cookie back
	r2 := httptest.NewRequest(http.MethodGet, "/", nil)
	r2.AddCookie(cookies[0])
	s2 := NewCookieStore(httptest.NewRecorder(), r2, CookieOptions{})
	got, err = s2.Get(ctx, "cart_u1")
	require.NoError(t, err)
	assert.Equal(t, value, got)
}

func TestCookieStoreDelete(t *testing.T) {
	ctx := context.Background()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: "cart", Value: "W10"})
	w := httptest.NewRecorder()
	s := NewCookieStore(w, r, CookieOptions{})

	got, err := s.Get(ctx, "cart")
	require.NoError(t, err)
	assert.Equal(t, "[]", got)

	require.NoError(t, s.Delete(ctx, "cart"))
	_, err = s.Get(ctx, "cart")
	assert.ErrorIs(t, err, ErrNotFound, "deleted key hides the request cookie")

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

// carry copies the cookies a response set into the next request, the way a
// browser would, dropping the ones it expired.
func carry(t *testing.T, w *httptest.ResponseRecorder, prev *http.Request) *http.Request {
	t.Helper()
	jar := map[string]*http.Cookie{}
	if prev != nil {
		for _, c := range prev.Cookies() {
			jar[c.Name] = c
		}
	}
	for _, c := range w.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(jar, c.Name)
			continue
		}
		jar[c.Name] = c
	}
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range jar {
		r.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}
	return r
}

func TestCookieStoreSplitsLargeValues(t *testing.T) {
	ctx := context.Background()
	value := strings.Repeat(`{"id":"3f2b9c1e-7a4d-4e8b-9f6a-2c5d8e1f0a3b","title":"Dế Mèn phiêu lưu ký"},`, 120)

	w := httptest.NewRecorder()
	s := NewCookieStore(w, httptest.NewRequest(http.MethodGet, "/", nil), CookieOptions{})
	require.NoError(t, s.Set(ctx, "cart_u1", value))

	names := map[string]string{}
	for _, c := range w.Result().Cookies() {
		assert.LessOrEqual(t, len(c.Value), maxCookieValue)
		names[c.Name] = c.Value
	}
	require.Contains(t, names, "cart_u1.0")
	require.Contains(t, names, "cart_u1.1")
	assert.True(t, strings.HasPrefix(names["cart_u1"], "~"))

	r := carry(t, w, nil)
	got, err := NewCookieStore(httptest.NewRecorder(), r, CookieOptions{}).Get(ctx, "cart_u1")
	require.NoError(t, err)
	assert.Equal(t, value, got)

	// shrinking back to one cookie expires the stale chunks
	w = httptest.NewRecorder()
	require.NoError(t, NewCookieStore(w, r, CookieOptions{}).Set(ctx, "cart_u1", "[]"))
	r = carry(t, w, r)
	for _, c := range r.Cookies() {
		assert.Equal(t, "cart_u1", c.Name)
	}
	got, err = NewCookieStore(httptest.NewRecorder(), r, CookieOptions{}).Get(ctx, "cart_u1")
	require.NoError(t, err)
	assert.Equal(t, "[]", got)
}

func TestCookieStoreDeleteExpiresChunks(t *testing.T) {
	ctx := context.Background()
	w := httptest.NewRecorder()
	require.NoError(t, NewCookieStore(w, httptest.NewRequest(http.MethodGet, "/", nil), CookieOptions{}).
		Set(ctx, "cart", strings.Repeat("x", 3*maxCookieValue)))
	r := carry(t, w, nil)
	require.Len(t, r.Cookies(), 5)

	w = httptest.NewRecorder()
	s := NewCookieStore(w, r, CookieOptions{})
	require.NoError(t, s.Delete(ctx, "cart"))
	assert.Empty(t, carry(t, w, r).Cookies())
}

func TestCookieStoreMissingChunk(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: "cart", Value: "~2"})
	r.AddCookie(&http.Cookie{Name: "cart.0", Value: "W10"})

	_, err := NewCookieStore(httptest.NewRecorder(), r, CookieOptions{}).Get(context.Background(), "cart")
	assert.ErrorContains(t, err, "missing chunk 1 of 2")
}

func TestCookieStoreRejectsValueBeyondCapacity(t *testing.T) {
	w := httptest.NewRecorder()
	s := NewCookieStore(w, httptest.NewRequest(http.MethodGet, "/", nil), CookieOptions{})
	err := s.Set(context.Background(), "cart", strings.Repeat("x", MaxChunks*maxCookieValue))
	assert.ErrorIs(t, err, ErrValueTooLarge)
	assert.Empty(t, w.Result().Cookies())
}

func TestCookieStoreBadEncoding(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: "cart", Value: "%%%"})
	s := NewCookieStore(httptest.NewRecorder(), r, CookieOptions{})

	_, err := s.Get(context.Background(), "cart")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestNewProvider(t *testing.T) {
	cfg := config.Defaults()
	cfg.Cart.Store = config.CartStoreMemory
	p, err := NewProvider(cfg)
	require.NoError(t, err)

	a := p(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	b := p(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Same(t, a, b, "memory store is shared across requests")

	cfg.Cart.Store = config.CartStoreCookie
	p, err = NewProvider(cfg)
	require.NoError(t, err)
	assert.IsType(t, &CookieStore{}, p(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil)))

	cfg.Cart.Store = "mongo"
	_, err = NewProvider(cfg)
	assert.Error(t, err)
}
