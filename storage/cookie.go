package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	// maxCookieValue keeps a single cookie under the 4096 byte limit browsers
	// enforce for name, value and attributes together.
	maxCookieValue = 3800

	// MaxChunks bounds how many cookies one value may span. Browsers keep at
	// least 50 cookies per domain, so this leaves room for the session and
	// a second cart record.
	MaxChunks = 20

	// chunkMarker prefixes the head cookie of a split value. It is outside
	// the base64url alphabet, so it never starts a single-cookie value.
	chunkMarker = "~"
)

// ErrValueTooLarge is returned when a value needs more than MaxChunks cookies.
var ErrValueTooLarge = errors.New("storage: value exceeds the cookie capacity")

// CookieStore keeps values in cookies of the current request/response pair,
// so the record stays with the shopper's browser like localStorage did.
// Writes are visible to later reads within the same request.
//
// A value that fits one cookie is stored under its key. Larger values are
// split into key.0, key.1, ... and the key cookie holds "~N".
type CookieStore struct {
	w    http.ResponseWriter
	r    *http.Request
	opts CookieOptions

	mu      sync.Mutex
	pending map[string]*string
	// chunks is the chunk count last written per key in this response.
	chunks map[string]int
}

func NewCookieStore(w http.ResponseWriter, r *http.Request, opts CookieOptions) *CookieStore {
	if opts.Path == "" {
		opts.Path = "/"
	}
	return &CookieStore{
		w:       w,
		r:       r,
		opts:    opts,
		pending: make(map[string]*string),
		chunks:  make(map[string]int),
	}
}

func (s *CookieStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	if v, ok := s.pending[key]; ok {
		s.mu.Unlock()
		if v == nil {
			return "", ErrNotFound
		}
		return *v, nil
	}
	s.mu.Unlock()

	c, err := s.r.Cookie(key)
	if err != nil || c.Value == "" {
		return "", ErrNotFound
	}

	encoded := c.Value
	if strings.HasPrefix(encoded, chunkMarker) {
		encoded, err = s.joinChunks(key, strings.TrimPrefix(encoded, chunkMarker))
		if err != nil {
			return "", err
		}
	}

	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("decode cookie %s: %w", key, err)
	}
	return string(raw), nil
}

func (s *CookieStore) joinChunks(key, count string) (string, error) {
	n, err := strconv.Atoi(count)
	if err != nil || n < 1 || n > MaxChunks {
		return "", fmt.Errorf("cookie %s: invalid chunk count %q", key, count)
	}
	var b strings.Builder
	for i := 0; i < n; i++ {
		c, err := s.r.Cookie(chunkName(key, i))
		if err != nil {
			return "", fmt.Errorf("cookie %s: missing chunk %d of %d", key, i, n)
		}
		b.WriteString(c.Value)
	}
	return b.String(), nil
}

func (s *CookieStore) Set(_ context.Context, key, value string) error {
	encoded := base64.RawURLEncoding.EncodeToString([]byte(value))

	var parts []string
	if len(encoded) > maxCookieValue {
		for rest := encoded; rest != ""; {
			n := min(len(rest), maxCookieValue)
			parts = append(parts, rest[:n])
			rest = rest[n:]
		}
		if len(parts) > MaxChunks {
			return fmt.Errorf("cookie %s: %d bytes need %d cookies: %w", key, len(encoded), len(parts), ErrValueTooLarge)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[key] = &value

	if parts == nil {
		s.write(key, encoded, s.opts.MaxAge)
	} else {
		s.write(key, chunkMarker+strconv.Itoa(len(parts)), s.opts.MaxAge)
		for i, part := range parts {
			s.write(chunkName(key, i), part, s.opts.MaxAge)
		}
	}
	s.expireChunks(key, len(parts))
	return nil
}

func (s *CookieStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[key] = nil

	s.write(key, "", -time.Second)
	s.expireChunks(key, 0)
	return nil
}

// expireChunks drops the chunk cookies from index keep on that the browser
// sent or that this response wrote earlier. Callers hold s.mu.
func (s *CookieStore) expireChunks(key string, keep int) {
	last := s.chunks[key]
	prefix := key + "."
	for _, c := range s.r.Cookies() {
		suffix, ok := strings.CutPrefix(c.Name, prefix)
		if !ok {
			continue
		}
		if i, err := strconv.Atoi(suffix); err == nil && i >= 0 && i+1 > last {
			last = i + 1
		}
	}
	for i := keep; i < last; i++ {
		s.write(chunkName(key, i), "", -time.Second)
	}
	s.chunks[key] = keep
}

func (s *CookieStore) write(name, value string, maxAge time.Duration) {
	seconds := int(maxAge / time.Second)
	if maxAge < 0 {
		seconds = -1
	}
	http.SetCookie(s.w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     s.opts.Path,
		MaxAge:   seconds,
		HttpOnly: true,
		Secure:   s.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func chunkName(key string, i int) string {
	return key + "." + strconv.Itoa(i)
}
