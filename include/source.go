package include

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

const (
	NavbarFragment = "_navbar.html"
	FooterFragment = "_footer.html"
)

// FragmentSource returns shared HTML partials by file name.
type FragmentSource interface {
	Fragment(ctx context.Context, name string) (string, error)
}

// DirSource reads partials from a directory on disk.
type DirSource struct {
	dir string
}

func NewDirSource(dir string) *DirSource {
	return &DirSource{dir: dir}
}

func (s *DirSource) Fragment(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if name != filepath.Base(name) {
		return "", fmt.Errorf("invalid fragment name %q", name)
	}
	raw, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("read fragment %s: %w", name, err)
	}
	return string(raw), nil
}

// Fetcher GETs a path relative to some base URL.
type Fetcher interface {
	Fetch(ctx context.Context, path string) ([]byte, error)
}

// HTTPSource fetches partials over HTTP, e.g. from a CDN or the static host.
type HTTPSource struct {
	fetcher Fetcher
	prefix  string
}

// NewHTTPSource serves fragments as <prefix>/<name> through fetcher.
func NewHTTPSource(fetcher Fetcher, prefix string) *HTTPSource {
	return &HTTPSource{fetcher: fetcher, prefix: "/" + strings.Trim(prefix, "/")}
}

func (s *HTTPSource) Fragment(ctx context.Context, name string) (string, error) {
	body, err := s.fetcher.Fetch(ctx, path.Join(s.prefix, name))
	if err != nil {
		return "", fmt.Errorf("fetch fragment %s: %w", name, err)
	}
	return string(body), nil
}
