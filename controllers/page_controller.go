package controllers

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yashrajoria/storefront/dom"
	apperrors "github.com/yashrajoria/storefront/errors"
	"github.com/yashrajoria/storefront/include"
	"github.com/yashrajoria/storefront/logger"
	"github.com/yashrajoria/storefront/middleware"
	"github.com/yashrajoria/storefront/storage"
)

const (
	IndexPage   = "index.html"
	LoginFormID = "loginForm"
)

type PageConfig struct {
	Dir           string
	CartKeyPrefix string
	// APIBaseURL is exposed to the login form as data-api.
	APIBaseURL string
	Session    SessionCookie
}

// PageController serves the storefront pages, assembling each one with the
// shared partials before it is written.
type PageController struct {
	cfg    PageConfig
	loader *include.Loader
	stores storage.Provider
	log    *zap.Logger
}

func NewPageController(cfg PageConfig, loader *include.Loader, stores storage.Provider, log *zap.Logger) *PageController {
	return &PageController{cfg: cfg, loader: loader, stores: stores, log: log}
}

// Serve handles every path not claimed by another route: HTML pages are
// assembled, anything else is served as a static file. Partials (files
// starting with "_") are not served directly.
func (pc *PageController) Serve(c *gin.Context) {
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		_ = c.Error(apperrors.ErrMethodNotAllowed)
		return
	}

	name := strings.TrimPrefix(path.Clean("/"+c.Request.URL.Path), "/")
	if name == "" {
		name = IndexPage
	}
	if strings.HasPrefix(path.Base(name), "_") {
		_ = c.Error(apperrors.ErrNotFound)
		return
	}

	if strings.HasSuffix(name, ".html") {
		pc.Render(c, name, nil)
		return
	}

	full := pc.path(name)
	info, err := os.Stat(full)
	if err != nil || info.IsDir() {
		_ = c.Error(apperrors.ErrNotFound)
		return
	}
	c.File(full)
}

func (pc *PageController) path(name string) string {
	return filepath.Join(pc.cfg.Dir, filepath.FromSlash(path.Clean("/"+name)))
}

// Render loads page name, lets prepare fill page specific content, runs the
// include loader and writes the result.
func (pc *PageController) Render(c *gin.Context, name string, prepare func(doc *dom.Document)) {
	log := logger.For(c, pc.log)

	f, err := os.Open(pc.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			_ = c.Error(apperrors.ErrNotFound)
			return
		}
		log.Error("failed to open page", zap.String("page", name), zap.Error(err))
		_ = c.Error(apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}
	defer f.Close()

	doc, err := dom.Parse(f)
	if err != nil {
		log.Error("failed to parse page", zap.String("page", name), zap.Error(err))
		_ = c.Error(apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}

	if pc.cfg.APIBaseURL != "" {
		doc.SetAttr(LoginFormID, "data-api", pc.cfg.APIBaseURL)
	}
	if prepare != nil {
		prepare(doc)
	}

	id := middleware.GetIdentity(c)
	res := pc.loader.Apply(c.Request.Context(), doc, id, newCartStore(c, pc.stores, pc.cfg.CartKeyPrefix))
	if res.Stale {
		log.Debug("request ended before page was assembled", zap.String("page", name))
		return
	}
	if res.ClearToken {
		pc.cfg.Session.Expire(c)
	}

	out, err := doc.HTML()
	if err != nil {
		log.Error("failed to render page", zap.String("page", name), zap.Error(err))
		_ = c.Error(apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(out))
}
