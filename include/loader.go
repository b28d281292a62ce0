// Package include injects the shared navbar and footer partials into a page
// and, in full mode, fills the category dropdown, refreshes the cart badge and
// switches the navbar between its guest and signed-in states.
package include

import (
	"context"
	"fmt"
	"html"
	"net/url"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/yashrajoria/storefront/auth"
	"github.com/yashrajoria/storefront/cart"
	"github.com/yashrajoria/storefront/dom"
	"github.com/yashrajoria/storefront/models"
)

// Mode selects how much of the navbar behaviour is applied.
type Mode string

const (
	Basic Mode = "basic"
	Full  Mode = "full"
)

// Element ids the partials and pages agree on.
const (
	NavbarPlaceholderID = "navbar-placeholder"
	FooterPlaceholderID = "footer-placeholder"
	CategoriesID        = "navbarCategories"
	NavGuestID          = "nav-guest"
	NavUserID           = "nav-user"
	NavUsernameID       = "nav-username"
	LogoutButtonID      = "logoutBtn"

	hiddenClass = "d-none"

	emptyCategoriesHTML = `<li><span class="dropdown-item">Không có danh mục</span></li>`
)

// DefaultLogoutPath is where the logout button points.
const DefaultLogoutPath = "/logout"

type CategorySource interface {
	Categories(ctx context.Context) ([]models.Category, error)
}

type ProfileSource interface {
	Me(ctx context.Context, token string) (models.UserProfile, error)
}

// BadgeSource computes the cart badge for an identity; *cart.Store satisfies it.
type BadgeSource interface {
	Badge(ctx context.Context, id auth.Identity) (cart.Badge, error)
}

// Result reports what the loader did to a page.
type Result struct {
	// Identity is the caller's identity after the profile probe; it degrades
	// to anonymous when the backend rejected the token.
	Identity     auth.Identity
	User         *models.UserProfile
	ClearToken   bool
	NavbarLoaded bool
	FooterLoaded bool
	// Stale is set when the request ended before the fetches returned; nothing
	// was applied to the document in that case.
	Stale bool
}

type Loader struct {
	mode       Mode
	fragments  FragmentSource
	categories CategorySource
	profiles   ProfileSource
	logoutPath string
	policy     *bluemonday.Policy
	log        *zap.Logger
}

type Option func(*Loader)

func WithCategories(src CategorySource) Option {
	return func(l *Loader) { l.categories = src }
}

func WithProfiles(src ProfileSource) Option {
	return func(l *Loader) { l.profiles = src }
}

func WithLogoutPath(p string) Option {
	return func(l *Loader) {
		if p != "" {
			l.logoutPath = p
		}
	}
}

// WithSanitizer runs every fetched fragment through a bluemonday policy.
func WithSanitizer() Option {
	return func(l *Loader) { l.policy = FragmentPolicy() }
}

func WithLogger(log *zap.Logger) Option {
	return func(l *Loader) {
		if log != nil {
			l.log = log
		}
	}
}

func NewLoader(mode Mode, fragments FragmentSource, opts ...Option) (*Loader, error) {
	switch mode {
	case Basic, Full:
	default:
		return nil, fmt.Errorf("unknown include mode %q", mode)
	}
	l := &Loader{
		mode:       mode,
		fragments:  fragments,
		logoutPath: DefaultLogoutPath,
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

func (l *Loader) Mode() Mode {
	return l.mode
}

// FragmentPolicy is the sanitizing policy for shared partials: user-content
// markup plus the attributes Bootstrap navbars rely on.
func FragmentPolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowElements("nav", "header", "footer", "div", "span", "ul", "li", "button", "form", "i")
	policy.AllowAttrs("class", "role", "aria-expanded", "aria-labelledby", "aria-label", "aria-current", "aria-controls").Globally()
	policy.AllowAttrs("type").OnElements("button")
	policy.AllowDataAttributes()
	policy.RequireNoFollowOnLinks(false)
	return policy
}

// Apply injects the partials into doc for identity id. badges may be nil, in
// which case the cart badge is left as served.
func (l *Loader) Apply(ctx context.Context, doc *dom.Document, id auth.Identity, badges BadgeSource) Result {
	res := Result{Identity: id}

	var navbar, footer string
	var navErr, footErr error
	var g errgroup.Group
	g.Go(func() error {
		navbar, navErr = l.fragments.Fragment(ctx, NavbarFragment)
		return nil
	})
	g.Go(func() error {
		footer, footErr = l.fragments.Fragment(ctx, FooterFragment)
		return nil
	})
	_ = g.Wait()

	if ctx.Err() != nil {
		res.Stale = true
		return res
	}

	if navErr != nil {
		l.log.Warn("failed to load navbar", zap.Error(navErr))
	} else {
		res.NavbarLoaded = doc.SetHTML(NavbarPlaceholderID, l.sanitize(navbar))
	}
	if footErr != nil {
		l.log.Warn("failed to load footer", zap.Error(footErr))
	} else {
		res.FooterLoaded = doc.SetHTML(FooterPlaceholderID, l.sanitize(footer))
	}

	if l.mode != Full || !res.NavbarLoaded {
		return res
	}

	return l.applyNavbarState(ctx, doc, res, badges)
}

func (l *Loader) applyNavbarState(ctx context.Context, doc *dom.Document, res Result, badges BadgeSource) Result {
	var (
		categories  []models.Category
		catErr      error
		user        models.UserProfile
		userErr     error
		probedToken bool
	)

	var g errgroup.Group
	if l.categories != nil {
		g.Go(func() error {
			categories, catErr = l.categories.Categories(ctx)
			return nil
		})
	}
	if l.profiles != nil && res.Identity.HasToken() {
		probedToken = true
		g.Go(func() error {
			user, userErr = l.profiles.Me(ctx, res.Identity.Token)
			return nil
		})
	}
	_ = g.Wait()

	if ctx.Err() != nil {
		res.Stale = true
		return res
	}

	nav := doc.Scope(NavbarPlaceholderID)

	if l.categories != nil {
		if catErr != nil {
			l.log.Warn("error loading navbar categories", zap.Error(catErr))
		} else {
			nav.SetHTML(CategoriesID, CategoryItemsHTML(categories))
		}
	}

	l.refreshBadge(ctx, doc, res.Identity, badges)

	if !probedToken {
		return res
	}
	if userErr != nil {
		l.log.Warn("error fetching user profile", zap.Error(userErr))
		res.ClearToken = true
		res.Identity = auth.Identity{}
		l.refreshBadge(ctx, doc, res.Identity, badges)
		return res
	}

	res.User = &user
	nav.AddClass(NavGuestID, hiddenClass)
	nav.RemoveClass(NavUserID, hiddenClass)
	nav.SetText(NavUsernameID, user.Fullname)
	nav.SetAttr(LogoutButtonID, "href", l.logoutPath)
	return res
}

func (l *Loader) refreshBadge(ctx context.Context, doc *dom.Document, id auth.Identity, badges BadgeSource) {
	if badges == nil {
		return
	}
	b, err := badges.Badge(ctx, id)
	if err != nil {
		l.log.Warn("failed to compute cart badge", zap.Error(err))
		b = cart.Badge{SignedIn: !id.Anonymous()}
	}
	cart.RenderBadge(doc, b)
}

func (l *Loader) sanitize(fragment string) string {
	if l.policy == nil {
		return fragment
	}
	return l.policy.Sanitize(fragment)
}

// CategoryItemsHTML renders the dropdown entries, or the placeholder entry
// for an empty list.
func CategoryItemsHTML(categories []models.Category) string {
	if len(categories) == 0 {
		return emptyCategoriesHTML
	}
	var b strings.Builder
	for _, cat := range categories {
		fmt.Fprintf(&b, `<li><a class="dropdown-item" href="category.html?id=%s">%s</a></li>`,
			html.EscapeString(url.QueryEscape(cat.ID)), html.EscapeString(cat.Name))
	}
	return b.String()
}
