package cart

import (
	"context"
	"strconv"

	"github.com/yashrajoria/storefront/auth"
	"github.com/yashrajoria/storefront/models"
)

// BadgeElementID is the navbar element showing the cart count.
const BadgeElementID = "cartBadge"

// Badge is the state of the cart count indicator.
type Badge struct {
	SignedIn bool
	Count    int
	Visible  bool
}

// View converts the badge to its JSON form.
func (b Badge) View() models.BadgeView {
	return models.BadgeView{Count: b.Count, Visible: b.Visible}
}

// BadgeFor derives the indicator from a record. Anonymous shoppers never see
// it, whatever the anonymous cart holds.
func BadgeFor(id auth.Identity, rec Record) Badge {
	if id.Anonymous() {
		return Badge{}
	}
	count := rec.Count()
	return Badge{SignedIn: true, Count: count, Visible: count > 0}
}

// Badge reads the record and derives the indicator.
func (s *Store) Badge(ctx context.Context, id auth.Identity) (Badge, error) {
	if id.Anonymous() {
		return Badge{}, nil
	}
	rec, err := s.GetAll(ctx, id)
	if err != nil {
		return Badge{}, err
	}
	return BadgeFor(id, rec), nil
}

// BadgeTarget is the part of a page the badge is rendered into.
type BadgeTarget interface {
	SetText(id, text string) bool
	SetDisplay(id, display string) bool
}

// RenderBadge writes b into the cartBadge element. A page without the element
// is left untouched.
func RenderBadge(page BadgeTarget, b Badge) {
	if !b.SignedIn {
		page.SetDisplay(BadgeElementID, "none")
		return
	}
	if !page.SetText(BadgeElementID, strconv.Itoa(b.Count)) {
		return
	}
	if b.Visible {
		page.SetDisplay(BadgeElementID, "inline-block")
	} else {
		page.SetDisplay(BadgeElementID, "none")
	}
}
