// Package dom wraps a parsed HTML page so that components can address named
// insertion points by id. Missing elements are never an error: mutators report
// whether the element existed and otherwise do nothing.
package dom

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Document is a mutable HTML page. It is not safe for concurrent use.
type Document struct {
	doc  *goquery.Document
	root *goquery.Selection
}

// Parse reads a full HTML document.
func Parse(r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return &Document{doc: doc, root: doc.Selection}, nil
}

func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// HTML serializes the whole document.
func (d *Document) HTML() (string, error) {
	return d.doc.Html()
}

// Selection exposes the underlying goquery selection for advanced lookups.
func (d *Document) Selection() *goquery.Selection {
	return d.root
}

// Scope returns a view of the document restricted to the subtree of the
// element with the given id. The view shares the underlying document.
func (d *Document) Scope(id string) *Document {
	return &Document{doc: d.doc, root: d.byID(id)}
}

func (d *Document) byID(id string) *goquery.Selection {
	// goquery.Selection.Find does not match the receiver itself.
	if d.root.Is("#" + cssEscape(id)) {
		return d.root.First()
	}
	return d.root.Find("#" + cssEscape(id)).First()
}

// Has reports whether an element with id exists in the (scoped) document.
func (d *Document) Has(id string) bool {
	return d.byID(id).Length() > 0
}

// InnerHTML returns the inner markup of id, or "" when missing.
func (d *Document) InnerHTML(id string) string {
	s := d.byID(id)
	if s.Length() == 0 {
		return ""
	}
	h, _ := s.Html()
	return h
}

// Text returns the text content of id.
func (d *Document) Text(id string) string {
	return d.byID(id).Text()
}

func (d *Document) SetHTML(id, html string) bool {
	s := d.byID(id)
	if s.Length() == 0 {
		return false
	}
	s.SetHtml(html)
	return true
}

func (d *Document) SetText(id, text string) bool {
	s := d.byID(id)
	if s.Length() == 0 {
		return false
	}
	s.SetText(text)
	return true
}

func (d *Document) AddClass(id, class string) bool {
	s := d.byID(id)
	if s.Length() == 0 {
		return false
	}
	s.AddClass(class)
	return true
}

func (d *Document) RemoveClass(id, class string) bool {
	s := d.byID(id)
	if s.Length() == 0 {
		return false
	}
	s.RemoveClass(class)
	return true
}

func (d *Document) HasClass(id, class string) bool {
	return d.byID(id).HasClass(class)
}

func (d *Document) Attr(id, name string) (string, bool) {
	return d.byID(id).Attr(name)
}

func (d *Document) SetAttr(id, name, value string) bool {
	s := d.byID(id)
	if s.Length() == 0 {
		return false
	}
	s.SetAttr(name, value)
	return true
}

// SetDisplay sets the inline CSS display property, keeping other declarations.
func (d *Document) SetDisplay(id, display string) bool {
	s := d.byID(id)
	if s.Length() == 0 {
		return false
	}
	style, _ := s.Attr("style")
	s.SetAttr("style", setStyleProperty(style, "display", display))
	return true
}

// Display returns the inline CSS display property of id.
func (d *Document) Display(id string) string {
	style, _ := d.byID(id).Attr("style")
	for _, decl := range strings.Split(style, ";") {
		name, value, ok := strings.Cut(decl, ":")
		if ok && strings.EqualFold(strings.TrimSpace(name), "display") {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

func setStyleProperty(style, name, value string) string {
	var decls []string
	replaced := false
	for _, decl := range strings.Split(style, ";") {
		decl = strings.TrimSpace(decl)
		if decl == "" {
			continue
		}
		prop, _, _ := strings.Cut(decl, ":")
		if strings.EqualFold(strings.TrimSpace(prop), name) {
			if !replaced {
				decls = append(decls, name+": "+value)
				replaced = true
			}
			continue
		}
		decls = append(decls, decl)
	}
	if !replaced {
		decls = append(decls, name+": "+value)
	}
	return strings.Join(decls, "; ")
}

// cssEscape escapes characters that would break an id selector.
func cssEscape(id string) string {
	var b strings.Builder
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r > 0x7f:
			b.WriteRune(r)
		default:
			b.WriteByte('\\')
			b.WriteRune(r)
		}
	}
	return b.String()
}
