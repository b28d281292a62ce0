// Package pagination splits an in-memory list into pages and renders
// Bootstrap page controls for it.
package pagination

import (
	"bytes"
	"html/template"
	"strconv"
	"strings"
)

const (
	DefaultItemsPerPage = 6
	MaxVisiblePages     = 5

	PrevLabel = "Trước"
	NextLabel = "Sau"
)

// Surface is where rendered controls are written; *dom.Document satisfies it.
type Surface interface {
	SetHTML(id, html string) bool
}

type Options[T any] struct {
	Items        []T
	ItemsPerPage int
	// ContainerID names the element holding the items. Page links jump to it.
	ContainerID string
	// PaginationID names the element receiving the controls.
	PaginationID string
	// Render receives the items of the current page on every render.
	Render func(items []T)
	// Href builds the link of a page; defaults to "?page=N#<ContainerID>".
	Href func(page int) string
}

type Paginator[T any] struct {
	items        []T
	itemsPerPage int
	currentPage  int
	containerID  string
	paginationID string
	render       func([]T)
	href         func(int) string
	surface      Surface
}

func New[T any](opts Options[T]) *Paginator[T] {
	p := &Paginator[T]{
		items:        opts.Items,
		itemsPerPage: opts.ItemsPerPage,
		currentPage:  1,
		containerID:  opts.ContainerID,
		paginationID: opts.PaginationID,
		render:       opts.Render,
		href:         opts.Href,
	}
	if p.itemsPerPage <= 0 {
		p.itemsPerPage = DefaultItemsPerPage
	}
	if p.href == nil {
		p.href = p.defaultHref
	}
	return p
}

// Attach sets the surface that Render writes the controls to.
func (p *Paginator[T]) Attach(s Surface) {
	p.surface = s
}

func (p *Paginator[T]) defaultHref(page int) string {
	return PathHref("", p.containerID)(page)
}

// PathHref links pages as <path>?page=N#<containerID>. Pages that set a
// <base> element need an absolute path here.
func PathHref(path, containerID string) func(page int) string {
	return func(page int) string {
		h := path + "?page=" + strconv.Itoa(page)
		if containerID != "" {
			h += "#" + containerID
		}
		return h
	}
}

func (p *Paginator[T]) TotalPages() int {
	return (len(p.items) + p.itemsPerPage - 1) / p.itemsPerPage
}

func (p *Paginator[T]) CurrentPage() int {
	return p.currentPage
}

func (p *Paginator[T]) ItemsPerPage() int {
	return p.itemsPerPage
}

func (p *Paginator[T]) Items() []T {
	return p.items
}

// CurrentPageItems returns the slice of items on the current page.
func (p *Paginator[T]) CurrentPageItems() []T {
	start := (p.currentPage - 1) * p.itemsPerPage
	if start >= len(p.items) {
		return []T{}
	}
	end := min(start+p.itemsPerPage, len(p.items))
	return p.items[start:end]
}

// GoToPage moves to page and renders. Requests for the current page or a
// page outside [1, TotalPages] are ignored and report false.
func (p *Paginator[T]) GoToPage(page int) bool {
	if page < 1 || page == p.currentPage || page > p.TotalPages() {
		return false
	}
	p.currentPage = page
	p.Render()
	return true
}

// UpdateItems replaces the list, resets to the first page and renders.
func (p *Paginator[T]) UpdateItems(items []T) {
	p.items = items
	p.currentPage = 1
	p.Render()
}

// Render passes the current items to the render callback and writes the
// controls into the pagination element of the attached surface.
func (p *Paginator[T]) Render() {
	if p.render != nil {
		p.render(p.CurrentPageItems())
	}
	if p.surface != nil && p.paginationID != "" {
		p.surface.SetHTML(p.paginationID, p.ControlsHTML())
	}
}

// Window is the range of page numbers shown around the current page.
type Window struct {
	Start, End       int
	Total            int
	ShowFirst        bool
	LeadingEllipsis  bool
	TrailingEllipsis bool
	ShowLast         bool
}

func (w Window) Pages() []int {
	if w.End < w.Start {
		return nil
	}
	pages := make([]int, 0, w.End-w.Start+1)
	for i := w.Start; i <= w.End; i++ {
		pages = append(pages, i)
	}
	return pages
}

func (p *Paginator[T]) Window() Window {
	return window(p.currentPage, p.TotalPages())
}

func window(current, total int) Window {
	start := max(1, current-MaxVisiblePages/2)
	end := min(total, start+MaxVisiblePages-1)
	if end-start < MaxVisiblePages-1 {
		start = max(1, end-MaxVisiblePages+1)
	}
	return Window{
		Start:            start,
		End:              end,
		Total:            total,
		ShowFirst:        start > 1,
		LeadingEllipsis:  start > 2,
		TrailingEllipsis: end < total-1,
		ShowLast:         end < total,
	}
}

type ControlKind int

const (
	ControlPrev ControlKind = iota
	ControlPage
	ControlEllipsis
	ControlNext
)

// Control is one entry of the control strip.
type Control struct {
	Kind     ControlKind
	Label    string
	Page     int
	Href     string
	Active   bool
	Disabled bool
}

// Controls lists the control strip; it is empty when there is at most one page.
func (p *Paginator[T]) Controls() []Control {
	total := p.TotalPages()
	if total <= 1 {
		return nil
	}
	cur := p.currentPage
	w := window(cur, total)

	page := func(n int) Control {
		return Control{Kind: ControlPage, Label: strconv.Itoa(n), Page: n, Href: p.href(n), Active: n == cur}
	}
	ellipsis := Control{Kind: ControlEllipsis, Label: "...", Disabled: true}

	out := []Control{p.step(ControlPrev, PrevLabel, cur-1, cur == 1)}
	if w.ShowFirst {
		out = append(out, page(1))
		if w.LeadingEllipsis {
			out = append(out, ellipsis)
		}
	}
	for _, n := range w.Pages() {
		out = append(out, page(n))
	}
	if w.ShowLast {
		if w.TrailingEllipsis {
			out = append(out, ellipsis)
		}
		out = append(out, page(total))
	}
	return append(out, p.step(ControlNext, NextLabel, cur+1, cur == total))
}

func (p *Paginator[T]) step(kind ControlKind, label string, target int, disabled bool) Control {
	c := Control{Kind: kind, Label: label, Page: target, Disabled: disabled, Href: "#"}
	if !disabled {
		c.Href = p.href(target)
	}
	return c
}

func (c Control) IsPage() bool     { return c.Kind == ControlPage }
func (c Control) IsEllipsis() bool { return c.Kind == ControlEllipsis }

var controlsTmpl = template.Must(template.New("pagination").Parse(
	`<ul class="pagination justify-content-center">` +
		`{{range .}}` +
		`{{if .IsEllipsis}}<li class="page-item disabled"><span class="page-link">{{.Label}}</span></li>` +
		`{{else if .IsPage}}<li class="page-item{{if .Active}} active{{end}}"{{if .Active}} aria-current="page"{{end}}><a class="page-link" href="{{.Href}}" data-page="{{.Page}}">{{.Label}}</a></li>` +
		`{{else}}<li class="page-item{{if .Disabled}} disabled{{end}}"><a class="page-link" href="{{.Href}}" data-page="{{.Page}}"{{if .Disabled}} tabindex="-1" aria-disabled="true"{{end}}>{{.Label}}</a></li>` +
		`{{end}}{{end}}</ul>`))

// ControlsHTML renders Controls as Bootstrap markup, or "" for a single page.
func (p *Paginator[T]) ControlsHTML() string {
	controls := p.Controls()
	if len(controls) == 0 {
		return ""
	}
	var buf bytes.Buffer
	if err := controlsTmpl.Execute(&buf, controls); err != nil {
		return ""
	}
	return buf.String()
}

// ParsePage reads a page number from a query value; anything unparsable is 0,
// which GoToPage ignores.
func ParsePage(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return n
}
