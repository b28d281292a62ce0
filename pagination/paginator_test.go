package pagination

import (
	"strconv"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

type surface struct {
	id   string
	html string
	sets int
}

func (s *surface) SetHTML(id, html string) bool {
	if id != s.id {
		return false
	}
	s.html = html
	s.sets++
	return true
}

func TestTotalPagesAndCurrentItems(t *testing.T) {
	p := New(Options[int]{Items: seq(23), ItemsPerPage: 6})
	assert.Equal(t, 4, p.TotalPages())
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, p.CurrentPageItems())

	require.True(t, p.GoToPage(2))
	assert.Equal(t, []int{6, 7, 8, 9, 10, 11}, p.CurrentPageItems())

	require.True(t, p.GoToPage(4))
	assert.Equal(t, []int{18, 19, 20, 21, 22}, p.CurrentPageItems())
}

func TestDefaults(t *testing.T) {
	p := New(Options[string]{})
	assert.Equal(t, DefaultItemsPerPage, p.ItemsPerPage())
	assert.Equal(t, 0, p.TotalPages())
	assert.Equal(t, 1, p.CurrentPage())
	assert.Empty(t, p.CurrentPageItems())
	assert.Nil(t, p.Controls())
	assert.Equal(t, "", p.ControlsHTML())
}

func TestGoToPageRejectsInvalid(t *testing.T) {
	var renders int
	p := New(Options[int]{Items: seq(23), ItemsPerPage: 6, Render: func([]int) { renders++ }})
	require.True(t, p.GoToPage(2))

	for _, page := range []int{5, 0, -1, 2} {
		assert.False(t, p.GoToPage(page), "page %d", page)
		assert.Equal(t, 2, p.CurrentPage())
	}
	assert.Equal(t, 1, renders)
}

func TestUpdateItemsResetsToFirstPage(t *testing.T) {
	var got []int
	p := New(Options[int]{Items: seq(30), ItemsPerPage: 6, Render: func(items []int) { got = items }})
	require.True(t, p.GoToPage(5))

	p.UpdateItems(seq(8))
	assert.Equal(t, 1, p.CurrentPage())
	assert.Equal(t, 2, p.TotalPages())
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, got)
}

func TestWindow(t *testing.T) {
	tests := []struct {
		name           string
		current, total int
		pages          []int
		first, leading bool
		trailing, last bool
	}{
		{"first of ten", 1, 10, []int{1, 2, 3, 4, 5}, false, false, true, true},
		{"last of ten", 10, 10, []int{6, 7, 8, 9, 10}, true, true, false, false},
		{"middle of ten", 5, 10, []int{3, 4, 5, 6, 7}, true, true, true, true},
		{"start at two", 4, 10, []int{2, 3, 4, 5, 6}, true, false, true, true},
		{"end one short", 7, 10, []int{5, 6, 7, 8, 9}, true, true, false, true},
		{"fewer than five", 2, 3, []int{1, 2, 3}, false, false, false, false},
		{"exactly five", 3, 5, []int{1, 2, 3, 4, 5}, false, false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := window(tt.current, tt.total)
			assert.Equal(t, tt.pages, w.Pages())
			assert.Equal(t, tt.first, w.ShowFirst, "first")
			assert.Equal(t, tt.leading, w.LeadingEllipsis, "leading ellipsis")
			assert.Equal(t, tt.trailing, w.TrailingEllipsis, "trailing ellipsis")
			assert.Equal(t, tt.last, w.ShowLast, "last")
		})
	}
}

func labels(cs []Control) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Label
	}
	return out
}

func TestControls(t *testing.T) {
	p := New(Options[int]{Items: seq(60), ItemsPerPage: 6, ContainerID: "productList"})

	cs := p.Controls()
	assert.Equal(t, []string{"Trước", "1", "2", "3", "4", "5", "...", "10", "Sau"}, labels(cs))
	assert.True(t, cs[0].Disabled)
	assert.Equal(t, "#", cs[0].Href)
	assert.True(t, cs[1].Active)
	assert.Equal(t, "?page=2#productList", cs[2].Href)
	assert.False(t, cs[len(cs)-1].Disabled)
	assert.Equal(t, 2, cs[len(cs)-1].Page)

	require.True(t, p.GoToPage(10))
	cs = p.Controls()
	assert.Equal(t, []string{"Trước", "1", "...", "6", "7", "8", "9", "10", "Sau"}, labels(cs))
	assert.True(t, cs[len(cs)-1].Disabled)
	assert.Equal(t, "?page=9#productList", cs[0].Href)
}

func TestControlsHTML(t *testing.T) {
	p := New(Options[int]{
		Items:        seq(60),
		ItemsPerPage: 6,
		Href:         func(page int) string { return "/admin/products?page=" + strconv.Itoa(page) },
	})
	require.True(t, p.GoToPage(5))

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(p.ControlsHTML()))
	require.NoError(t, err)

	ul := doc.Find("ul.pagination.justify-content-center")
	require.Equal(t, 1, ul.Length())
	assert.Equal(t, 11, ul.Find("li.page-item").Length())
	assert.Equal(t, 2, ul.Find("li.disabled span.page-link").Length(), "two ellipses")

	active := ul.Find("li.active")
	require.Equal(t, 1, active.Length())
	aria, _ := active.Attr("aria-current")
	assert.Equal(t, "page", aria)
	assert.Equal(t, "5", strings.TrimSpace(active.Text()))

	prev := ul.Find("li").First().Find("a")
	assert.Equal(t, "Trước", prev.Text())
	href, _ := prev.Attr("href")
	assert.Equal(t, "/admin/products?page=4", href)
	_, hasTabindex := prev.Attr("tabindex")
	assert.False(t, hasTabindex)
}

func TestControlsHTMLDisabledBoundary(t *testing.T) {
	p := New(Options[int]{Items: seq(12), ItemsPerPage: 6})
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(p.ControlsHTML()))
	require.NoError(t, err)

	prev := doc.Find("li.page-item").First()
	assert.True(t, prev.HasClass("disabled"))
	tabindex, _ := prev.Find("a").Attr("tabindex")
	assert.Equal(t, "-1", tabindex)
	disabled, _ := prev.Find("a").Attr("aria-disabled")
	assert.Equal(t, "true", disabled)

	next := doc.Find("li.page-item").Last()
	assert.False(t, next.HasClass("disabled"))
	assert.Equal(t, "Sau", next.Find("a").Text())
}

func TestRenderWritesControlsToSurface(t *testing.T) {
	var rendered []int
	s := &surface{id: "pagination"}
	p := New(Options[int]{Items: seq(23), ItemsPerPage: 6, PaginationID: "pagination", Render: func(items []int) { rendered = items }})
	p.Attach(s)

	p.Render()
	assert.Equal(t, seq(6), rendered)
	assert.Contains(t, s.html, `aria-current="page"`)

	p.UpdateItems(seq(4))
	assert.Equal(t, "", s.html, "single page clears the controls")
	assert.Equal(t, 2, s.sets)
}

func TestParsePage(t *testing.T) {
	assert.Equal(t, 3, ParsePage("3"))
	assert.Equal(t, 3, ParsePage(" 3 "))
	assert.Equal(t, 0, ParsePage(""))
	assert.Equal(t, 0, ParsePage("abc"))
	assert.Equal(t, -2, ParsePage("-2"))
}

func TestPathHref(t *testing.T) {
	assert.Equal(t, "/admin/products?page=3#productList", PathHref("/admin/products", "productList")(3))
	assert.Equal(t, "?page=1", PathHref("", "")(1))
}
