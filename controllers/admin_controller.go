package controllers

import (
	"bytes"
	"context"
	"html/template"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yashrajoria/storefront/clients"
	"github.com/yashrajoria/storefront/dom"
	"github.com/yashrajoria/storefront/logger"
	"github.com/yashrajoria/storefront/models"
	"github.com/yashrajoria/storefront/pagination"
)

const (
	AdminProductsPage   = "admin/products.html"
	AdminCategoriesPage = "admin/categories.html"

	ProductListID      = "productList"
	ProductRowsID      = "productTableBody"
	CategoryListID     = "categoryList"
	CategoryRowsID     = "categoryTableBody"
	PaginationID       = "pagination"
	adminProductsLimit = 1000
)

// Catalog is the part of the backend API the admin lists read.
type Catalog interface {
	Products(ctx context.Context, q clients.ProductQuery) ([]models.Product, error)
	Categories(ctx context.Context) ([]models.Category, error)
}

type AdminController struct {
	pages   *PageController
	catalog Catalog
	perPage int
	log     *zap.Logger
}

func NewAdminController(pages *PageController, catalog Catalog, perPage int, log *zap.Logger) *AdminController {
	return &AdminController{pages: pages, catalog: catalog, perPage: perPage, log: log}
}

// Products renders the paginated product table; ?page=N selects the page and
// out-of-range values fall back to the first page.
func (ac *AdminController) Products(c *gin.Context) {
	products, err := ac.catalog.Products(c.Request.Context(), clients.ProductQuery{Limit: adminProductsLimit})
	if err != nil {
		logger.For(c, ac.log).Warn("error loading products", zap.Error(err))
		products = []models.Product{}
	}

	ac.pages.Render(c, AdminProductsPage, func(doc *dom.Document) {
		p := pagination.New(pagination.Options[models.Product]{
			Items:        products,
			ItemsPerPage: ac.perPage,
			ContainerID:  ProductListID,
			PaginationID: PaginationID,
			Href:         pagination.PathHref(c.Request.URL.Path, ProductListID),
			Render: func(items []models.Product) {
				doc.SetHTML(ProductRowsID, renderRows(productRowsTmpl, items))
			},
		})
		showPage(p, doc, c.Query("page"))
	})
}

// Categories renders the paginated category table.
func (ac *AdminController) Categories(c *gin.Context) {
	categories, err := ac.catalog.Categories(c.Request.Context())
	if err != nil {
		logger.For(c, ac.log).Warn("error loading categories", zap.Error(err))
		categories = []models.Category{}
	}

	ac.pages.Render(c, AdminCategoriesPage, func(doc *dom.Document) {
		p := pagination.New(pagination.Options[models.Category]{
			Items:        categories,
			ItemsPerPage: ac.perPage,
			ContainerID:  CategoryListID,
			PaginationID: PaginationID,
			Href:         pagination.PathHref(c.Request.URL.Path, CategoryListID),
			Render: func(items []models.Category) {
				doc.SetHTML(CategoryRowsID, renderRows(categoryRowsTmpl, items))
			},
		})
		showPage(p, doc, c.Query("page"))
	})
}

// showPage renders the requested page, or the first one when the request
// is invalid.
func showPage[T any](p *pagination.Paginator[T], doc *dom.Document, raw string) {
	p.Attach(doc)
	if !p.GoToPage(pagination.ParsePage(raw)) {
		p.Render()
	}
}

func renderRows(tmpl *template.Template, data any) string {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return ""
	}
	return buf.String()
}

var adminFuncs = template.FuncMap{"price": FormatPrice}

var productRowsTmpl = template.Must(template.New("products").Funcs(adminFuncs).Parse(
	`{{range .}}<tr>` +
		`<td>{{.ID}}</td>` +
		`<td>{{if .ImageURL}}<img src="{{.ImageURL}}" alt="{{.Title}}" class="img-thumbnail" width="48">{{end}}</td>` +
		`<td>{{.Title}}</td>` +
		`<td>{{price .Price}}</td>` +
		`<td>{{.StockQuantity}}</td>` +
		`</tr>{{else}}<tr><td colspan="5" class="text-center text-muted">Không có sản phẩm</td></tr>{{end}}`))

var categoryRowsTmpl = template.Must(template.New("categories").Parse(
	`{{range .}}<tr>` +
		`<td>{{.ID}}</td>` +
		`<td>{{.Name}}</td>` +
		`<td>{{.Slug}}</td>` +
		`<td>{{.Description}}</td>` +
		`</tr>{{else}}<tr><td colspan="4" class="text-center text-muted">Không có danh mục</td></tr>{{end}}`))

// FormatPrice formats an amount in đồng, e.g. 45000 -> "45.000 ₫".
func FormatPrice(amount float64) string {
	n := int64(amount + 0.5)
	if amount < 0 {
		n = int64(amount - 0.5)
	}
	neg := n < 0
	if neg {
		n = -n
	}
	digits := strconv.FormatInt(n, 10)

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(d)
	}
	b.WriteString(" ₫")
	return b.String()
}
