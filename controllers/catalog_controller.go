package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yashrajoria/storefront/clients"
	"github.com/yashrajoria/storefront/dom"
	"github.com/yashrajoria/storefront/logger"
	"github.com/yashrajoria/storefront/models"
	"github.com/yashrajoria/storefront/pagination"
)

const (
	CategoryPage    = "category.html"
	ProductGridID   = "productGrid"
	CategoryTitleID = "categoryTitle"
)

type CategoryLister interface {
	Categories(ctx context.Context) ([]models.Category, error)
}

// CatalogController serves the shopper facing category page.
type CatalogController struct {
	pages      *PageController
	catalog    Catalog
	categories CategoryLister
	perPage    int
	log        *zap.Logger
}

func NewCatalogController(pages *PageController, catalog Catalog, categories CategoryLister, perPage int, log *zap.Logger) *CatalogController {
	return &CatalogController{pages: pages, catalog: catalog, categories: categories, perPage: perPage, log: log}
}

// Category renders category.html?id=ID with the products of that category.
func (cc *CatalogController) Category(c *gin.Context) {
	ctx := c.Request.Context()
	log := logger.For(c, cc.log)
	categoryID := c.Query("id")

	title := "Tất cả sách"
	if categoryID != "" {
		title = "Danh mục"
		if categories, err := cc.categories.Categories(ctx); err != nil {
			log.Warn("error loading categories", zap.Error(err))
		} else {
			for _, cat := range categories {
				if cat.ID == categoryID {
					title = cat.Name
					break
				}
			}
		}
	}

	products, err := cc.catalog.Products(ctx, clients.ProductQuery{Limit: adminProductsLimit, CategoryID: categoryID})
	if err != nil {
		log.Warn("error loading products", zap.Error(err), zap.String("category_id", categoryID))
		products = []models.Product{}
	}

	cc.pages.Render(c, CategoryPage, func(doc *dom.Document) {
		doc.SetText(CategoryTitleID, title)
		p := pagination.New(pagination.Options[models.Product]{
			Items:        products,
			ItemsPerPage: cc.perPage,
			ContainerID:  ProductGridID,
			PaginationID: PaginationID,
			Href: func(page int) string {
				return fmt.Sprintf("/%s?id=%s&page=%d#%s", CategoryPage, url.QueryEscape(categoryID), page, ProductGridID)
			},
			Render: func(items []models.Product) {
				doc.SetHTML(ProductGridID, renderRows(productCardsTmpl, items))
			},
		})
		showPage(p, doc, c.Query("page"))
	})
}

// cartPayload is what the "add to cart" button posts to /api/cart/items.
func cartPayload(p models.Product) string {
	b, err := json.Marshal(models.AddItemRequest{
		Product:  models.Product{ID: p.ID, Title: p.Title, Price: p.Price, ImageURL: p.ImageURL},
		Quantity: 1,
	})
	if err != nil {
		return "{}"
	}
	return string(b)
}

var productCardsTmpl = template.Must(template.New("cards").Funcs(template.FuncMap{
	"price":   FormatPrice,
	"payload": cartPayload,
}).Parse(
	`{{range .}}<div class="col-sm-6 col-lg-4 mb-4"><div class="card h-100">` +
		`{{if .ImageURL}}<img src="{{.ImageURL}}" class="card-img-top" alt="{{.Title}}">{{end}}` +
		`<div class="card-body d-flex flex-column">` +
		`<h5 class="card-title">{{.Title}}</h5>` +
		`<p class="card-text fw-bold text-danger">{{price .Price}}</p>` +
		`<button type="button" class="btn btn-primary mt-auto add-to-cart" data-product="{{payload .}}">Thêm vào giỏ</button>` +
		`</div></div></div>{{else}}<p class="text-muted">Không có sản phẩm</p>{{end}}`))
