package routes

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yashrajoria/storefront/controllers"
	"github.com/yashrajoria/storefront/middleware"
)

type Controllers struct {
	Pages   *controllers.PageController
	Cart    *controllers.CartController
	Admin   *controllers.AdminController
	Catalog *controllers.CatalogController
	Session *controllers.SessionController
}

type Options struct {
	CORSOrigins []string
	RateLimiter *middleware.RateLimiter
}

func RegisterRoutes(r *gin.Engine, ctrl Controllers, opts Options) {
	r.GET("/healthz", controllers.Health)

	r.POST("/session", ctrl.Session.Login)
	r.GET("/logout", ctrl.Session.Logout)
	r.POST("/logout", ctrl.Session.Logout)

	api := r.Group("/api/cart")
	api.Use(cors.New(CORSConfig(opts.CORSOrigins)))
	if opts.RateLimiter != nil {
		api.Use(middleware.RateLimit(opts.RateLimiter))
	}
	{
		api.GET("", ctrl.Cart.GetCart)
		api.DELETE("", ctrl.Cart.ClearCart)
		api.GET("/badge", ctrl.Cart.Badge)
		api.POST("/items", ctrl.Cart.AddItem)
		api.PUT("/items/:id", ctrl.Cart.UpdateQuantity)
		api.DELETE("/items/:id", ctrl.Cart.RemoveItem)
	}

	r.GET("/"+controllers.CategoryPage, middleware.NoStore(), ctrl.Catalog.Category)

	admin := r.Group("/admin", middleware.NoStore())
	{
		admin.GET("/products", ctrl.Admin.Products)
		admin.GET("/categories", ctrl.Admin.Categories)
	}

	r.NoRoute(middleware.NoStore(), ctrl.Pages.Serve)
}

// CORSConfig allows the listed origins with credentials; an empty list or "*"
// allows any origin without credentials.
func CORSConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{controllers.CartCountHeader, "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
