package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/yashrajoria/storefront/auth"
	"github.com/yashrajoria/storefront/cache"
	"github.com/yashrajoria/storefront/clients"
	"github.com/yashrajoria/storefront/config"
	"github.com/yashrajoria/storefront/controllers"
	"github.com/yashrajoria/storefront/database"
	apperrors "github.com/yashrajoria/storefront/errors"
	"github.com/yashrajoria/storefront/include"
	"github.com/yashrajoria/storefront/logger"
	"github.com/yashrajoria/storefront/middleware"
	"github.com/yashrajoria/storefront/routes"
	"github.com/yashrajoria/storefront/storage"
)

const rateLimiterTTL = 5 * time.Minute

// App is the wired storefront: its router plus the resources to release.
type App struct {
	Router *gin.Engine
	redis  *redis.Client
}

func (a *App) Close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
}

func newApp(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	app := &App{}

	stores, err := storage.NewProvider(cfg)
	if err != nil {
		return nil, err
	}

	api := clients.NewAPIClient(cfg.APIBaseURL, cfg.RequestTimeout)

	var categoryCache cache.CategoryCache = cache.NewMemoryCategoryCache(cfg.Redis.CategoryTTL)
	if cfg.Redis.URL != "" {
		client, err := database.NewRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			log.Warn("redis unavailable, caching categories in memory", zap.Error(err))
		} else {
			app.redis = client
			categoryCache = cache.NewRedisCategoryCache(client, cfg.Redis.CategoryTTL)
		}
	}
	categories := cache.NewCachedCategories(categoryCache, api, log)

	var fragments include.FragmentSource = include.NewDirSource(cfg.PagesDir)
	if cfg.PartialsURL != "" {
		fragments = include.NewHTTPSource(clients.NewAPIClient(cfg.PartialsURL, cfg.RequestTimeout), "")
	}

	loaderOpts := []include.Option{
		include.WithCategories(categories),
		include.WithProfiles(api),
		include.WithLogger(log),
	}
	if cfg.SanitizePartials {
		loaderOpts = append(loaderOpts, include.WithSanitizer())
	}
	loader, err := include.NewLoader(include.Mode(cfg.IncludeMode), fragments, loaderOpts...)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("include loader: %w", err)
	}

	resolver := auth.NewResolver(auth.WithSecret(cfg.Session.JWTSecret))
	session := controllers.SessionCookie{Name: cfg.Session.TokenCookie, Secure: cfg.Production()}

	pages := controllers.NewPageController(controllers.PageConfig{
		Dir:           cfg.PagesDir,
		CartKeyPrefix: cfg.Cart.KeyPrefix,
		APIBaseURL:    cfg.APIBaseURL,
		Session:       session,
	}, loader, stores, log)
	ctrls := routes.Controllers{
		Pages:   pages,
		Cart:    controllers.NewCartController(stores, cfg.Cart.KeyPrefix, log),
		Admin:   controllers.NewAdminController(pages, api, cfg.ItemsPerPage, log),
		Catalog: controllers.NewCatalogController(pages, api, categories, cfg.ItemsPerPage, log),
		Session: controllers.NewSessionController(session, resolver, cfg.LoginPath, log),
	}

	opts := routes.Options{CORSOrigins: cfg.CORSOrigins}
	if cfg.RateLimit.RPS > 0 {
		opts.RateLimiter = middleware.NewRateLimiter(ctx, rate.Limit(cfg.RateLimit.RPS), cfg.RateLimit.Burst, rateLimiterTTL)
	}

	r := gin.New()
	r.Use(
		gin.CustomRecovery(func(c *gin.Context, recovered any) {
			logger.For(c, log).Error("panic recovered", zap.Any("panic", recovered))
			apperrors.HandleError(c.Writer, fmt.Errorf("panic: %v", recovered))
			c.Abort()
		}),
		logger.RequestLogger(log),
		middleware.SecurityHeaders(cfg.APIBaseURL),
		middleware.Session(resolver, cfg.Session.TokenCookie),
		apperrors.ErrorMiddleware(),
	)
	routes.RegisterRoutes(r, ctrls, opts)

	app.Router = r
	return app, nil
}
