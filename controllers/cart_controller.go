package controllers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yashrajoria/storefront/auth"
	"github.com/yashrajoria/storefront/cart"
	apperrors "github.com/yashrajoria/storefront/errors"
	"github.com/yashrajoria/storefront/logger"
	"github.com/yashrajoria/storefront/middleware"
	"github.com/yashrajoria/storefront/models"
	"github.com/yashrajoria/storefront/storage"
)

// CartCountHeader carries the item count after a cart mutation.
const CartCountHeader = "X-Cart-Count"

type CartController struct {
	stores    storage.Provider
	keyPrefix string
	log       *zap.Logger
}

func NewCartController(stores storage.Provider, keyPrefix string, log *zap.Logger) *CartController {
	return &CartController{stores: stores, keyPrefix: keyPrefix, log: log}
}

// store binds a cart store to the request and reports every change in the
// X-Cart-Count header.
func (cc *CartController) store(c *gin.Context) *cart.Store {
	s := newCartStore(c, cc.stores, cc.keyPrefix)
	s.Subscribe(func(_ context.Context, _ auth.Identity, rec cart.Record) {
		c.Header(CartCountHeader, strconv.Itoa(rec.Count()))
	})
	return s
}

func newCartStore(c *gin.Context, stores storage.Provider, prefix string) *cart.Store {
	return cart.NewStore(stores(c.Writer, c.Request), cart.WithKeyPrefix(prefix))
}

// GetCart returns the current cart of the caller
func (cc *CartController) GetCart(c *gin.Context) {
	id := middleware.GetIdentity(c)
	rec, err := cc.store(c).GetAll(c.Request.Context(), id)
	if err != nil {
		cc.fail(c, "GetCart", err)
		return
	}
	c.JSON(http.StatusOK, cartResponse(id, rec))
}

// AddItem adds a product or grows the quantity of an existing line
func (cc *CartController) AddItem(c *gin.Context) {
	var req models.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.Wrap(apperrors.ErrInvalidInput, err))
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	id := middleware.GetIdentity(c)
	rec, err := cc.store(c).Add(c.Request.Context(), id, req.Product, req.Quantity)
	if err != nil {
		cc.fail(c, "AddItem", err)
		return
	}
	c.JSON(http.StatusOK, cartResponse(id, rec))
}

// UpdateQuantity sets the quantity of a line; zero or less removes it
func (cc *CartController) UpdateQuantity(c *gin.Context) {
	var req models.UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.Wrap(apperrors.ErrInvalidInput, err))
		return
	}

	id := middleware.GetIdentity(c)
	rec, err := cc.store(c).UpdateQuantity(c.Request.Context(), id, c.Param("id"), *req.Quantity)
	if err != nil {
		cc.fail(c, "UpdateQuantity", err)
		return
	}
	c.JSON(http.StatusOK, cartResponse(id, rec))
}

// RemoveItem removes a specific item from the cart
func (cc *CartController) RemoveItem(c *gin.Context) {
	id := middleware.GetIdentity(c)
	rec, err := cc.store(c).Remove(c.Request.Context(), id, c.Param("id"))
	if err != nil {
		cc.fail(c, "RemoveItem", err)
		return
	}
	c.JSON(http.StatusOK, cartResponse(id, rec))
}

// ClearCart removes all items from the cart
func (cc *CartController) ClearCart(c *gin.Context) {
	id := middleware.GetIdentity(c)
	if err := cc.store(c).Clear(c.Request.Context(), id); err != nil {
		cc.fail(c, "ClearCart", err)
		return
	}
	c.JSON(http.StatusOK, cartResponse(id, cart.Record{}))
}

// Badge returns the navbar cart indicator of the caller
func (cc *CartController) Badge(c *gin.Context) {
	b, err := cc.store(c).Badge(c.Request.Context(), middleware.GetIdentity(c))
	if err != nil {
		cc.fail(c, "Badge", err)
		return
	}
	c.JSON(http.StatusOK, b.View())
}

func (cc *CartController) fail(c *gin.Context, op string, err error) {
	var appErr *apperrors.Error
	switch {
	case errors.Is(err, cart.ErrInvalidQuantity):
		appErr = apperrors.Wrap(apperrors.ErrValidation, err)
	case errors.Is(err, cart.ErrCorruptRecord):
		appErr = apperrors.Wrap(apperrors.ErrCorruptRecord, err)
	case errors.Is(err, storage.ErrValueTooLarge):
		appErr = apperrors.Wrap(apperrors.ErrCartFull, err)
	default:
		appErr = apperrors.Wrap(apperrors.ErrStorage, err)
	}
	if appErr.Code >= http.StatusInternalServerError {
		logger.For(c, cc.log).Error("cart operation failed", zap.String("op", op), zap.Error(err))
	}
	_ = c.Error(appErr)
}

func cartResponse(id auth.Identity, rec cart.Record) models.CartResponse {
	items := []models.CartItem(rec)
	if items == nil {
		items = []models.CartItem{}
	}
	return models.CartResponse{
		Items: items,
		Count: rec.Count(),
		Total: rec.Total(),
		Badge: cart.BadgeFor(id, rec).View(),
	}
}
