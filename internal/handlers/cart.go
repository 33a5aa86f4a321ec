package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"shophub/internal/apperr"
	"shophub/internal/middleware"
	"shophub/internal/models"
	"shophub/internal/pricing"
	"shophub/internal/store"
)

// CartEntry is one cart line joined with the product's current document.
type CartEntry struct {
	Product       models.Product  `json:"product"`
	Quantity      int             `json:"quantity"`
	QuantityLabel string          `json:"quantityLabel"`
	MRP           decimal.Decimal `json:"mrp"`
	Payable       decimal.Decimal `json:"payable"`
}

type CartView struct {
	Items  []CartEntry    `json:"items"`
	Totals pricing.Totals `json:"totals"`
}

// buildCart prices the account's cart in insertion order. Lines whose product
// no longer exists are skipped.
func buildCart(ctx context.Context, products store.Products, account *models.Account, fee decimal.Decimal) (CartView, error) {
	ids := make([]primitive.ObjectID, 0, len(account.Cart))
	for _, line := range account.Cart {
		ids = append(ids, line.ProductID)
	}

	found, err := products.FindProductsByIDs(ctx, ids)
	if err != nil {
		return CartView{}, err
	}
	byID := make(map[primitive.ObjectID]models.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}

	view := CartView{Items: make([]CartEntry, 0, len(account.Cart))}
	items := make([]pricing.LineItem, 0, len(account.Cart))
	for _, line := range account.Cart {
		product, ok := byID[line.ProductID]
		if !ok {
			continue
		}
		qty := pricing.ClampQuantity(line.Quantity)
		item := product.LineItem(qty)
		items = append(items, item)
		view.Items = append(view.Items, CartEntry{
			Product:       product,
			Quantity:      qty,
			QuantityLabel: pricing.FormatQuantity(qty),
			MRP:           item.MRP(),
			Payable:       item.Payable(),
		})
	}
	view.Totals = pricing.Calculate(items, fee)
	return view, nil
}

// AddToCart handles GET /addtoCart/:productId. It always lands back on /shop.
func AddToCart(env *Env) gin.HandlerFunc {
	log := env.logger("cart")

	return func(c *gin.Context) {
		const route = "GET /addtoCart/:productId"
		account, _ := middleware.CurrentAccount(c)

		productID, err := parseProductID(c.Param("productId"))
		if err != nil {
			redirectWithError(c, log, route, "/shop", err)
			return
		}

		ctx, cancel := opContext(c)
		defer cancel()

		if _, err := env.Store.FindProduct(ctx, productID); err != nil {
			redirectWithError(c, log, route, "/shop", storeError(err, "Product not found"))
			return
		}

		if err := env.Store.AddToCart(ctx, account.ID, productID, 1); err != nil {
			redirectWithError(c, log, route, "/shop", storeError(err, "Account not found"))
			return
		}

		log.Debug("added to cart", zap.String("accountId", account.ID.Hex()), zap.String("productId", productID.Hex()))
		redirectWithSuccess(c, "/shop", "Added to cart")
	}
}

// RemoveFromCart handles GET /removeFromCart/:productId. Unknown ids are a no-op.
func RemoveFromCart(env *Env) gin.HandlerFunc {
	log := env.logger("cart")

	return func(c *gin.Context) {
		const route = "GET /removeFromCart/:productId"
		account, _ := middleware.CurrentAccount(c)

		productID, err := primitive.ObjectIDFromHex(c.Param("productId"))
		if err != nil {
			c.Redirect(http.StatusFound, "/cart")
			return
		}

		ctx, cancel := opContext(c)
		defer cancel()

		if err := env.Store.RemoveFromCart(ctx, account.ID, productID); err != nil {
			redirectWithError(c, log, route, "/cart", storeError(err, "Account not found"))
			return
		}
		c.Redirect(http.StatusFound, "/cart")
	}
}

func CartPage(env *Env) gin.HandlerFunc {
	log := env.logger("cart")

	return func(c *gin.Context) {
		const route = "GET /cart"
		account, _ := middleware.CurrentAccount(c)

		ctx, cancel := opContext(c)
		defer cancel()

		view, err := buildCart(ctx, env.Store, account, env.PlatformFee)
		if err != nil {
			redirectWithError(c, log, route, "/shop", storeError(err, ""))
			return
		}

		render(c, http.StatusOK, "cart.html", gin.H{
			"title": "Your Cart",
			"cart":  view,
		})
	}
}

func GetCart(env *Env) gin.HandlerFunc {
	log := env.logger("cart")

	return func(c *gin.Context) {
		const route = "GET /api/cart"
		account, _ := middleware.CurrentAccount(c)

		ctx, cancel := opContext(c)
		defer cancel()

		view, err := buildCart(ctx, env.Store, account, env.PlatformFee)
		if err != nil {
			respondError(c, log, route, storeError(err, ""))
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "cart": view})
	}
}

// QuantityRequest sets an absolute quantity or applies an increase/decrease action.
type QuantityRequest struct {
	ProductID string `json:"productId" form:"productId" validate:"required"`
	Quantity  *int   `json:"quantity" form:"quantity"`
	Action    string `json:"action" form:"action" validate:"omitempty,oneof=increase decrease"`
}

func (r *QuantityRequest) normalize() {
	r.ProductID = strings.TrimSpace(r.ProductID)
	r.Action = strings.ToLower(strings.TrimSpace(r.Action))
}

// UpdateCartQuantity handles POST /api/cart/update-quantity. Quantities never drop below one.
func UpdateCartQuantity(env *Env) gin.HandlerFunc {
	log := env.logger("cart")

	return func(c *gin.Context) {
		const route = "POST /api/cart/update-quantity"
		account, _ := middleware.CurrentAccount(c)

		var req QuantityRequest
		if err := bindRequest(c, &req); err != nil {
			respondError(c, log, route, err)
			return
		}
		productID, err := parseProductID(req.ProductID)
		if err != nil {
			respondError(c, log, route, err)
			return
		}

		line, ok := account.CartLine(productID)
		if !ok {
			respondError(c, log, route, apperr.New(apperr.NotFound, "Product not in cart"))
			return
		}

		var quantity int
		switch {
		case req.Quantity != nil:
			quantity = pricing.ClampQuantity(*req.Quantity)
		case req.Action != "":
			quantity, err = pricing.Apply(line.Quantity, req.Action)
			if err != nil {
				respondError(c, log, route, apperr.Wrap(apperr.Validation, "action must be increase or decrease", err))
				return
			}
		default:
			respondError(c, log, route, apperr.New(apperr.Validation, "quantity or action is required"))
			return
		}

		ctx, cancel := opContext(c)
		defer cancel()

		if err := env.Store.SetCartQuantity(ctx, account.ID, productID, quantity); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				respondError(c, log, route, apperr.Wrap(apperr.NotFound, "Product not in cart", err))
				return
			}
			respondError(c, log, route, storeError(err, ""))
			return
		}

		for i := range account.Cart {
			if account.Cart[i].ProductID == productID {
				account.Cart[i].Quantity = quantity
			}
		}
		view, err := buildCart(ctx, env.Store, account, env.PlatformFee)
		if err != nil {
			respondError(c, log, route, storeError(err, ""))
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":       true,
			"productId":     productID.Hex(),
			"quantity":      quantity,
			"quantityLabel": pricing.FormatQuantity(quantity),
			"totals":        view.Totals,
		})
	}
}
