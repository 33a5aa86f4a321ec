package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shophub/internal/middleware"
	"shophub/internal/models"
)

const adminPath = "/owners/admin"

/* =======================
   CREATE
======================= */

func CreateProduct(env *Env) gin.HandlerFunc {
	log := env.logger("product")

	return func(c *gin.Context) {
		const route = "POST /products/create"

		input, err := parseMultipartProductRequest(c)
		if err != nil {
			fail(c, log, route, adminPath, err)
			return
		}
		if err := input.validateCreate(); err != nil {
			fail(c, log, route, adminPath, err)
			return
		}

		now := time.Now().UTC()
		product := &models.Product{
			Name:        input.Name,
			Description: input.Description,
			Price:       input.Price,
			Discount:    input.Discount,
			Category:    input.Category,
			BgColor:     input.BgColor,
			TextColor:   input.TextColor,
			PanelColor:  input.PanelColor,
			Image:       input.Image,
			ImageType:   input.ImageType,
			Rating:      models.DefaultRating,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		ctx, cancel := opContext(c)
		defer cancel()

		if err := env.Store.CreateProduct(ctx, product); err != nil {
			fail(c, log, route, adminPath, storeError(err, ""))
			return
		}
		product.Decorate()

		log.Info("product created",
			zap.String("productId", product.ID.Hex()),
			zap.String("name", product.Name),
			zap.Int("imageBytes", len(product.Image)),
		)

		const message = "Product created successfully"
		if middleware.WantsJSON(c) {
			c.JSON(http.StatusCreated, gin.H{"success": true, "message": message, "product": product})
			return
		}
		redirectWithSuccess(c, adminPath, message)
	}
}

/* =======================
   UPDATE
======================= */

// UpdateProduct applies a partial update; the image is replaced only when a new one is sent.
func UpdateProduct(env *Env) gin.HandlerFunc {
	log := env.logger("product")

	return func(c *gin.Context) {
		const route = "POST /products/:id/update"

		id, err := parseProductID(c.Param("id"))
		if err != nil {
			fail(c, log, route, adminPath, err)
			return
		}

		input, err := parseMultipartProductRequest(c)
		if err != nil {
			fail(c, log, route, adminPath, err)
			return
		}
		update, err := input.toUpdate()
		if err != nil {
			fail(c, log, route, adminPath, err)
			return
		}

		ctx, cancel := opContext(c)
		defer cancel()

		product, err := env.Store.UpdateProduct(ctx, id, update)
		if err != nil {
			fail(c, log, route, adminPath, storeError(err, "Product not found"))
			return
		}

		log.Info("product updated", zap.String("productId", id.Hex()), zap.Bool("image", input.ImageSet))

		const message = "Product updated successfully"
		if middleware.WantsJSON(c) {
			c.JSON(http.StatusOK, gin.H{"success": true, "message": message, "product": product})
			return
		}
		redirectWithSuccess(c, adminPath, message)
	}
}

/* =======================
   DELETE
======================= */

// DeleteProduct removes the product and pulls it from every cart.
func DeleteProduct(env *Env) gin.HandlerFunc {
	log := env.logger("product")

	return func(c *gin.Context) {
		const route = "POST /products/:id/delete"

		id, err := parseProductID(c.Param("id"))
		if err != nil {
			fail(c, log, route, adminPath, err)
			return
		}

		ctx, cancel := opContext(c)
		defer cancel()

		if err := env.Store.DeleteProduct(ctx, id); err != nil {
			fail(c, log, route, adminPath, storeError(err, "Product not found"))
			return
		}
		if err := env.Store.RemoveProductFromCarts(ctx, id); err != nil {
			log.Error("cart cleanup failed", zap.String("productId", id.Hex()), zap.Error(err))
		}

		log.Info("product deleted", zap.String("productId", id.Hex()))

		const message = "Product deleted successfully"
		if middleware.WantsJSON(c) {
			c.JSON(http.StatusOK, gin.H{"success": true, "message": message})
			return
		}
		redirectWithSuccess(c, adminPath, message)
	}
}
