package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shophub/internal/store"
)

// AdminPage renders the owner dashboard with every product, newest first.
func AdminPage(env *Env) gin.HandlerFunc {
	log := env.logger("product")

	return func(c *gin.Context) {
		const route = "GET /owners/admin"

		ctx, cancel := opContext(c)
		defer cancel()

		products, total, err := env.Store.ListProducts(ctx, store.ProductFilter{})
		if err != nil {
			redirectWithError(c, log, route, "/", storeError(err, ""))
			return
		}

		render(c, http.StatusOK, "admin.html", gin.H{
			"title":    "Owner Dashboard",
			"products": products,
			"total":    total,
		})
	}
}
