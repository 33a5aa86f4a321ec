package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetCategories lists the distinct category labels in use.
func GetCategories(env *Env) gin.HandlerFunc {
	log := env.logger("catalog")

	return func(c *gin.Context) {
		const route = "GET /api/categories"

		ctx, cancel := opContext(c)
		defer cancel()

		categories, err := env.Store.Categories(ctx)
		if err != nil {
			respondError(c, log, route, storeError(err, ""))
			return
		}
		if categories == nil {
			categories = []string{}
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": categories})
	}
}
