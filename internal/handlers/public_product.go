package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shophub/internal/apperr"
	"shophub/internal/store"
)

func productFilterFromQuery(c *gin.Context) (store.ProductFilter, error) {
	filter := store.ProductFilter{
		Category: strings.TrimSpace(c.Query("category")),
		Search:   strings.TrimSpace(c.Query("search")),
		Sort:     strings.ToLower(strings.TrimSpace(c.Query("sort"))),
	}
	if !store.ValidSort(filter.Sort) {
		return filter, apperr.New(apperr.Validation, "sort must be one of price-asc, price-desc, name, rating")
	}
	return filter, nil
}

// Shop renders GET /shop. An unknown sort falls back to newest first.
func Shop(env *Env) gin.HandlerFunc {
	log := env.logger("catalog")

	return func(c *gin.Context) {
		const route = "GET /shop"

		filter, err := productFilterFromQuery(c)
		if err != nil {
			filter.Sort = store.SortNewest
		}

		ctx, cancel := opContext(c)
		defer cancel()

		products, total, err := env.Store.ListProducts(ctx, filter)
		if err != nil {
			redirectWithError(c, log, route, "/", storeError(err, ""))
			return
		}
		categories, err := env.Store.Categories(ctx)
		if err != nil {
			log.Warn("categories unavailable", zap.Error(err))
		}

		log.Debug("shop rendered", zap.Int64("total", total), zap.String("category", filter.Category))
		render(c, http.StatusOK, "shop.html", gin.H{
			"title":      "Shop",
			"products":   products,
			"total":      total,
			"categories": categories,
			"filter":     filter,
		})
	}
}

/*
GET /api/products
- pagination applies only when page or limit is given
*/
func ListProducts(env *Env) gin.HandlerFunc {
	log := env.logger("catalog")

	return func(c *gin.Context) {
		const route = "GET /api/products"

		filter, err := productFilterFromQuery(c)
		if err != nil {
			respondError(c, log, route, err)
			return
		}

		pageStr, limitStr := c.Query("page"), c.Query("limit")
		paginated := pageStr != "" || limitStr != ""
		var page, limit int64
		if paginated {
			page, limit, err = parsePaginationParams(pageStr, limitStr)
			if err != nil {
				respondError(c, log, route, err)
				return
			}
			filter.Skip = (page - 1) * limit
			filter.Limit = limit
		}

		ctx, cancel := opContext(c)
		defer cancel()

		products, total, err := env.Store.ListProducts(ctx, filter)
		if err != nil {
			respondError(c, log, route, storeError(err, ""))
			return
		}

		response := gin.H{"success": true, "data": products}
		if paginated {
			response["pagination"] = paginationMeta(page, limit, total)
		} else {
			response["total"] = total
		}
		c.JSON(http.StatusOK, response)
	}
}
