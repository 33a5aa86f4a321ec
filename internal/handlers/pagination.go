package handlers

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"

	"shophub/internal/apperr"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

func parsePaginationParams(pageStr, limitStr string) (int64, int64, error) {
	page := int64(1)
	limit := int64(defaultPageLimit)

	if pageStr != "" {
		p, err := strconv.ParseInt(pageStr, 10, 64)
		if err != nil || p < 1 {
			return 0, 0, apperr.New(apperr.Validation, "page must be a positive integer")
		}
		page = p
	}

	if limitStr != "" {
		l, err := strconv.ParseInt(limitStr, 10, 64)
		if err != nil || l < 1 {
			return 0, 0, apperr.New(apperr.Validation, "limit must be a positive integer")
		}
		if l > maxPageLimit {
			l = maxPageLimit
		}
		limit = l
	}

	if page-1 > math.MaxInt64/limit {
		return 0, 0, apperr.New(apperr.Validation, "page is out of range")
	}

	return page, limit, nil
}

func paginationMeta(page, limit, total int64) gin.H {
	totalPages := int64(0)
	if total > 0 {
		totalPages = int64(math.Ceil(float64(total) / float64(limit)))
	}
	return gin.H{
		"page":       page,
		"limit":      limit,
		"total":      total,
		"totalPages": totalPages,
	}
}
