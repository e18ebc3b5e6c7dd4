// internal/utils/pagination.go
package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// MaxPageLimit caps the window a single list call may request.
const MaxPageLimit = 100

type PaginationParams struct {
	Page   int    `json:"page"`
	Limit  int    `json:"limit"`
	Status string `json:"status"`
}

func GetPaginationParams(c *gin.Context) PaginationParams {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	status := c.Query("status")

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > MaxPageLimit {
		limit = 20
	}

	return PaginationParams{
		Page:   page,
		Limit:  limit,
		Status: status,
	}
}

func SetPaginationHeaders(c *gin.Context, page, limit, total int) {
	c.Header("X-Total-Count", strconv.Itoa(total))
	c.Header("X-Page", strconv.Itoa(page))
	c.Header("X-Per-Page", strconv.Itoa(limit))
}
