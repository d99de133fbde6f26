package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPageSize = 40
	MaxPageSize     = 50
)

// Page is one page of a list response.
type Page[T any] struct {
	Count    int  `json:"count"`
	Page     int  `json:"page"`
	PageSize int  `json:"page_size"`
	HasNext  bool `json:"has_next"`
	HasPrev  bool `json:"has_previous"`
	Results  []T  `json:"results"`
}

// Paginate slices items for a 1-based page. Out of range values fall back to defaults.
func Paginate[T any](items []T, page, pageSize int) Page[T] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	if page <= 0 {
		page = 1
	}

	total := len(items)
	// page is client input; bound it before multiplying
	start := total
	if page-1 <= total/pageSize {
		start = (page - 1) * pageSize
		if start > total {
			start = total
		}
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	results := items[start:end]
	if results == nil {
		results = []T{}
	}

	return Page[T]{
		Count:    total,
		Page:     page,
		PageSize: pageSize,
		HasNext:  end < total,
		HasPrev:  page > 1,
		Results:  results,
	}
}

// PageParams reads ?page= and ?page_size= from the query string.
func PageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.Query("page"))
	pageSize, _ := strconv.Atoi(c.Query("page_size"))
	return page, pageSize
}
