package utils

import (
	"strconv" // String conversion

	"github.com/gin-gonic/gin" // Gin web framework
)

// Pagination limits shared by every listing endpoint
const (
	DefaultPageSize = 20  // Page size when none is requested
	MaxPageSize     = 100 // Largest accepted page size
)

// Page is a parsed page/page_size pair
type Page struct {
	Number int // 1-based page number
	Size   int // Items per page
}

// Offset returns the number of rows to skip
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// TotalPages computes the page count for total rows
func (p Page) TotalPages(total int64) int {
	return (int(total) + p.Size - 1) / p.Size
}

// ParsePage reads page and page_size from the query string, ignoring invalid values
func ParsePage(c *gin.Context) Page {
	page := Page{Number: 1, Size: DefaultPageSize} // Defaults
	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page.Number = v // Set page if valid
		}
	}
	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= MaxPageSize {
			page.Size = v // Set page size if valid
		}
	}
	return page
}

// Paginated is the envelope of every listing response
func Paginated(field string, items any, page Page, total int64) gin.H {
	return gin.H{
		field:         items,                  // Listed items
		"page":        page.Number,            // Current page
		"page_size":   page.Size,              // Page size
		"total":       total,                  // Total matching rows
		"total_pages": page.TotalPages(total), // Total pages
		"cached":      false,                  // Fresh from the database
	}
}
