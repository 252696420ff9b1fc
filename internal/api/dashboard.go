package api

import (
	"marketplace/internal/dashboard" // Sales aggregation
	"marketplace/internal/domain"    // Importing domain models
	"net/http"                       // HTTP status codes
	"strconv"                        // Query parsing
	"time"                           // Clock

	"github.com/gin-gonic/gin" // Gin web framework
	"gorm.io/gorm"             // GORM ORM library
)

// Dashboard window limits in days
const (
	defaultDashboardDays = 30
	maxDashboardDays     = 365
)

// SellerDashboardHandler aggregates the caller's paid orders over the last ?days days
func SellerDashboardHandler(db *gorm.DB, now func() time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		sellerID, ok := currentUser(c) // Get seller ID from context
		if !ok {
			return
		}
		days := defaultDashboardDays
		if raw := c.Query("days"); raw != "" {
			v, err := strconv.Atoi(raw) // Parse window length
			if err != nil || v < 1 || v > maxDashboardDays {
				c.JSON(http.StatusBadRequest, gin.H{"error": "days must be between 1 and 365"}) // Out of range
				return
			}
			days = v
		}
		at := now() // Single clock reading for the whole report
		var orders []domain.Order
		if err := db.Where("seller_id = ? AND status = ? AND created_at >= ?",
			sellerID, domain.OrderPaid, dashboard.WindowStart(at, days).UnixMilli()).
			Find(&orders).Error; err != nil {
			respondError(c, err) // Database error
			return
		}
		titles := map[uint]string{} // Product titles for the top-seller list
		if len(orders) > 0 {
			ids := make([]uint, 0, len(orders))
			for _, o := range orders {
				ids = append(ids, o.ProductID)
			}
			var products []domain.Product
			if err := db.Select("id", "title").Where("id IN ?", ids).Find(&products).Error; err != nil { // Titles only
				respondError(c, err)
				return
			}
			for _, p := range products {
				titles[p.ID] = p.Title
			}
		}
		c.JSON(http.StatusOK, gin.H{"dashboard": dashboard.Build(orders, titles, at, days)}) // Aggregated report
	}
}
