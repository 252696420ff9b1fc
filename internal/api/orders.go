package api

import (
	"marketplace/internal/cache"    // Response cache
	"marketplace/internal/checkout" // Checkout service
	"marketplace/internal/domain"   // Importing domain models
	"marketplace/internal/utils"    // Utility functions
	"net/http"                      // HTTP status codes

	"github.com/gin-gonic/gin" // Gin web framework
	"gorm.io/gorm"             // GORM ORM library
)

// OrderRequest is the checkout body
type OrderRequest struct {
	ProductID     uint   `json:"product_id" binding:"required"`                       // Product to buy
	Quantity      int    `json:"quantity" binding:"required,gte=1,lte=1000"`          // Units to buy
	PaymentMethod string `json:"payment_method" binding:"required,oneof=wallet card"` // Funding source
	CardToken     string `json:"card_token" binding:"max=255"`                        // Provider token for card payments
}

// PlaceOrderHandler checks out a single product for the authenticated buyer
func PlaceOrderHandler(svc *checkout.Service, store cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		buyerID, ok := currentUser(c) // Get buyer ID from context
		if !ok {
			return
		}
		var req OrderRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order"}) // If binding fails, return bad request
			return
		}
		order, err := svc.PlaceOrder(c.Request.Context(), buyerID, checkout.PlaceOrderRequest{
			ProductID:     req.ProductID,
			Quantity:      req.Quantity,
			PaymentMethod: req.PaymentMethod,
			CardToken:     req.CardToken,
		})
		if err != nil {
			status, msg := statusFor(err) // Map checkout error to HTTP status
			if status >= http.StatusInternalServerError && status != http.StatusBadGateway {
				respondError(c, err) // Unexpected failure, logged
				return
			}
			body := gin.H{"error": msg}
			if order != nil {
				body["order"] = order // Failed card orders are persisted and reported back
			}
			c.JSON(status, body)
			return
		}
		invalidateWallets(c, store, order.BuyerID, order.SellerID)                                 // Both balances moved
		invalidate(c, store, []string{cache.ProductKey(order.ProductID)}, cache.ProductListPrefix) // Stock changed
		c.JSON(http.StatusCreated, gin.H{"order": order})                                          // Return the paid order
	}
}

// ListOrdersHandler lists the authenticated buyer's orders, newest first
func ListOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		buyerID, ok := currentUser(c)
		if !ok {
			return
		}
		page := utils.ParsePage(c) // Parse pagination parameters
		var orders []domain.Order
		total, err := fetchPage(db.Model(&domain.Order{}).Where("buyer_id = ?", buyerID), page, "created_at desc, id desc", &orders) // Newest first
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, utils.Paginated("orders", orders, page, total))
	}
}

// GetOrderHandler returns one order to its buyer or seller
func GetOrderHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUser(c)
		if !ok {
			return
		}
		id, ok := pathID(c)
		if !ok {
			return
		}
		var order domain.Order
		if err := db.First(&order, id).Error; err != nil {
			respondError(c, err) // Missing order becomes 404
			return
		}
		if order.BuyerID != userID && order.SellerID != userID {
			// Indistinguishable from a missing order
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"order": order})
	}
}

// ListSellerOrdersHandler lists the authenticated seller's sales, optionally by status
func ListSellerOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sellerID, ok := currentUser(c)
		if !ok {
			return
		}
		page := utils.ParsePage(c)                                          // Parse pagination parameters
		query := db.Model(&domain.Order{}).Where("seller_id = ?", sellerID) // Only this seller's sales
		if status := c.Query("status"); status != "" {
			query = query.Where("status = ?", status) // Optional status filter
		}
		var orders []domain.Order
		total, err := fetchPage(query, page, "created_at desc, id desc", &orders)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, utils.Paginated("orders", orders, page, total))
	}
}
