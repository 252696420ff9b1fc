package api

import (
	"marketplace/internal/cache"  // Response cache
	"marketplace/internal/domain" // Importing domain models
	"marketplace/internal/utils"  // Utility functions
	"strings"                     // String manipulation

	"github.com/gin-gonic/gin" // Gin web framework
	"gorm.io/gorm"             // GORM ORM library
)

// UserAdminResponse represents the user data returned to admin
type UserAdminResponse struct {
	ID        uint          `json:"id"`         // User ID
	Username  string        `json:"username"`   // Username
	Email     string        `json:"email"`      // Contact email
	Role      string        `json:"role"`       // User role
	CreatedAt int64         `json:"created_at"` // Registration time
	Wallet    domain.Wallet `json:"wallet"`     // Associated wallet
}

// adminCacheKey builds a cache key from the listed query params
func adminCacheKey(c *gin.Context, resource string, params ...string) string {
	var keyParts []string // Parts of the cache key
	for _, k := range params {
		keyParts = append(keyParts, k+"="+c.Query(k)) // Append key-value pair
	}
	return cache.AdminPrefix + resource + ":" + strings.Join(keyParts, ":")
}

// ListUsersHandler returns all users with their wallet info
func ListUsersHandler(db *gorm.DB, store cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		page := utils.ParsePage(c)
		cacheKey := adminCacheKey(c, "users", "role", "page", "page_size")
		serveCached(c, store, cacheKey, func() (gin.H, error) {
			query := db.Model(&domain.User{})
			if role := c.Query("role"); role != "" {
				query = query.Where("role = ?", role) // Filter by role
			}
			var users []domain.User
			total, err := fetchPage(query, page, "id asc", &users)
			if err != nil {
				return nil, err
			}
			// Attach wallets in one query
			ids := make([]uint, len(users))
			for i, u := range users {
				ids[i] = u.ID
			}
			wallets := map[uint]domain.Wallet{}
			if len(ids) > 0 {
				var rows []domain.Wallet
				if err := db.Where("user_id IN ?", ids).Find(&rows).Error; err != nil {
					return nil, err
				}
				for _, w := range rows {
					wallets[w.UserID] = w
				}
			}
			// Map users to response format
			resp := make([]UserAdminResponse, len(users))
			for i, u := range users {
				resp[i] = UserAdminResponse{
					ID:        u.ID,
					Username:  u.Username,
					Email:     u.Email,
					Role:      u.Role,
					CreatedAt: u.CreatedAt,
					Wallet:    wallets[u.ID],
				}
			}
			return utils.Paginated("users", resp, page, total), nil
		})
	}
}

// ListTransactionsHandler returns all transactions, with optional filtering by wallet, type, or date
func ListTransactionsHandler(db *gorm.DB, store cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		page := utils.ParsePage(c)
		cacheKey := adminCacheKey(c, "txs", "wallet_id", "type", "order_id", "from", "to", "page", "page_size")
		serveCached(c, store, cacheKey, func() (gin.H, error) {
			query := db.Model(&domain.Transaction{}) // Start building the query
			if walletID := c.Query("wallet_id"); walletID != "" {
				query = query.Where("from_wallet_id = ? OR to_wallet_id = ?", walletID, walletID) // Filter by wallet
			}
			if txType := c.Query("type"); txType != "" {
				query = query.Where("type = ?", txType) // Filter by transaction type
			}
			if orderID := c.Query("order_id"); orderID != "" {
				query = query.Where("order_id = ?", orderID) // Filter by order
			}
			if from := c.Query("from"); from != "" {
				query = query.Where("created_at >= ?", from) // Filter by start time (ms)
			}
			if to := c.Query("to"); to != "" {
				query = query.Where("created_at <= ?", to) // Filter by end time (ms)
			}
			var txs []domain.Transaction
			total, err := fetchPage(query, page, "created_at desc, id desc", &txs)
			if err != nil {
				return nil, err
			}
			return utils.Paginated("transactions", txs, page, total), nil
		})
	}
}

// ListAdminOrdersHandler returns all orders, with optional filtering by status, buyer or seller
func ListAdminOrdersHandler(db *gorm.DB, store cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		page := utils.ParsePage(c)
		cacheKey := adminCacheKey(c, "orders", "status", "buyer_id", "seller_id", "page", "page_size")
		serveCached(c, store, cacheKey, func() (gin.H, error) {
			query := db.Model(&domain.Order{})
			if status := c.Query("status"); status != "" {
				query = query.Where("status = ?", status)
			}
			if buyerID := c.Query("buyer_id"); buyerID != "" {
				query = query.Where("buyer_id = ?", buyerID)
			}
			if sellerID := c.Query("seller_id"); sellerID != "" {
				query = query.Where("seller_id = ?", sellerID)
			}
			var orders []domain.Order
			total, err := fetchPage(query, page, "created_at desc, id desc", &orders)
			if err != nil {
				return nil, err
			}
			return utils.Paginated("orders", orders, page, total), nil
		})
	}
}
