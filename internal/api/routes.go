package api

import (
	"marketplace/internal/cache"      // Response cache
	"marketplace/internal/chat"       // Live chat relay
	"marketplace/internal/checkout"   // Checkout service
	"marketplace/internal/middleware" // Auth and role middleware
	"marketplace/internal/storage"    // Product image storage
	"net/http"                        // HTTP status codes
	"time"                            // Clock

	"github.com/gin-gonic/gin" // Gin web framework
	"gorm.io/gorm"             // GORM ORM library
)

// Deps are the collaborators shared by the handlers
type Deps struct {
	DB        *gorm.DB          // Database handle
	Cache     cache.Cache       // Read-through response cache
	Hub       chat.Hub          // Live chat relay
	Checkout  *checkout.Service // Order placement
	Files     storage.FileStore // Product image storage
	JWTSecret string            // Token signing key
	Now       func() time.Time  // Clock for time-windowed reports, time.Now when nil
}

// SetupRoutes registers every API route on r
func SetupRoutes(r *gin.Engine, d Deps) {
	if d.Now == nil {
		d.Now = time.Now
	}
	db, store := d.DB, d.Cache
	auth := middleware.JWTAuthMiddleware(d.JWTSecret) // JWT middleware shared by protected groups

	r.GET("/healthz", HealthHandler(db)) // Liveness and database check

	// Auth routes
	r.POST("/user", RegisterHandler(db))                 // Registration endpoint
	r.POST("/user/login", LoginHandler(db, d.JWTSecret)) // Login endpoint
	r.GET("/user/me", auth, MeHandler(db))               // Profile endpoint

	// Storefront (public)
	r.GET("/products", ListProductsHandler(db, store))   // Active listings
	r.GET("/products/:id", GetProductHandler(db, store)) // Single listing

	// Wallet routes (protected by JWT)
	walletGroup := r.Group("/wallet", auth)
	walletGroup.POST("", CreateWalletHandler(db, store))                      // Create wallet
	walletGroup.GET("", GetWalletHandler(db, store))                          // Get wallet
	walletGroup.POST("/deposit", DepositHandler(db, store))                   // Deposit funds
	walletGroup.POST("/transfer", TransferHandler(db, store))                 // Transfer funds
	walletGroup.GET("/transactions", GetTransactionHistoryHandler(db, store)) // Transaction history

	// Checkout
	orderGroup := r.Group("/orders", auth)
	orderGroup.POST("", PlaceOrderHandler(d.Checkout, store)) // Buy a product
	orderGroup.GET("", ListOrdersHandler(db))                 // Buyer's orders
	orderGroup.GET("/:id", GetOrderHandler(db))               // One order

	// Chat
	chatGroup := r.Group("/conversations", auth)
	chatGroup.POST("", OpenConversationHandler(db))                // Open or reuse a conversation
	chatGroup.GET("", ListConversationsHandler(db))                // Caller's conversations
	chatGroup.GET("/:id/messages", ListMessagesHandler(db))        // Message history
	chatGroup.POST("/:id/messages", PostMessageHandler(db, d.Hub)) // Send a message
	chatGroup.GET("/:id/stream", StreamMessagesHandler(db, d.Hub)) // Live messages over SSE

	// Seller dashboard (seller role checked against the database)
	sellerGroup := r.Group("/seller", auth, middleware.SellerOnlyMiddleware(db))
	sellerGroup.GET("/products", ListSellerProductsHandler(db))                            // Own listings
	sellerGroup.POST("/products", CreateProductHandler(db, store))                         // Create listing
	sellerGroup.PUT("/products/:id", UpdateProductHandler(db, store))                      // Edit listing
	sellerGroup.DELETE("/products/:id", DeleteProductHandler(db, store))                   // Deactivate listing
	sellerGroup.POST("/products/:id/image", UploadProductImageHandler(db, store, d.Files)) // Upload image
	sellerGroup.GET("/orders", ListSellerOrdersHandler(db))                                // Sales
	sellerGroup.GET("/dashboard", SellerDashboardHandler(db, d.Now))                       // Sales report

	// Admin routes (protected, admin only)
	adminGroup := r.Group("/admin", auth, middleware.AdminOnlyMiddleware(db))
	adminGroup.GET("/users", ListUsersHandler(db, store))               // List all users
	adminGroup.GET("/transactions", ListTransactionsHandler(db, store)) // List all transactions
	adminGroup.GET("/orders", ListAdminOrdersHandler(db, store))        // List all orders
}

// HealthHandler reports whether the database answers
func HealthHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB() // Underlying connection pool
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context()) // Round trip to the database
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"}) // Database unreachable
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"}) // Healthy
	}
}
