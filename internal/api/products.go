package api

import (
	"marketplace/internal/cache"      // Response cache
	"marketplace/internal/domain"     // Importing domain models
	"marketplace/internal/middleware" // Auth context helpers
	"marketplace/internal/storage"    // Upload storage
	"marketplace/internal/utils"      // Utility functions
	"net/http"                        // HTTP status codes
	"strconv"                         // String conversion
	"strings"                         // String manipulation

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logrus for structured logging
	"gorm.io/gorm"               // GORM ORM library
)

// ProductRequest is the body of a product creation
type ProductRequest struct {
	Title       string       `json:"title" binding:"required,max=200"` // Display title
	Description string       `json:"description" binding:"max=10000"`  // Long description
	Category    string       `json:"category" binding:"max=64"`        // Free-form category
	Price       domain.Money `json:"price" binding:"required,gt=0"`    // Unit price, decimal in JSON
	Stock       int          `json:"stock" binding:"gte=0"`            // Units available
}

// ProductUpdateRequest carries only the fields to change
type ProductUpdateRequest struct {
	Title       *string       `json:"title"`       // New title
	Description *string       `json:"description"` // New description
	Category    *string       `json:"category"`    // New category
	Price       *domain.Money `json:"price"`       // New unit price
	Stock       *int          `json:"stock"`       // New stock level
	Active      *bool         `json:"active"`      // Storefront visibility
}

// changes validates the request and returns the columns to update
func (r ProductUpdateRequest) changes() (map[string]any, string) {
	updates := map[string]any{} // Columns to update
	if r.Title != nil {
		title := strings.TrimSpace(*r.Title)
		if title == "" || len(title) > 200 {
			return nil, "Title must be 1-200 characters"
		}
		updates["title"] = title
	}
	if r.Description != nil {
		updates["description"] = *r.Description
	}
	if r.Category != nil {
		if len(*r.Category) > 64 {
			return nil, "Category must be at most 64 characters"
		}
		updates["category"] = strings.TrimSpace(*r.Category)
	}
	if r.Price != nil {
		if *r.Price <= 0 {
			return nil, "Price must be positive"
		}
		updates["price"] = *r.Price
	}
	if r.Stock != nil {
		if *r.Stock < 0 {
			return nil, "Stock cannot be negative"
		}
		updates["stock"] = *r.Stock
	}
	if r.Active != nil {
		updates["active"] = *r.Active
	}
	if len(updates) == 0 {
		return nil, "Nothing to update"
	}
	return updates, ""
}

// productListFilters are the storefront query parameters, in cache-key order
var productListFilters = []string{"q", "category", "seller_id", "min_price", "max_price", "page", "page_size"}

// ListProductsHandler serves the public storefront listing
func ListProductsHandler(db *gorm.DB, store cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		var keyParts []string // Parts of the cache key
		for _, k := range productListFilters {
			keyParts = append(keyParts, k+"="+c.Query(k))
		}
		cacheKey := cache.ProductListPrefix + strings.Join(keyParts, ":") // Cache key per filter combination
		page := utils.ParsePage(c)                                        // Parse pagination

		serveCached(c, store, cacheKey, func() (gin.H, error) {
			query := db.Model(&domain.Product{}).Where("active = ?", true) // Storefront shows active products only
			if q := strings.TrimSpace(c.Query("q")); q != "" {
				query = query.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(q)+"%") // Case-insensitive title search
			}
			if category := c.Query("category"); category != "" {
				query = query.Where("category = ?", category) // Filter by category
			}
			if sellerID, err := strconv.ParseUint(c.Query("seller_id"), 10, 64); err == nil {
				query = query.Where("seller_id = ?", sellerID) // Filter by seller
			}
			if minPrice, err := domain.ParseMoney(c.Query("min_price")); err == nil {
				query = query.Where("price >= ?", minPrice) // Filter by lowest price
			}
			if maxPrice, err := domain.ParseMoney(c.Query("max_price")); err == nil {
				query = query.Where("price <= ?", maxPrice) // Filter by highest price
			}
			var products []domain.Product                                               // Slice to hold products
			total, err := fetchPage(query, page, "created_at desc, id desc", &products) // Newest first
			if err != nil {
				return nil, err
			}
			return utils.Paginated("products", products, page, total), nil
		})
	}
}

// GetProductHandler serves one active product
func GetProductHandler(db *gorm.DB, store cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c) // Parse product id
		if !ok {
			return
		}
		serveCached(c, store, cache.ProductKey(id), func() (gin.H, error) {
			var product domain.Product // Hidden products answer 404
			if err := db.Where("id = ? AND active = ?", id, true).First(&product).Error; err != nil {
				return nil, err
			}
			return gin.H{"product": product, "cached": false}, nil
		})
	}
}

// CreateProductHandler lists a new product for the authenticated seller
func CreateProductHandler(db *gorm.DB, store cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		sellerID, ok := currentUser(c) // Get userID from context
		if !ok {
			return
		}
		var req ProductRequest // Bind JSON request to struct
		// Validate request; a blank title is not a title
		if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Title) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product"})
			return
		}
		product := domain.Product{
			SellerID:    sellerID,
			Title:       strings.TrimSpace(req.Title),
			Description: req.Description,
			Category:    strings.TrimSpace(req.Category),
			Price:       req.Price,
			Stock:       req.Stock,
			Active:      true,
		}
		if err := db.Create(&product).Error; err != nil {
			respondError(c, err)
			return
		}
		logrus.WithFields(logrus.Fields{
			"seller_id":  sellerID,      // Owning seller
			"product_id": product.ID,    // New product
			"price":      product.Price, // Unit price
			"stock":      product.Stock, // Units available
		}).Info("Product created")
		invalidate(c, store, nil, cache.ProductListPrefix) // Listings changed
		c.JSON(http.StatusCreated, gin.H{"product": product})
	}
}

// UpdateProductHandler applies a partial update to a product owned by the caller
func UpdateProductHandler(db *gorm.DB, store cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		product, ok := ownedProduct(c, db) // Load and check ownership
		if !ok {
			return
		}
		var req ProductUpdateRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		updates, problem := req.changes()
		if problem != "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": problem})
			return
		}
		if err := db.Model(&product).Updates(updates).Error; err != nil {
			respondError(c, err)
			return
		}
		if err := db.First(&product, product.ID).Error; err != nil { // Reload the stored row
			respondError(c, err)
			return
		}
		invalidate(c, store, []string{cache.ProductKey(product.ID)}, cache.ProductListPrefix) // Detail and listings changed
		c.JSON(http.StatusOK, gin.H{"product": product})
	}
}

// DeleteProductHandler hides a product from the storefront; orders keep referencing it
func DeleteProductHandler(db *gorm.DB, store cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		product, ok := ownedProduct(c, db)
		if !ok {
			return
		}
		if err := db.Model(&product).Update("active", false).Error; err != nil { // Soft delete
			respondError(c, err)
			return
		}
		logrus.WithField("product_id", product.ID).Info("Product deactivated")
		invalidate(c, store, []string{cache.ProductKey(product.ID)}, cache.ProductListPrefix)
		c.JSON(http.StatusOK, gin.H{"message": "Product removed"})
	}
}

// UploadProductImageHandler stores a multipart "image" file and attaches it to the product
func UploadProductImageHandler(db *gorm.DB, store cache.Cache, files storage.FileStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		product, ok := ownedProduct(c, db)
		if !ok {
			return
		}
		header, err := c.FormFile("image") // Multipart file field
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing image file"})
			return
		}
		f, err := header.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unreadable image file"})
			return
		}
		defer f.Close()

		publicPath, err := files.Save(c.Request.Context(), f) // Sniffs the type and enforces the size cap
		if err != nil {
			respondError(c, err)
			return
		}
		oldPath := product.ImagePath // Replaced image, removed after the update
		if err := db.Model(&product).Update("image_path", publicPath).Error; err != nil {
			_ = files.Delete(c.Request.Context(), publicPath) // Do not leave an orphan file
			respondError(c, err)
			return
		}
		product.ImagePath = publicPath
		if oldPath != "" {
			if err := files.Delete(c.Request.Context(), oldPath); err != nil {
				logrus.WithFields(logrus.Fields{"path": oldPath, "error": err.Error()}).Warn("Failed to delete replaced image")
			}
		}
		invalidate(c, store, []string{cache.ProductKey(product.ID)}, cache.ProductListPrefix)
		c.JSON(http.StatusOK, gin.H{"product": product})
	}
}

// ListSellerProductsHandler lists the caller's products, inactive ones included
func ListSellerProductsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sellerID, ok := currentUser(c)
		if !ok {
			return
		}
		page := utils.ParsePage(c)    // Parse pagination
		var products []domain.Product // Inactive products included
		total, err := fetchPage(db.Model(&domain.Product{}).Where("seller_id = ?", sellerID), page, "created_at desc, id desc", &products)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, utils.Paginated("products", products, page, total))
	}
}

// ownedProduct loads the :id product and checks the caller owns it (admins may manage any)
func ownedProduct(c *gin.Context, db *gorm.DB) (domain.Product, bool) {
	var product domain.Product   // Product to load
	userID, ok := currentUser(c) // Get userID from context
	if !ok {
		return product, false
	}
	id, ok := pathID(c)
	if !ok {
		return product, false
	}
	if err := db.First(&product, id).Error; err != nil {
		respondError(c, err)
		return product, false
	}
	// Admins may manage any product
	if product.SellerID != userID && c.GetString(middleware.RoleKey) != domain.RoleAdmin {
		respondError(c, errNotOwner)
		return product, false
	}
	return product, true
}

// pathID parses the :id path parameter or answers 400
func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64) // Parse path parameter
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return 0, false
	}
	return uint(id), true
}
