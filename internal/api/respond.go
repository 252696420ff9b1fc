package api

import (
	"errors"                          // Error matching
	"marketplace/internal/cache"      // Response cache
	"marketplace/internal/checkout"   // Checkout errors
	"marketplace/internal/ledger"     // Ledger errors
	"marketplace/internal/middleware" // Auth context helpers
	"marketplace/internal/payment"    // Payment errors
	"marketplace/internal/storage"    // Upload errors
	"marketplace/internal/utils"      // Pagination
	"net/http"                        // HTTP status codes

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logrus for structured logging
	"gorm.io/gorm"               // GORM ORM library
)

var (
	errNotParticipant = errors.New("not a participant of this conversation")
	errNotOwner       = errors.New("not the owner of this product")
)

// statusFor maps service errors onto an HTTP status and a client-facing message
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return http.StatusPaymentRequired, "Insufficient funds"
	case errors.Is(err, ledger.ErrOutOfStock):
		return http.StatusConflict, "Out of stock"
	case errors.Is(err, ledger.ErrWalletNotFound):
		return http.StatusNotFound, "Wallet not found"
	case errors.Is(err, checkout.ErrProductNotFound):
		return http.StatusNotFound, "Product not found"
	case errors.Is(err, checkout.ErrOwnProduct):
		return http.StatusBadRequest, "Cannot buy your own product"
	case errors.Is(err, checkout.ErrInvalidOrder):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, payment.ErrDeclined):
		return http.StatusPaymentRequired, err.Error()
	case errors.Is(err, payment.ErrProvider):
		return http.StatusBadGateway, "Payment provider unavailable"
	case errors.Is(err, storage.ErrUnsupportedType):
		return http.StatusUnsupportedMediaType, "Only JPEG, PNG, GIF or WebP images are accepted"
	case errors.Is(err, storage.ErrTooLarge):
		return http.StatusRequestEntityTooLarge, "File too large"
	case errors.Is(err, errNotParticipant), errors.Is(err, errNotOwner):
		return http.StatusForbidden, "Forbidden"
	case errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, "Not found"
	default:
		return http.StatusInternalServerError, "Internal error"
	}
}

// respondError writes err as a JSON error, logging unexpected failures
func respondError(c *gin.Context, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		logrus.WithFields(logrus.Fields{
			"path":  c.FullPath(),
			"error": err.Error(),
		}).Error("Request failed")
	}
	c.JSON(status, gin.H{"error": msg})
}

// currentUser returns the authenticated user id or answers 401
func currentUser(c *gin.Context) (uint, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	}
	return userID, ok
}

// serveCached answers from the cache when possible, otherwise runs load and caches its result
func serveCached(c *gin.Context, store cache.Cache, key string, load func() (gin.H, error)) {
	ctx := c.Request.Context()
	var cached gin.H
	if found, err := store.Get(ctx, key, &cached); err == nil && found {
		cached["cached"] = true // Indicate response is from cache
		c.JSON(http.StatusOK, cached)
		return
	}
	resp, err := load()
	if err != nil {
		respondError(c, err)
		return
	}
	if err := store.Set(ctx, key, resp, cache.DefaultTTL); err != nil {
		logrus.WithFields(logrus.Fields{"key": key, "error": err.Error()}).Warn("Cache write failed")
	}
	c.JSON(http.StatusOK, resp)
}

// invalidate drops cache keys and prefixes, logging failures; stale reads expire with the TTL anyway
func invalidate(c *gin.Context, store cache.Cache, keys []string, prefixes ...string) {
	ctx := c.Request.Context()
	if err := store.Delete(ctx, keys...); err != nil {
		logrus.WithFields(logrus.Fields{"keys": keys, "error": err.Error()}).Warn("Cache invalidation failed")
	}
	for _, p := range prefixes {
		if err := store.DeletePrefix(ctx, p); err != nil {
			logrus.WithFields(logrus.Fields{"prefix": p, "error": err.Error()}).Warn("Cache invalidation failed")
		}
	}
}

// invalidateWallets drops the wallet and history caches of the given users
func invalidateWallets(c *gin.Context, store cache.Cache, userIDs ...uint) {
	keys := make([]string, 0, len(userIDs))
	prefixes := make([]string, 0, len(userIDs)+1)
	for _, id := range userIDs {
		keys = append(keys, cache.WalletKey(id))
		prefixes = append(prefixes, cache.TxHistoryPrefix(id))
	}
	prefixes = append(prefixes, cache.AdminPrefix)
	invalidate(c, store, keys, prefixes...)
}

// fetchPage counts the rows matched by query and loads one ordered page of them into dest
func fetchPage(query *gorm.DB, page utils.Page, order string, dest any) (int64, error) {
	query = query.Session(&gorm.Session{}) // Reusable for both count and fetch
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return 0, err
	}
	if err := query.Order(order).Offset(page.Offset()).Limit(page.Size).Find(dest).Error; err != nil {
		return 0, err
	}
	return total, nil
}
