package api

import (
	"errors"                      // Error matching
	"marketplace/internal/cache"  // Response cache
	"marketplace/internal/domain" // Importing domain models
	"marketplace/internal/ledger" // Wallet bookkeeping
	"marketplace/internal/utils"  // Utility functions
	"net/http"                    // HTTP status codes
	"strings"                     // String manipulation
	"time"                        // Timestamps

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// TransferRequest represents a transfer request
type TransferRequest struct {
	ToUsername string       `json:"to_username" binding:"required"` // Target username
	Amount     domain.Money `json:"amount" binding:"required,gt=0"` // Transfer amount in cents, decimal in JSON
}

// TransferHandler allows a user to transfer funds to another user's wallet
func TransferHandler(db *gorm.DB, store cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		fromUserID, ok := currentUser(c) // Get userID from context
		if !ok {
			return
		}
		var req TransferRequest // Bind JSON request to struct
		// Validate request
		if err := c.ShouldBindJSON(&req); err != nil || req.Amount <= 0 {
			// If invalid, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		var toUser domain.User // Find target user
		// Query user by username
		if err := db.Where("username = ?", strings.ToLower(req.ToUsername)).First(&toUser).Error; err != nil {
			// If user not found, return not found
			c.JSON(http.StatusNotFound, gin.H{"error": "Target user not found"})
			return
		}
		// Prevent transferring to self
		if toUser.ID == fromUserID {
			// If trying to transfer to self, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot transfer to yourself"})
			return
		}
		fromWallet, err := ledger.WalletOf(db, fromUserID) // Sender wallet
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Sender wallet not found"})
			return
		}
		toWallet, err := ledger.WalletOf(db, toUser.ID) // Recipient wallet
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Recipient wallet not found"})
			return
		}
		// Atomic transfer; the debit itself refuses to overdraw
		err = db.Transaction(func(tx *gorm.DB) error {
			if err := ledger.Debit(tx, fromWallet.ID, req.Amount); err != nil {
				return err // Return error to rollback
			}
			if err := ledger.Credit(tx, toWallet.ID, req.Amount); err != nil {
				return err // Return error to rollback
			}
			return ledger.Record(tx, &domain.Transaction{
				FromWalletID: &fromWallet.ID, // Pointer to handle nullability
				ToWalletID:   &toWallet.ID,   // Pointer to handle nullability
				Amount:       req.Amount,     // Transfer amount
				Type:         domain.TxTransfer,
			})
		})
		// Handle transaction result
		if err != nil {
			if errors.Is(err, ledger.ErrInsufficientFunds) {
				c.JSON(http.StatusPaymentRequired, gin.H{"error": "Insufficient funds"})
				return
			}
			// Log the error with context
			logrus.WithFields(logrus.Fields{
				"from_user_id": fromUserID,  // Sender user ID
				"to_user_id":   toUser.ID,   // Recipient user ID
				"amount":       req.Amount,  // Transfer amount
				"error":        err.Error(), // Error message
			}).Error("Transfer failed") // Log transfer failure
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Transfer failed"})
			return
		}
		// Log successful transfer
		logrus.WithFields(logrus.Fields{
			"from_user_id": fromUserID,                      // Sender user ID
			"to_user_id":   toUser.ID,                       // Recipient user ID
			"amount":       req.Amount,                      // Transfer amount
			"type":         domain.TxTransfer,               // Transaction type
			"timestamp":    time.Now().Format(time.RFC3339), // Current timestamp
		}).Info("Transfer transaction") // Log transfer success
		invalidateWallets(c, store, fromUserID, toUser.ID) // Both sides changed
		c.JSON(http.StatusOK, gin.H{"message": "Transfer successful"})
	}
}

// DepositRequest represents a deposit request
type DepositRequest struct {
	Amount domain.Money `json:"amount" binding:"required,gt=0"` // Deposit amount, decimal in JSON
}

// DepositHandler allows a user to deposit funds into their wallet
func DepositHandler(db *gorm.DB, store cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUser(c)
		if !ok {
			return
		}
		var req DepositRequest // Bind JSON request to struct
		// Validate request
		if err := c.ShouldBindJSON(&req); err != nil || req.Amount <= 0 {
			// If invalid, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount"})
			return
		}
		wallet, err := ledger.WalletOf(db, userID) // Find user's wallet
		if err != nil {
			respondError(c, err)
			return
		}
		// Update balance atomically
		err = db.Transaction(func(tx *gorm.DB) error {
			if err := ledger.Credit(tx, wallet.ID, req.Amount); err != nil {
				return err
			}
			return ledger.Record(tx, &domain.Transaction{
				ToWalletID: &wallet.ID, // Pointer to handle nullability
				Amount:     req.Amount, // Deposit amount
				Type:       domain.TxDeposit,
			})
		})
		// Handle transaction result
		if err != nil {
			// Log the error with context
			logrus.WithFields(logrus.Fields{
				"user_id": userID,      // User ID
				"amount":  req.Amount,  // Deposit amount
				"error":   err.Error(), // Error message
			}).Error("Deposit failed") // Log deposit failure
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Deposit failed"})
			return
		}
		// Log successful deposit
		logrus.WithFields(logrus.Fields{
			"user_id":   userID,                          // User ID
			"amount":    req.Amount,                      // Deposit amount
			"type":      domain.TxDeposit,                // Transaction type
			"timestamp": time.Now().Format(time.RFC3339), // Current timestamp
		}).Info("Deposit transaction") // Log deposit success
		invalidateWallets(c, store, userID)
		c.JSON(http.StatusOK, gin.H{"message": "Deposit successful"})
	}
}

// CreateWalletHandler creates a wallet for a user (one wallet per user).
// Registration already creates one; this covers accounts seeded without a wallet.
func CreateWalletHandler(db *gorm.DB, store cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUser(c)
		if !ok {
			return
		}
		// Check if wallet already exists
		if _, err := ledger.WalletOf(db, userID); err == nil {
			c.JSON(http.StatusConflict, gin.H{"error": "Wallet already exists"})
			return
		}
		// Create new wallet with zero balance
		wallet := domain.Wallet{UserID: userID, Balance: 0}
		if err := db.Create(&wallet).Error; errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "Wallet already exists"}) // Lost a race with a concurrent create
			return
		} else if err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": userID,      // User ID
				"error":   err.Error(), // Error message
			}).Error("Failed to create wallet") // Log failure
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create wallet"})
			return
		}
		logrus.WithFields(logrus.Fields{
			"user_id":   userID,    // User ID
			"wallet_id": wallet.ID, // Wallet ID
		}).Info("Wallet created") // Log wallet creation
		invalidate(c, store, []string{cache.WalletKey(userID)})
		c.JSON(http.StatusCreated, gin.H{"message": "Wallet created", "wallet": wallet})
	}
}

// GetWalletHandler returns wallet info for the authenticated user
func GetWalletHandler(db *gorm.DB, store cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUser(c)
		if !ok {
			return
		}
		serveCached(c, store, cache.WalletKey(userID), func() (gin.H, error) {
			wallet, err := ledger.WalletOf(db, userID)
			if err != nil {
				return nil, err
			}
			return gin.H{"wallet": wallet, "cached": false}, nil
		})
	}
}

// GetTransactionHistoryHandler returns the transactions touching the authenticated user's wallet
func GetTransactionHistoryHandler(db *gorm.DB, store cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUser(c)
		if !ok {
			return
		}
		page := utils.ParsePage(c)
		serveCached(c, store, cache.TxHistoryKey(userID, page.Number, page.Size), func() (gin.H, error) {
			wallet, err := ledger.WalletOf(db, userID)
			if err != nil {
				return nil, err
			}
			var transactions []domain.Transaction
			query := db.Model(&domain.Transaction{}).
				Where("from_wallet_id = ? OR to_wallet_id = ?", wallet.ID, wallet.ID)
			total, err := fetchPage(query, page, "created_at desc, id desc", &transactions)
			if err != nil {
				return nil, err
			}
			return utils.Paginated("transactions", transactions, page, total), nil
		})
	}
}
