package ledger

import (
	"errors" // Sentinel errors

	"marketplace/internal/domain" // Importing domain models

	"gorm.io/gorm" // GORM ORM library
)

var (
	// ErrInsufficientFunds is returned when a debit would drive a balance below zero
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrOutOfStock is returned when a product has fewer units than requested
	ErrOutOfStock = errors.New("out of stock")
	// ErrWalletNotFound is returned when a user has no wallet
	ErrWalletNotFound = errors.New("wallet not found")
)

// WalletOf loads the wallet owned by userID
func WalletOf(db *gorm.DB, userID uint) (domain.Wallet, error) {
	var wallet domain.Wallet
	err := db.Where("user_id = ?", userID).First(&wallet).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return wallet, ErrWalletNotFound
	}
	return wallet, err
}

// Debit subtracts amount from a wallet only if the balance covers it.
// The check and the update are one statement on integer cents, so concurrent debits cannot overdraw.
func Debit(tx *gorm.DB, walletID uint, amount domain.Money) error {
	res := tx.Model(&domain.Wallet{}).
		Where("id = ? AND balance >= ?", walletID, amount).
		Update("balance", gorm.Expr("balance - ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientFunds
	}
	return nil
}

// Credit adds amount to a wallet
func Credit(tx *gorm.DB, walletID uint, amount domain.Money) error {
	res := tx.Model(&domain.Wallet{}).
		Where("id = ?", walletID).
		Update("balance", gorm.Expr("balance + ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrWalletNotFound
	}
	return nil
}

// TakeStock decrements an active product's stock only if enough units remain
func TakeStock(tx *gorm.DB, productID uint, quantity int) error {
	res := tx.Model(&domain.Product{}).
		Where("id = ? AND active = ? AND stock >= ?", productID, true, quantity).
		Update("stock", gorm.Expr("stock - ?", quantity))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrOutOfStock
	}
	return nil
}

// Record appends a transaction row
func Record(tx *gorm.DB, t *domain.Transaction) error {
	return tx.Create(t).Error
}
