package testutil

import (
	"testing"

	"marketplace/internal/domain"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TestPassword is the plain-text password of every seeded user
const TestPassword = "password123"

// SeedUser creates a user with the given role and a wallet holding balance
func SeedUser(t *testing.T, db *gorm.DB, username, role string, balance float64) domain.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	require.NoError(t, err)

	user := domain.User{Username: username, Password: string(hash), Role: role}
	require.NoError(t, db.Create(&user).Error)
	user.Wallet = domain.Wallet{UserID: user.ID, Balance: domain.NewMoney(balance)}
	require.NoError(t, db.Create(&user.Wallet).Error)
	return user
}

// SeedProduct creates an active product owned by sellerID
func SeedProduct(t *testing.T, db *gorm.DB, sellerID uint, title string, price float64, stock int) domain.Product {
	t.Helper()

	p := domain.Product{SellerID: sellerID, Title: title, Category: "misc", Price: domain.NewMoney(price), Stock: stock, Active: true}
	require.NoError(t, db.Create(&p).Error)
	return p
}

// Balance reloads a user's wallet balance in major units
func Balance(t *testing.T, db *gorm.DB, userID uint) float64 {
	t.Helper()

	var w domain.Wallet
	require.NoError(t, db.Where("user_id = ?", userID).First(&w).Error)
	return w.Balance.Float64()
}
