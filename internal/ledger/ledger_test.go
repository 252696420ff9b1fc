package ledger_test

import (
	"testing"

	"marketplace/internal/domain"
	"marketplace/internal/ledger"
	"marketplace/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedWallet(t *testing.T, db *gorm.DB, userID uint, balance domain.Money) domain.Wallet {
	t.Helper()
	w := domain.Wallet{UserID: userID, Balance: balance}
	require.NoError(t, db.Create(&w).Error)
	return w
}

func balanceOf(t *testing.T, db *gorm.DB, id uint) domain.Money {
	t.Helper()
	var w domain.Wallet
	require.NoError(t, db.First(&w, id).Error)
	return w.Balance
}

func TestDebit(t *testing.T) {
	db := testutil.OpenTestDB(t)
	w := seedWallet(t, db, 1, 5000)

	require.NoError(t, ledger.Debit(db, w.ID, 2000))
	assert.Equal(t, domain.Money(3000), balanceOf(t, db, w.ID))

	assert.ErrorIs(t, ledger.Debit(db, w.ID, 3001), ledger.ErrInsufficientFunds)
	assert.Equal(t, domain.Money(3000), balanceOf(t, db, w.ID))

	require.NoError(t, ledger.Debit(db, w.ID, 3000))
	assert.Equal(t, domain.Money(0), balanceOf(t, db, w.ID))
}

func TestDebit_ExactRemainderAfterFractionalMoves(t *testing.T) {
	db := testutil.OpenTestDB(t)
	w := seedWallet(t, db, 1, 0)

	require.NoError(t, ledger.Credit(db, w.ID, domain.NewMoney(0.3)))
	require.NoError(t, ledger.Debit(db, w.ID, domain.NewMoney(0.1)))
	assert.Equal(t, domain.NewMoney(0.2), balanceOf(t, db, w.ID))

	require.NoError(t, ledger.Debit(db, w.ID, domain.NewMoney(0.2)), "the whole remaining balance can be spent")
	assert.Equal(t, domain.Money(0), balanceOf(t, db, w.ID))
}

func TestCredit(t *testing.T) {
	db := testutil.OpenTestDB(t)
	w := seedWallet(t, db, 1, 0)

	require.NoError(t, ledger.Credit(db, w.ID, 1250))
	assert.Equal(t, domain.Money(1250), balanceOf(t, db, w.ID))

	assert.ErrorIs(t, ledger.Credit(db, 9999, 1), ledger.ErrWalletNotFound)
}

func TestTakeStock(t *testing.T) {
	db := testutil.OpenTestDB(t)
	p := domain.Product{SellerID: 1, Title: "Lamp", Price: 1000, Stock: 3, Active: true}
	require.NoError(t, db.Create(&p).Error)

	require.NoError(t, ledger.TakeStock(db, p.ID, 2))
	assert.ErrorIs(t, ledger.TakeStock(db, p.ID, 2), ledger.ErrOutOfStock)

	require.NoError(t, db.Model(&p).Update("active", false).Error)
	assert.ErrorIs(t, ledger.TakeStock(db, p.ID, 1), ledger.ErrOutOfStock, "inactive products cannot be sold")
}

func TestDebitRollsBackWithTransaction(t *testing.T) {
	db := testutil.OpenTestDB(t)
	from := seedWallet(t, db, 1, 1000)
	to := seedWallet(t, db, 2, 0)

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := ledger.Credit(tx, to.ID, 1500); err != nil {
			return err
		}
		return ledger.Debit(tx, from.ID, 1500)
	})

	assert.ErrorIs(t, err, ledger.ErrInsufficientFunds)
	assert.Equal(t, domain.Money(0), balanceOf(t, db, to.ID))
	assert.Equal(t, domain.Money(1000), balanceOf(t, db, from.ID))
}

func TestWalletOf(t *testing.T) {
	db := testutil.OpenTestDB(t)
	seedWallet(t, db, 7, 100)

	w, err := ledger.WalletOf(db, 7)
	require.NoError(t, err)
	assert.Equal(t, uint(7), w.UserID)

	_, err = ledger.WalletOf(db, 8)
	assert.ErrorIs(t, err, ledger.ErrWalletNotFound)
}
