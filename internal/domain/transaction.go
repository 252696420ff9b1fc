package domain

// Transaction types
const (
	TxDeposit  = "deposit"  // Money entering the platform
	TxTransfer = "transfer" // Wallet to wallet
	TxPurchase = "purchase" // Buyer wallet to seller wallet for an order
	TxSale     = "sale"     // Card-paid order credited to the seller
	TxFee      = "fee"      // Platform fee withheld from an order
)

// Transaction Model
type Transaction struct {
	ID           uint   `gorm:"primaryKey" json:"id"`                   // Primary key
	FromWalletID *uint  `gorm:"index" json:"from_wallet_id"`            // Foreign key to Wallet of the sender
	ToWalletID   *uint  `gorm:"index" json:"to_wallet_id"`              // Foreign key to Wallet of the receiver
	OrderID      *uint  `gorm:"index" json:"order_id,omitempty"`        // Order this movement settles, if any
	Amount       Money  `gorm:"not null" json:"amount"`                 // Amount of the transaction in cents
	Type         string `gorm:"index" json:"type"`                      // Transaction type, see Tx* constants
	CreatedAt    int64  `gorm:"autoCreateTime:milli" json:"created_at"` // Timestamp of creation in milliseconds
}
