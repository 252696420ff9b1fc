package domain

// Order statuses
const (
	OrderPending = "pending" // Card charge in flight
	OrderPaid    = "paid"    // Settled, stock taken and seller credited
	OrderFailed  = "failed"  // Charge declined or settlement impossible
)

// Payment methods
const (
	PayWallet = "wallet" // Paid from the buyer's wallet balance
	PayCard   = "card"   // Paid through the hosted payment API
)

// Order Model
type Order struct {
	ID            uint   `gorm:"primaryKey" json:"id"`                          // Primary key
	Reference     string `gorm:"size:36;uniqueIndex;not null" json:"reference"` // Public reference, also the payment idempotency key
	BuyerID       uint   `gorm:"index;not null" json:"buyer_id"`                // Buyer user
	SellerID      uint   `gorm:"index;not null" json:"seller_id"`               // Seller user
	ProductID     uint   `gorm:"index;not null" json:"product_id"`              // Purchased product
	Quantity      int    `gorm:"not null" json:"quantity"`                      // Units bought
	UnitPrice     Money  `gorm:"not null" json:"unit_price"`                    // Price at checkout time
	Amount        Money  `gorm:"not null" json:"amount"`                        // UnitPrice * Quantity
	Fee           Money  `gorm:"not null;default:0" json:"fee"`                 // Platform fee
	Status        string `gorm:"size:16;index;not null" json:"status"`          // pending, paid or failed
	PaymentMethod string `gorm:"size:16;not null" json:"payment_method"`        // wallet or card
	PaymentRef    string `gorm:"size:128" json:"payment_ref,omitempty"`         // Provider charge id
	FailureReason string `gorm:"size:255" json:"failure_reason,omitempty"`      // Why the order failed
	CreatedAt     int64  `gorm:"autoCreateTime:milli;index" json:"created_at"`  // Timestamp of creation in milliseconds
	UpdatedAt     int64  `gorm:"autoUpdateTime:milli" json:"updated_at"`        // Timestamp of last update in milliseconds
}
