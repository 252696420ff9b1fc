package domain

// Roles a user can hold
const (
	RoleBuyer  = "buyer"  // Default role, can shop and chat
	RoleSeller = "seller" // Can list products and receive sales
	RoleAdmin  = "admin"  // Back-office access
)

// User Model
type User struct {
	ID        uint   `gorm:"primaryKey" json:"id"`                                         // Primary key
	Username  string `gorm:"unique;not null" json:"username"`                              // Unique username
	Email     string `gorm:"size:255" json:"email,omitempty"`                              // Optional contact email
	Password  string `gorm:"not null" json:"-"`                                            // Hashed password
	Role      string `gorm:"default:buyer" json:"role"`                                    // Role: buyer, seller or admin
	CreatedAt int64  `gorm:"autoCreateTime:milli" json:"created_at"`                       // Timestamp of creation in milliseconds
	Wallet    Wallet `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"wallet"` // One-to-one relationship with Wallet
}
