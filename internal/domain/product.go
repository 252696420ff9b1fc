package domain

// Product Model
type Product struct {
	ID          uint   `gorm:"primaryKey" json:"id"`                   // Primary key
	SellerID    uint   `gorm:"index;not null" json:"seller_id"`        // Owning seller
	Title       string `gorm:"size:200;not null" json:"title"`         // Display title
	Description string `gorm:"type:text" json:"description"`           // Long description
	Category    string `gorm:"size:64;index" json:"category"`          // Free-form category
	Price       Money  `gorm:"not null" json:"price"`                  // Unit price in cents
	Stock       int    `gorm:"not null;default:0" json:"stock"`        // Units available
	ImagePath   string `json:"image_path,omitempty"`                   // Public path of the product image
	Active      bool   `gorm:"index;default:true" json:"active"`       // Visible in the storefront
	CreatedAt   int64  `gorm:"autoCreateTime:milli" json:"created_at"` // Timestamp of creation in milliseconds
	UpdatedAt   int64  `gorm:"autoUpdateTime:milli" json:"updated_at"` // Timestamp of last update in milliseconds
}
