package domain

// Conversation Model, one per buyer, seller and product
type Conversation struct {
	ID            uint  `gorm:"primaryKey" json:"id"`                                            // Primary key
	BuyerID       uint  `gorm:"uniqueIndex:idx_conversation_parties;not null" json:"buyer_id"`   // Buyer side
	SellerID      uint  `gorm:"uniqueIndex:idx_conversation_parties;not null" json:"seller_id"`  // Seller side
	ProductID     uint  `gorm:"uniqueIndex:idx_conversation_parties;not null" json:"product_id"` // Product discussed
	CreatedAt     int64 `gorm:"autoCreateTime:milli" json:"created_at"`                          // Timestamp of creation in milliseconds
	LastMessageAt int64 `gorm:"index" json:"last_message_at"`                                    // Timestamp of the latest message
}

// HasParticipant reports whether userID is the buyer or the seller
func (c Conversation) HasParticipant(userID uint) bool {
	return c.BuyerID == userID || c.SellerID == userID
}

// Message Model
type Message struct {
	ID             uint   `gorm:"primaryKey" json:"id"`                         // Primary key
	ConversationID uint   `gorm:"index;not null" json:"conversation_id"`        // Parent conversation
	SenderID       uint   `gorm:"not null" json:"sender_id"`                    // Author
	Body           string `gorm:"type:text;not null" json:"body"`               // Message text
	CreatedAt      int64  `gorm:"autoCreateTime:milli;index" json:"created_at"` // Timestamp of creation in milliseconds
}
