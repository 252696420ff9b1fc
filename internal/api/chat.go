package api

import (
	"errors"                      // Error matching
	"io"                          // Stream writer
	"marketplace/internal/chat"   // Live chat relay
	"marketplace/internal/domain" // Importing domain models
	"marketplace/internal/utils"  // Utility functions
	"net/http"                    // HTTP status codes
	"slices"                      // Reversing message pages
	"strings"                     // String manipulation
	"time"                        // Timestamps

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logrus for structured logging
	"gorm.io/gorm"               // GORM ORM library
)

// Chat limits
const (
	MaxMessageLength = 2000             // Characters per message
	streamKeepAlive  = 25 * time.Second // Comment ping interval for idle streams
)

// OpenConversationRequest starts a chat about a product
type OpenConversationRequest struct {
	ProductID uint `json:"product_id" binding:"required"` // Product being discussed
}

// MessageRequest is a chat message body
type MessageRequest struct {
	Body string `json:"body" binding:"required"` // Message text
}

// OpenConversationHandler opens, or returns the existing, conversation between the caller and a product's seller
func OpenConversationHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		buyerID, ok := currentUser(c) // Get buyer ID from context
		if !ok {
			return
		}
		var req OpenConversationRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"}) // If binding fails, return bad request
			return
		}
		var product domain.Product
		if err := db.Where("id = ? AND active = ?", req.ProductID, true).First(&product).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"}) // Missing or inactive listing
			return
		}
		if product.SellerID == buyerID {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot open a chat with yourself"})
			return
		}
		conv := domain.Conversation{BuyerID: buyerID, SellerID: product.SellerID, ProductID: product.ID}
		res := db.Where(&conv).Attrs(domain.Conversation{LastMessageAt: time.Now().UnixMilli()}).FirstOrCreate(&conv) // Reuse the thread if it exists
		err := res.Error
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// A concurrent open created it between our lookup and insert
			conv = domain.Conversation{BuyerID: buyerID, SellerID: product.SellerID, ProductID: product.ID}
			err = db.Where(&conv).First(&conv).Error
		}
		if err != nil {
			respondError(c, err)
			return
		}
		status := http.StatusOK
		if res.Error == nil && res.RowsAffected > 0 {
			status = http.StatusCreated
			logrus.WithFields(logrus.Fields{
				"conversation_id": conv.ID,
				"buyer_id":        buyerID,
				"seller_id":       product.SellerID,
				"product_id":      product.ID,
			}).Info("Conversation opened")
		}
		c.JSON(status, gin.H{"conversation": conv})
	}
}

// ListConversationsHandler lists the caller's conversations by latest activity
func ListConversationsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUser(c)
		if !ok {
			return
		}
		page := utils.ParsePage(c) // Parse pagination parameters
		var convs []domain.Conversation
		query := db.Model(&domain.Conversation{}).Where("buyer_id = ? OR seller_id = ?", userID, userID) // Either side of the chat
		total, err := fetchPage(query, page, "last_message_at desc, id desc", &convs)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, utils.Paginated("conversations", convs, page, total))
	}
}

// ListMessagesHandler pages backwards through a conversation; each page is returned oldest first
func ListMessagesHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		conv, ok := participantConversation(c, db)
		if !ok {
			return
		}
		page := utils.ParsePage(c)
		var messages []domain.Message
		total, err := fetchPage(db.Model(&domain.Message{}).Where("conversation_id = ?", conv.ID), page, "id desc", &messages)
		if err != nil {
			respondError(c, err)
			return
		}
		slices.Reverse(messages) // Oldest first within the page
		c.JSON(http.StatusOK, utils.Paginated("messages", messages, page, total))
	}
}

// PostMessageHandler persists a message and relays it to live subscribers
func PostMessageHandler(db *gorm.DB, hub chat.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		conv, ok := participantConversation(c, db)
		if !ok {
			return
		}
		senderID, _ := currentUser(c) // Already checked by participantConversation
		var req MessageRequest        // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid message"}) // If binding fails, return bad request
			return
		}
		body := strings.TrimSpace(req.Body) // Ignore surrounding whitespace
		if body == "" || len([]rune(body)) > MaxMessageLength {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Message must be 1-2000 characters"})
			return
		}
		msg := domain.Message{ConversationID: conv.ID, SenderID: senderID, Body: body}
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&msg).Error; err != nil {
				return err
			}
			return tx.Model(&domain.Conversation{}).Where("id = ?", conv.ID).
				Update("last_message_at", msg.CreatedAt).Error // Bump the conversation in listings
		})
		if err != nil {
			respondError(c, err)
			return
		}
		// Relay is best effort; the message is already stored
		if err := hub.Publish(c.Request.Context(), conv.ID, msg); err != nil {
			logrus.WithFields(logrus.Fields{
				"conversation_id": conv.ID,
				"message_id":      msg.ID,
				"error":           err.Error(),
			}).Warn("Chat publish failed")
		}
		c.JSON(http.StatusCreated, gin.H{"message": msg}) // Return the stored message
	}
}

// StreamMessagesHandler relays new messages of a conversation as Server-Sent Events
func StreamMessagesHandler(db *gorm.DB, hub chat.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		conv, ok := participantConversation(c, db)
		if !ok {
			return
		}
		ctx := c.Request.Context()
		messages, cancel, err := hub.Subscribe(ctx, conv.ID) // Subscribe before announcing readiness
		if err != nil {
			respondError(c, err)
			return
		}
		defer cancel() // Release the subscription when the client leaves

		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")
		c.Header("X-Accel-Buffering", "no")                   // Disable proxy buffering
		c.SSEvent("ready", gin.H{"conversation_id": conv.ID}) // Tell the client the stream is live
		c.Writer.Flush()

		ticker := time.NewTicker(streamKeepAlive)
		defer ticker.Stop()
		c.Stream(func(w io.Writer) bool {
			select {
			case <-ctx.Done():
				return false
			case msg, open := <-messages:
				if !open {
					return false
				}
				c.SSEvent("message", msg)
				return true
			case <-ticker.C:
				c.SSEvent("ping", time.Now().UnixMilli()) // Keep idle connections open
				return true
			}
		})
	}
}

// participantConversation loads the :id conversation and checks the caller takes part in it
func participantConversation(c *gin.Context, db *gorm.DB) (domain.Conversation, bool) {
	var conv domain.Conversation
	userID, ok := currentUser(c)
	if !ok {
		return conv, false
	}
	id, ok := pathID(c)
	if !ok {
		return conv, false
	}
	if err := db.First(&conv, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
			return conv, false
		}
		respondError(c, err)
		return conv, false
	}
	if !conv.HasParticipant(userID) {
		respondError(c, errNotParticipant) // Outsiders get 403
		return conv, false
	}
	return conv, true
}
