package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"marketplace/internal/domain"
	"marketplace/internal/ledger"
	"marketplace/internal/payment"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Currency charged through the payment API
const Currency = "usd"

var (
	// ErrProductNotFound is returned for missing or inactive products
	ErrProductNotFound = errors.New("product not found")
	// ErrOwnProduct is returned when a seller tries to buy their own listing
	ErrOwnProduct = errors.New("cannot buy your own product")
	// ErrInvalidOrder is returned for malformed order requests
	ErrInvalidOrder = errors.New("invalid order")
)

// reasonOutOfStockAfterCharge marks card orders whose stock vanished between charge and settlement
const reasonOutOfStockAfterCharge = "out_of_stock_after_charge"

// PlaceOrderRequest is a buyer's checkout request
type PlaceOrderRequest struct {
	ProductID     uint
	Quantity      int
	PaymentMethod string
	CardToken     string
}

// Service turns checkout requests into settled orders
type Service struct {
	db       *gorm.DB
	payments payment.Client
	feeRate  float64
}

// NewService builds a checkout service charging feeRate on every order
func NewService(db *gorm.DB, payments payment.Client, feeRate float64) *Service {
	return &Service{db: db, payments: payments, feeRate: feeRate}
}

// PlaceOrder validates the request and settles it through the buyer's wallet or a card charge
func (s *Service) PlaceOrder(ctx context.Context, buyerID uint, req PlaceOrderRequest) (*domain.Order, error) {
	if req.Quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", ErrInvalidOrder)
	}
	if req.PaymentMethod == domain.PayCard && req.CardToken == "" {
		return nil, fmt.Errorf("%w: card_token is required for card payments", ErrInvalidOrder)
	}

	var product domain.Product
	err := s.db.WithContext(ctx).Where("id = ? AND active = ?", req.ProductID, true).First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	} else if err != nil {
		return nil, err
	}
	if product.SellerID == buyerID {
		return nil, ErrOwnProduct
	}
	sellerWallet, err := ledger.WalletOf(s.db.WithContext(ctx), product.SellerID)
	if err != nil {
		return nil, fmt.Errorf("seller: %w", err)
	}

	amount := payment.Total(product.Price, req.Quantity)
	fee, net := payment.Split(amount, s.feeRate)
	order := &domain.Order{
		Reference:     uuid.NewString(),
		BuyerID:       buyerID,
		SellerID:      product.SellerID,
		ProductID:     product.ID,
		Quantity:      req.Quantity,
		UnitPrice:     product.Price,
		Amount:        amount,
		Fee:           fee,
		PaymentMethod: req.PaymentMethod,
	}

	switch req.PaymentMethod {
	case domain.PayWallet:
		return s.payWithWallet(ctx, order, net, sellerWallet)
	case domain.PayCard:
		if product.Stock < req.Quantity {
			return nil, ledger.ErrOutOfStock
		}
		return s.payWithCard(ctx, order, net, sellerWallet, req.CardToken, product.Title)
	default:
		return nil, fmt.Errorf("%w: unknown payment method %q", ErrInvalidOrder, req.PaymentMethod)
	}
}

func (s *Service) payWithWallet(ctx context.Context, order *domain.Order, net domain.Money, sellerWallet domain.Wallet) (*domain.Order, error) {
	buyerWallet, err := ledger.WalletOf(s.db.WithContext(ctx), order.BuyerID)
	if err != nil {
		return nil, fmt.Errorf("buyer: %w", err)
	}
	order.Status = domain.OrderPaid

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ledger.TakeStock(tx, order.ProductID, order.Quantity); err != nil {
			return err
		}
		if err := ledger.Debit(tx, buyerWallet.ID, order.Amount); err != nil {
			return err
		}
		if err := ledger.Credit(tx, sellerWallet.ID, net); err != nil {
			return err
		}
		if err := tx.Create(order).Error; err != nil {
			return err
		}
		if err := ledger.Record(tx, &domain.Transaction{
			FromWalletID: &buyerWallet.ID,
			ToWalletID:   &sellerWallet.ID,
			OrderID:      &order.ID,
			Amount:       net,
			Type:         domain.TxPurchase,
		}); err != nil {
			return err
		}
		return s.recordFee(tx, order, &buyerWallet.ID)
	})
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"buyer_id":   order.BuyerID,
			"product_id": order.ProductID,
			"amount":     order.Amount,
			"error":      err.Error(),
		}).Warn("Wallet checkout failed")
		return nil, err
	}
	s.logPaid(order)
	return order, nil
}

func (s *Service) payWithCard(ctx context.Context, order *domain.Order, net domain.Money, sellerWallet domain.Wallet, cardToken, title string) (*domain.Order, error) {
	order.Status = domain.OrderPending
	if err := s.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}

	charge, err := s.payments.Charge(ctx, payment.ChargeRequest{
		Amount:         order.Amount,
		Currency:       Currency,
		Source:         cardToken,
		Description:    fmt.Sprintf("Order %s: %d x %s", order.Reference, order.Quantity, title),
		IdempotencyKey: order.Reference,
	})
	if err != nil {
		s.markFailed(order, err.Error())
		return order, err
	}
	order.PaymentRef = charge.ID

	// Settlement must finish once the card is charged, even if the client went away
	settleCtx := context.WithoutCancel(ctx)
	err = s.db.WithContext(settleCtx).Transaction(func(tx *gorm.DB) error {
		if err := ledger.TakeStock(tx, order.ProductID, order.Quantity); err != nil {
			return err
		}
		if err := ledger.Credit(tx, sellerWallet.ID, net); err != nil {
			return err
		}
		if err := ledger.Record(tx, &domain.Transaction{
			ToWalletID: &sellerWallet.ID,
			OrderID:    &order.ID,
			Amount:     net,
			Type:       domain.TxSale,
		}); err != nil {
			return err
		}
		if err := s.recordFee(tx, order, nil); err != nil {
			return err
		}
		return tx.Model(order).Updates(map[string]any{
			"status":      domain.OrderPaid,
			"payment_ref": charge.ID,
		}).Error
	})
	if err != nil {
		// The card is charged but the order cannot be fulfilled; refunds are handled out of band
		reason := err.Error()
		if errors.Is(err, ledger.ErrOutOfStock) {
			reason = reasonOutOfStockAfterCharge
		}
		logrus.WithFields(logrus.Fields{
			"order_ref":  order.Reference,
			"charge_id":  charge.ID,
			"amount":     order.Amount,
			"product_id": order.ProductID,
			"error":      err.Error(),
		}).Error("Charged order could not be settled")
		s.markFailed(order, reason)
		return order, err
	}
	order.Status = domain.OrderPaid
	s.logPaid(order)
	return order, nil
}

// recordFee books the platform fee; from is nil for card orders
func (s *Service) recordFee(tx *gorm.DB, order *domain.Order, from *uint) error {
	if order.Fee <= 0 {
		return nil
	}
	return ledger.Record(tx, &domain.Transaction{
		FromWalletID: from,
		OrderID:      &order.ID,
		Amount:       order.Fee,
		Type:         domain.TxFee,
	})
}

// markFailed runs detached from the request context so a cancelled client still leaves a final status
func (s *Service) markFailed(order *domain.Order, reason string) {
	if len(reason) > 255 {
		reason = reason[:255]
	}
	order.Status = domain.OrderFailed
	order.FailureReason = reason
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.db.WithContext(ctx).Model(order).Updates(map[string]any{
		"status":         domain.OrderFailed,
		"failure_reason": reason,
	}).Error; err != nil {
		logrus.WithFields(logrus.Fields{
			"order_ref": order.Reference,
			"error":     err.Error(),
		}).Error("Failed to mark order failed")
		return
	}
	logrus.WithFields(logrus.Fields{
		"order_ref": order.Reference,
		"reason":    reason,
	}).Warn("Order failed")
}

func (s *Service) logPaid(order *domain.Order) {
	logrus.WithFields(logrus.Fields{
		"order_id":       order.ID,
		"order_ref":      order.Reference,
		"buyer_id":       order.BuyerID,
		"seller_id":      order.SellerID,
		"amount":         order.Amount,
		"fee":            order.Fee,
		"payment_method": order.PaymentMethod,
		"timestamp":      time.Now().Format(time.RFC3339),
	}).Info("Order paid")
}
