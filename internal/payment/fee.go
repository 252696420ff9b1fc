package payment

import (
	"marketplace/internal/domain"

	"github.com/shopspring/decimal"
)

// Total returns unitPrice * quantity
func Total(unitPrice domain.Money, quantity int) domain.Money {
	return unitPrice * domain.Money(quantity)
}

// ComputeFee returns amount * rate rounded half-up to cents
func ComputeFee(amount domain.Money, rate float64) domain.Money {
	return domain.MoneyFromDecimal(amount.Decimal().Mul(decimal.NewFromFloat(rate)))
}

// Split divides amount into the platform fee and the seller's net share; fee + net == amount
func Split(amount domain.Money, rate float64) (fee, net domain.Money) {
	fee = ComputeFee(amount, rate)
	return fee, amount - fee
}
