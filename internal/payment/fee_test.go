package payment

import (
	"testing"

	"marketplace/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestComputeFee(t *testing.T) {
	cases := []struct {
		amount domain.Money
		rate   float64
		want   domain.Money
	}{
		{10000, 0.05, 500},
		{1999, 0.05, 100}, // 0.9995 rounds half-up
		{1010, 0.025, 25}, // 0.2525
		{1, 0.05, 0},
		{25000, 0, 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ComputeFee(tc.amount, tc.rate), "%v x %v", tc.amount, tc.rate)
	}
}

func TestSplit_AddsUpToAmount(t *testing.T) {
	for _, amount := range []domain.Money{10, 333, 1999, 123456} {
		fee, net := Split(amount, 0.07)
		assert.Equal(t, ComputeFee(amount, 0.07), fee)
		assert.Equal(t, amount, fee+net)
	}
}

func TestTotal(t *testing.T) {
	assert.Equal(t, domain.Money(30), Total(10, 3))
	assert.Equal(t, domain.Money(5997), Total(1999, 3))
}
