package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoney_JSON(t *testing.T) {
	b, err := json.Marshal(struct {
		Price Money `json:"price"`
	}{Price: 1250})
	require.NoError(t, err)
	assert.JSONEq(t, `{"price":12.5}`, string(b))

	var in struct {
		Amount Money `json:"amount"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"amount":0.1}`), &in))
	assert.Equal(t, Money(10), in.Amount)
	require.NoError(t, json.Unmarshal([]byte(`{"amount":"19.99"}`), &in))
	assert.Equal(t, Money(1999), in.Amount)

	assert.ErrorIs(t, json.Unmarshal([]byte(`{"amount":0.005}`), &in), ErrSubCent)
	assert.Error(t, json.Unmarshal([]byte(`{"amount":"ten"}`), &in))
}

func TestMoney_Conversions(t *testing.T) {
	assert.Equal(t, Money(30), NewMoney(0.1+0.2))
	assert.Equal(t, Money(1999), NewMoney(19.99))
	assert.Equal(t, "0.30", Money(30).String())
	assert.Equal(t, 0.3, Money(30).Float64())

	m, err := ParseMoney("7.5")
	require.NoError(t, err)
	assert.Equal(t, Money(750), m)
	_, err = ParseMoney("7.505")
	assert.ErrorIs(t, err, ErrSubCent)
}
