package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type walletView struct {
	ID      uint    `json:"id"`
	Balance float64 `json:"balance"`
}

func TestMemory_SetGet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Set(ctx, WalletKey(4), walletView{ID: 9, Balance: 12.5}, time.Minute))

	var got walletView
	found, err := m.Get(ctx, WalletKey(4), &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, walletView{ID: 9, Balance: 12.5}, got)

	found, err = m.Get(ctx, WalletKey(5), &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemory_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1_700_000_000, 0)
	m := NewMemory()
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "k", 1, time.Second))
	now = now.Add(2 * time.Second)

	var v int
	found, err := m.Get(ctx, "k", &v)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, 0, m.Len())
}

func TestMemory_DeletePrefix(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	for page := 1; page <= 8; page++ {
		require.NoError(t, m.Set(ctx, TxHistoryKey(1, page, 20), page, time.Minute))
	}
	require.NoError(t, m.Set(ctx, TxHistoryKey(11, 1, 20), 1, time.Minute))

	require.NoError(t, m.DeletePrefix(ctx, TxHistoryPrefix(1)))

	assert.Equal(t, 1, m.Len(), "user 11 must not match user 1's prefix")
}

func TestMemory_Delete(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Set(ctx, ProductKey(1), "a", 0))
	require.NoError(t, m.Set(ctx, ProductKey(2), "b", 0))

	require.NoError(t, m.Delete(ctx, ProductKey(1), ProductKey(2)))
	assert.Equal(t, 0, m.Len())
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "wallet:user:7", WalletKey(7))
	assert.Equal(t, "txhistory:user:7:page:2:size:50", TxHistoryKey(7, 2, 50))
	assert.Equal(t, "products:item:3", ProductKey(3))
}
