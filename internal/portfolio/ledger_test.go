package portfolio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CryptoSentinel/internal/collector"
)

func TestAddAsset_MergesLotsAtVolumeWeightedPrice(t *testing.T) {
	l := NewLedger()
	require.NoError(t, l.AddAsset("BTC", 1, 50000))
	require.NoError(t, l.AddAsset("btc", 1, 60000))

	holdings := l.Holdings()
	require.Len(t, holdings, 1)
	assert.Equal(t, "BTC", holdings[0].Symbol)
	assert.InDelta(t, 2.0, holdings[0].Amount, 1e-9)
	assert.InDelta(t, 55000.0, holdings[0].Price, 1e-9)
}

func TestAddAsset_RejectsInvalidInput(t *testing.T) {
	l := NewLedger()
	assert.ErrorIs(t, l.AddAsset("BTC", 0, 100), ErrInvalidInput)
	assert.ErrorIs(t, l.AddAsset("BTC", -1, 100), ErrInvalidInput)
	assert.ErrorIs(t, l.AddAsset("BTC", 1, -5), ErrInvalidInput)
	assert.Empty(t, l.Holdings(), "rejected input must not mutate the ledger")
}

func TestRemoveAsset_MoreThanHeldDeletesHolding(t *testing.T) {
	l := NewLedger()
	require.NoError(t, l.AddAsset("ETH", 1, 2000))

	l.RemoveAsset("ETH", 5)
	assert.Empty(t, l.Holdings())
	assert.Zero(t, l.TotalValue())
}

func TestRemoveAsset_PartialKeepsRecordedPrice(t *testing.T) {
	l := NewLedger()
	require.NoError(t, l.AddAsset("ETH", 2, 2000))

	l.RemoveAsset("ETH", 1)
	holdings := l.Holdings()
	require.Len(t, holdings, 1)
	assert.InDelta(t, 1.0, holdings[0].Amount, 1e-9)
	assert.InDelta(t, 2000.0, holdings[0].Price, 1e-9)
}

func TestRemoveAsset_AbsentSymbolIsNoop(t *testing.T) {
	l := NewLedger()
	require.NoError(t, l.AddAsset("BTC", 1, 50000))

	l.RemoveAsset("DOGE", 100)
	assert.Len(t, l.Holdings(), 1)
}

func TestRemoveAll_DeletesHolding(t *testing.T) {
	l := NewLedger()
	require.NoError(t, l.AddAsset("BTC", 3, 50000))

	l.RemoveAll("btc")
	assert.Empty(t, l.Holdings())
}

func TestTotalValue_AlwaysMatchesSumOverHoldings(t *testing.T) {
	l := NewLedger()
	steps := []struct {
		symbol string
		amount float64
		price  float64
	}{
		{"BTC", 1, 50000},
		{"ETH", 10, 2000},
		{"BTC", 0.5, 62000},
		{"SOL", 100, 150},
		{"ETH", 2, 1800},
	}
	for _, s := range steps {
		require.NoError(t, l.AddAsset(s.symbol, s.amount, s.price))

		sum := 0.0
		for _, h := range l.Holdings() {
			sum += h.Amount * h.Price
		}
		assert.InDelta(t, sum, l.TotalValue(), 1e-6)
	}
}

func TestWeightOf_ZeroTotalValue(t *testing.T) {
	l := NewLedger()
	assert.Zero(t, l.WeightOf("BTC"))

	// A holding recorded at zero price keeps the total at zero.
	require.NoError(t, l.AddAsset("BTC", 1, 0))
	assert.Zero(t, l.WeightOf("BTC"))
}

func TestWeightOf_SharesOfTotal(t *testing.T) {
	l := NewLedger()
	require.NoError(t, l.AddAsset("BTC", 1, 75000))
	require.NoError(t, l.AddAsset("ETH", 10, 2500))

	assert.InDelta(t, 0.75, l.WeightOf("BTC"), 1e-9)
	assert.InDelta(t, 0.25, l.WeightOf("eth"), 1e-9)
	assert.InDelta(t, 25000.0, l.ValueOf("ETH"), 1e-9)
}

func TestRefreshPrices_PartialFailureLeavesPriceUnchanged(t *testing.T) {
	l := NewLedger()
	require.NoError(t, l.AddAsset("BTC", 1, 50000))
	require.NoError(t, l.AddAsset("ETH", 1, 2000))

	lookup := &collector.MockFetcher{
		Prices:      map[string]float64{"BTC": 80000},
		Unavailable: map[string]bool{"ETH": true},
	}
	err := l.RefreshPrices(lookup)
	assert.ErrorIs(t, err, collector.ErrPriceUnavailable)

	holdings := l.Holdings()
	require.Len(t, holdings, 2)
	assert.InDelta(t, 80000.0, holdings[0].Price, 1e-9, "BTC should be refreshed")
	assert.InDelta(t, 2000.0, holdings[1].Price, 1e-9, "ETH price must be unchanged")
}
