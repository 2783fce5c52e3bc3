package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vitos/bybit_dca_bot/internal/domain"
)

func TestTradeTypeOf(t *testing.T) {
	tests := []struct {
		side       domain.Side
		reduceOnly bool
		want       domain.TradeType
	}{
		{domain.SideBuy, false, domain.TradeOpenLong},
		{domain.SideSell, true, domain.TradeCloseLong},
		{domain.SideSell, false, domain.TradeOpenShort},
		{domain.SideBuy, true, domain.TradeCloseShort},
	}

	seen := make(map[domain.TradeType]bool)
	for _, tt := range tests {
		got := domain.TradeTypeOf(tt.side, tt.reduceOnly)
		assert.Equal(t, tt.want, got, "TradeTypeOf(%s, %v)", tt.side, tt.reduceOnly)
		assert.False(t, seen[got], "role %s assigned twice", got)
		seen[got] = true
	}
	assert.Len(t, seen, 4, "the four roles must partition the input space")
}

func TestTradeTypeIsLong(t *testing.T) {
	assert.True(t, domain.TradeOpenLong.IsLong())
	assert.True(t, domain.TradeCloseLong.IsLong())
	assert.False(t, domain.TradeOpenShort.IsLong())
	assert.False(t, domain.TradeCloseShort.IsLong())
}

func TestSideOpposite(t *testing.T) {
	assert.Equal(t, domain.SideSell, domain.SideBuy.Opposite())
	assert.Equal(t, domain.SideBuy, domain.SideSell.Opposite())
}

func TestOrderTradeType(t *testing.T) {
	o := &domain.Order{Side: domain.SideSell, ReduceOnly: true}
	assert.Equal(t, domain.TradeCloseLong, o.TradeType())
}
