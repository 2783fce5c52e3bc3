package usecase_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vitos/bybit_dca_bot/internal/usecase"
)

func TestPercentChange(t *testing.T) {
	tests := []struct {
		name     string
		price    float64
		change   float64
		decimals int
		want     float64
	}{
		{"two percent up", 100, 2, 2, 102.00},
		{"two percent down", 100, -2, 2, 98.00},
		{"rounds to cents", 123.456, 1.5, 2, 125.31},
		{"no change", 40000, 0, 2, 40000},
		{"scaled entry", 40000, -2, 2, 39200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, usecase.PercentChange(tt.price, tt.change, tt.decimals))
		})
	}
}

func TestSpacingExponent(t *testing.T) {
	tests := []struct {
		minUnit float64
		size    float64
		want    int
	}{
		{1, 0.5, 1},
		{1, 1, 1},
		{1, 2, 1},
		{1, 2.5, 2},
		{1, 5, 3},
		{1, 10, 4},
		{0.001, 0.001, 1},
		{0.001, 0.004, 2},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, usecase.SpacingExponent(tt.minUnit, tt.size),
			"SpacingExponent(%v, %v)", tt.minUnit, tt.size)
	}
}

func TestSpacingExponent_MonotoneOverDoublings(t *testing.T) {
	prev := 0
	for size := 1.5; size < 1000; size *= 2 {
		got := usecase.SpacingExponent(1, size)
		assert.Greater(t, got, prev, "size %v", size)
		prev = got
	}
}
