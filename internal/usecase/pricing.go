package usecase

import "math"

// PercentChange shifts price by change percent and rounds the result to
// the given number of decimal places before it goes to the exchange.
func PercentChange(price, change float64, decimals int) float64 {
	updated := price * (1 + change/100)
	pow := math.Pow(10, float64(decimals))
	return math.Round(updated*pow) / pow
}

// SpacingExponent returns the multiplier applied to the next-entry
// percentage: 1 while size is within the first doubling of minUnit,
// then one more for each further doubling. Spreading re-entries out as
// the position grows keeps DCA orders from stacking at one price level.
func SpacingExponent(minUnit, size float64) int {
	exponent := 1
	ratio := size / minUnit
	for ratio > 2 {
		ratio /= 2
		exponent++
	}
	return exponent
}
