package restake

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Priority scales the compute unit price observed on chain. It is either one of the
// named levels or a custom decimal multiplier.
type Priority string

var Low Priority = "low"
var Market Priority = "market"
var Aggressive Priority = "aggressive"
var VeryAggressive Priority = "very-aggressive"

var MaxCustomMultiplier = decimal.NewFromInt(10)

func NewPriority(input string) (Priority, error) {
	if input == "" {
		return Market, nil
	}
	p := Priority(input)
	if p.IsEnum() {
		return p, nil
	}
	_, err := p.AsCustom()
	return p, err
}

func (p Priority) IsEnum() bool {
	switch p {
	case Low, Market, Aggressive, VeryAggressive:
		return true
	}
	return false
}

func (p Priority) AsCustom() (decimal.Decimal, error) {
	if p.IsEnum() {
		return decimal.Decimal{}, errors.New("not a custom enum")
	}
	dec, err := decimal.NewFromString(string(p))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid decimal: %v", err)
	}
	if dec.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("invalid multiplier %s: must not be negative", dec)
	}
	if dec.GreaterThan(MaxCustomMultiplier) {
		return decimal.Decimal{}, fmt.Errorf("%s exceeds custom multiplier limit of %s", dec, MaxCustomMultiplier)
	}
	return dec, nil
}

// GetDefault returns the multiplier for the priority. An empty priority is market.
func (p Priority) GetDefault() (decimal.Decimal, error) {
	switch p {
	case Low:
		return decimal.NewFromFloat(0.7), nil
	case "", Market:
		// use int for market to be exact 1
		return decimal.NewFromInt(1), nil
	case Aggressive:
		return decimal.NewFromFloat(1.5), nil
	case VeryAggressive:
		return decimal.NewFromInt(2), nil
	}
	return p.AsCustom()
}

// ApplyMultiplier scales an amount, rounding down to whole units.
func (amount AmountBlockchain) ApplyMultiplier(multiplier decimal.Decimal) AmountBlockchain {
	scaled := decimal.NewFromBigInt(amount.Int(), 0).Mul(multiplier)
	return AmountBlockchain(*scaled.Floor().BigInt())
}
