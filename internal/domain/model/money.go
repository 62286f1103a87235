package model

import (
	"math/big"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/custodian/internal/domain/errors"
)

const etherDecimals = 18

// ParseAmount parses a decimal ETH amount string. The amount must be a
// positive number with at most 18 fractional digits so it maps exactly onto
// an integral wei value. Floats are never involved.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, domainErrors.ErrInvalidAmount
	}
	if !d.IsPositive() {
		return decimal.Decimal{}, domainErrors.ErrInvalidAmount
	}
	// Check the value, not the literal: "0.5000000000000000000" carries a
	// 19-digit fraction but still lands on a whole number of wei.
	if !d.Shift(etherDecimals).IsInteger() {
		return decimal.Decimal{}, domainErrors.ErrInvalidAmount
	}
	return d, nil
}

// ToWei converts an ETH amount to wei. Amounts produced by ParseAmount
// convert without remainder.
func ToWei(d decimal.Decimal) *big.Int {
	return d.Shift(etherDecimals).BigInt()
}

// FromWei converts a wei value to an ETH decimal.
func FromWei(wei *big.Int) decimal.Decimal {
	return decimal.NewFromBigInt(wei, -etherDecimals)
}
