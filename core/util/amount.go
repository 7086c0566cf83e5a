package util

import (
	"math/big"

	"github.com/cockroachdb/apd/v3"
	"github.com/pkg/errors"
)

// ParseTokenAmount converts a positive decimal string into the token's
// smallest-unit integer, scaling by 10^decimals. Amounts with fractional
// digits below one smallest unit are rejected rather than silently rounded.
func ParseTokenAmount(amount string, decimals uint32) (*big.Int, error) {
	d, _, err := apd.NewFromString(amount)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid decimal amount %q", amount)
	}
	if d.Form != apd.Finite {
		return nil, errors.Errorf("amount %q is not a finite number", amount)
	}
	if d.Sign() <= 0 {
		return nil, errors.Errorf("amount must be a positive number, got %q", amount)
	}

	scaled := new(apd.Decimal).Set(d)
	scaled.Exponent += int32(decimals)
	if scaled.Exponent < 0 {
		return nil, errors.Errorf("amount %q has more than %d decimal places", amount, decimals)
	}

	result := new(big.Int).Set(scaled.Coeff.MathBigInt())
	if scaled.Exponent > 0 {
		exp := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(scaled.Exponent)), nil)
		result.Mul(result, exp)
	}
	return result, nil
}

// FormatTokenAmount renders a smallest-unit integer as a decimal token
// string, the inverse of ParseTokenAmount.
func FormatTokenAmount(amount *big.Int, decimals uint32) string {
	if amount == nil {
		return "0"
	}
	coeff := new(apd.BigInt).SetMathBigInt(amount)
	d := apd.NewWithBigInt(coeff, -int32(decimals))
	d.Reduce(d)
	return d.Text('f')
}
