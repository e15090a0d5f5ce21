// Package units formats coin amounts in the user's selected display unit.
package units

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"seedwatch/pkg/utils"
)

var ErrUnknownUnit = errors.New("unknown display unit")

// Unit is a display denomination of the node's base coin.
type Unit int

const (
	Base Unit = iota
	Milli
	Micro
)

var all = []Unit{Base, Milli, Micro}

// Prefix returns the SI prefix of the unit.
func (u Unit) Prefix() string {
	switch u {
	case Milli:
		return "m"
	case Micro:
		return "u"
	default:
		return ""
	}
}

// Factor is how many of u make one base coin.
func (u Unit) Factor() float64 {
	switch u {
	case Milli:
		return 1e3
	case Micro:
		return 1e6
	default:
		return 1
	}
}

// Symbol returns the unit name for the given coin symbol, e.g. "mSEED".
func (u Unit) Symbol(coin string) string {
	return u.Prefix() + coin
}

// Next cycles through the display units.
func (u Unit) Next() Unit {
	return all[(int(u)+1)%len(all)]
}

// Parse resolves a unit symbol such as "uSEED" against coin.
func Parse(coin, s string) (Unit, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Base, nil
	}
	for _, u := range all {
		if strings.EqualFold(s, u.Symbol(coin)) {
			return u, nil
		}
	}
	return Base, fmt.Errorf("%w: %q", ErrUnknownUnit, s)
}

// Convert scales an amount given in base coins to u.
func Convert(u Unit, amount *big.Float) *big.Float {
	if amount == nil {
		return new(big.Float)
	}
	return new(big.Float).Mul(amount, big.NewFloat(u.Factor()))
}

// Format renders amount in u with thousands separators.
func Format(u Unit, amount *big.Float, decimals int) string {
	return utils.FormatBigFloat(Convert(u, amount), decimals)
}

// FormatWithUnit renders amount followed by the unit symbol. With plusSign,
// positive amounts get a leading "+".
func FormatWithUnit(u Unit, coin string, amount *big.Float, decimals int, plusSign bool) string {
	s := Format(u, amount, decimals)
	if plusSign && amount != nil && amount.Sign() > 0 {
		s = "+" + s
	}
	return s + " " + u.Symbol(coin)
}
