package evm

import (
	"fmt"
	"math/big"
	"strings"
)

// Decimal places of the denominations reported by the tools
const (
	EtherDecimals = 18
	GweiDecimals  = 9
)

// ParseQuantity parses a 0x-prefixed hex quantity into an integer of
// arbitrary size. Leading zeros are tolerated.
func ParseQuantity(s string) (*big.Int, error) {
	digits, ok := strings.CutPrefix(s, "0x")
	if !ok {
		digits, ok = strings.CutPrefix(s, "0X")
	}
	if !ok || digits == "" || digits[0] == '+' || digits[0] == '-' {
		return nil, fmt.Errorf("invalid hex quantity %q", s)
	}

	v, ok := new(big.Int).SetString(digits, 16)
	if !ok {
		return nil, fmt.Errorf("invalid hex quantity %q", s)
	}
	return v, nil
}

// FormatUnits renders v scaled down by 10^decimals as an exact decimal
// string. Trailing zeros are trimmed but one fractional digit is always
// kept, so one ether formats as "1.0".
func FormatUnits(v *big.Int, decimals int) string {
	negative := v.Sign() < 0
	digits := new(big.Int).Abs(v).String()
	if decimals <= 0 {
		if negative {
			return "-" + digits
		}
		return digits
	}

	if len(digits) <= decimals {
		digits = strings.Repeat("0", decimals-len(digits)+1) + digits
	}
	whole, frac := digits[:len(digits)-decimals], digits[len(digits)-decimals:]
	frac = strings.TrimRight(frac, "0")
	if frac == "" {
		frac = "0"
	}

	if negative {
		return "-" + whole + "." + frac
	}
	return whole + "." + frac
}

// FormatEther renders a wei amount in ether
func FormatEther(wei *big.Int) string {
	return FormatUnits(wei, EtherDecimals)
}

// FormatGwei renders a wei amount in gwei
func FormatGwei(wei *big.Int) string {
	return FormatUnits(wei, GweiDecimals)
}

// NormalizeBlock converts a block selector written as decimal digits into a
// hex quantity. Tags ("latest", "safe", ...) and hex values pass through.
func NormalizeBlock(selector string) string {
	if selector == "" || strings.HasPrefix(selector, "0x") || strings.HasPrefix(selector, "0X") {
		return selector
	}
	for _, r := range selector {
		if r < '0' || r > '9' {
			return selector
		}
	}
	n, ok := new(big.Int).SetString(selector, 10)
	if !ok {
		return selector
	}
	return "0x" + n.Text(16)
}
