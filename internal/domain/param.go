package domain

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// Obfuscated order numbers are a reversible affine permutation of [0, 10^10)
// printed as ###-####-###.
var (
	paramModulus    = big.NewInt(10_000_000_000)
	paramMultiplier = big.NewInt(7_919_713_573)
	paramOffset     = big.NewInt(2_718_281_828)
	paramInverse    = new(big.Int).ModInverse(paramMultiplier, paramModulus)
)

// Param is the public order number.
func (o *Order) Param(s Settings) string {
	return FormatOrderParam(o.ID, s)
}

func FormatOrderParam(id int64, s Settings) string {
	if !s.ObfuscateIDs {
		return strconv.FormatInt(id, 10)
	}

	n := new(big.Int).Mul(big.NewInt(id), paramMultiplier)
	n.Add(n, paramOffset).Mod(n, paramModulus)

	digits := fmt.Sprintf("%010d", n.Int64())
	return digits[:3] + "-" + digits[3:7] + "-" + digits[7:]
}

// ParseOrderParam reverses FormatOrderParam.
func ParseOrderParam(param string, s Settings) (int64, error) {
	raw := strings.ReplaceAll(strings.TrimSpace(param), "-", "")

	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("order param[%s] is not valid: %w", param, ErrOrderNotFound)
	}
	if !s.ObfuscateIDs {
		if n == 0 {
			return 0, fmt.Errorf("order param[%s] is not valid: %w", param, ErrOrderNotFound)
		}
		return n, nil
	}
	if len(raw) != 10 {
		return 0, fmt.Errorf("order param[%s] is not valid: %w", param, ErrOrderNotFound)
	}

	id := new(big.Int).Sub(big.NewInt(n), paramOffset)
	id.Mul(id, paramInverse).Mod(id, paramModulus)
	if id.Sign() == 0 {
		return 0, fmt.Errorf("order param[%s] is not valid: %w", param, ErrOrderNotFound)
	}

	return id.Int64(), nil
}
