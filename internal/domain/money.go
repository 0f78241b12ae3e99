package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// VATRate is the Romanian standard VAT rate applied to all store sales.
// Stored totals are VAT-inclusive; the tax component is back-calculated as
// total - total/(1+VATRate).
const VATRate = 0.19

// ErrInvalidMoney indicates a price value that could not be parsed as an amount.
var ErrInvalidMoney = errors.New("money: invalid amount")

// ParseMoney normalises a monetary input to a float64 RON amount.
//
// Historical order documents store some prices as locale-formatted strings
// ("1.234,56" or "129,99") while newer ones carry plain numbers. This is the
// single boundary where both shapes are accepted; everything downstream works
// on float64 only.
func ParseMoney(value any) (float64, error) {
	switch v := value.(type) {
	case nil:
		return 0, fmt.Errorf("%w: nil value", ErrInvalidMoney)
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidMoney, v.String())
		}
		return parsed, nil
	case string:
		return parseMoneyString(v)
	default:
		return 0, fmt.Errorf("%w: unsupported type %T", ErrInvalidMoney, value)
	}
}

func parseMoneyString(raw string) (float64, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	cleaned = strings.TrimSuffix(cleaned, "RON")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return 0, fmt.Errorf("%w: empty string", ErrInvalidMoney)
	}

	// Comma decimals win: "1.234,56" uses dots as thousand separators.
	if strings.Contains(cleaned, ",") {
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.Replace(cleaned, ",", ".", 1)
	}

	parsed, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMoney, raw)
	}
	return parsed, nil
}

// Round2 rounds an amount to two decimals, half away from zero. Applied only
// at serialisation boundaries; intermediate arithmetic stays unrounded so
// batch sums do not accumulate rounding drift.
func Round2(amount float64) float64 {
	rounded, _ := decimal.NewFromFloat(amount).Round(2).Float64()
	return rounded
}

// FormatAmount renders an amount with exactly two decimals and a dot
// separator, as required by the accounting export contract.
func FormatAmount(amount float64) string {
	return decimal.NewFromFloat(amount).Round(2).StringFixed(2)
}
