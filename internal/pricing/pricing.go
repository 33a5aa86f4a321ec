// Package pricing computes cart totals from typed line items.
package pricing

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultPlatformFee is added once to every cart total.
var DefaultPlatformFee = decimal.NewFromInt(20)

var hundred = decimal.NewFromInt(100)

type LineItem struct {
	ProductID       string
	Quantity        int
	UnitPrice       decimal.Decimal
	DiscountPercent decimal.Decimal
}

// MRP is the undiscounted price of the line.
func (li LineItem) MRP() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(ClampQuantity(li.Quantity))))
}

// Discount is the amount taken off the line's MRP.
func (li LineItem) Discount() decimal.Decimal {
	return li.UnitPrice.
		Mul(li.DiscountPercent).
		Div(hundred).
		Mul(decimal.NewFromInt(int64(ClampQuantity(li.Quantity))))
}

// Payable is MRP minus discount for the line.
func (li LineItem) Payable() decimal.Decimal {
	return li.MRP().Sub(li.Discount())
}

type Totals struct {
	TotalMRP      decimal.Decimal `json:"totalMRP"`
	TotalDiscount decimal.Decimal `json:"totalDiscount"`
	PlatformFee   decimal.Decimal `json:"platformFee"`
	GrandTotal    decimal.Decimal `json:"grandTotal"`
	ItemCount     int             `json:"itemCount"`
}

// Calculate is pure: the same items and fee always yield the same Totals.
func Calculate(items []LineItem, platformFee decimal.Decimal) Totals {
	totals := Totals{
		TotalMRP:      decimal.Zero,
		TotalDiscount: decimal.Zero,
		PlatformFee:   platformFee,
	}

	for _, item := range items {
		totals.TotalMRP = totals.TotalMRP.Add(item.MRP())
		totals.TotalDiscount = totals.TotalDiscount.Add(item.Discount())
		totals.ItemCount += ClampQuantity(item.Quantity)
	}

	totals.GrandTotal = totals.TotalMRP.Sub(totals.TotalDiscount).Add(platformFee)
	return totals
}

// ClampQuantity enforces the floor of one unit per line.
func ClampQuantity(q int) int {
	if q < 1 {
		return 1
	}
	return q
}

func Increment(q int) int {
	return ClampQuantity(q) + 1
}

// Decrement never goes below one.
func Decrement(q int) int {
	q = ClampQuantity(q)
	if q > 1 {
		return q - 1
	}
	return q
}

// Apply runs a named quantity action ("increase" or "decrease").
func Apply(q int, action string) (int, error) {
	switch strings.ToLower(strings.TrimSpace(action)) {
	case "increase":
		return Increment(q), nil
	case "decrease":
		return Decrement(q), nil
	default:
		return 0, fmt.Errorf("unknown quantity action %q", action)
	}
}

// FormatQuantity renders a quantity zero-padded to two digits.
func FormatQuantity(q int) string {
	return fmt.Sprintf("%02d", q)
}

// FormatMoney renders an amount as rupees with two decimals and thousands separators.
func FormatMoney(amount decimal.Decimal) string {
	fixed := amount.Abs().StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	sign := ""
	if amount.IsNegative() {
		sign = "-"
	}
	return sign + "₹" + b.String() + "." + frac
}

// ValidateDiscount accepts percentages from 0 to 100 inclusive.
func ValidateDiscount(percent float64) error {
	if !IsFinite(percent) || percent < 0 || percent > 100 {
		return fmt.Errorf("discount must be between 0 and 100")
	}
	return nil
}

// ValidatePrice accepts strictly positive prices.
func ValidatePrice(price float64) error {
	if !IsFinite(price) || price <= 0 {
		return fmt.Errorf("price must be greater than 0")
	}
	return nil
}

// EffectivePrice is the unit price after the percentage discount.
func EffectivePrice(price, discountPercent float64) decimal.Decimal {
	p := FromFloat(price)
	return p.Sub(p.Mul(FromFloat(discountPercent)).Div(hundred))
}

func IsFinite(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}

// FromFloat converts a stored amount to a Decimal. NaN and ±Inf become zero
// instead of panicking.
func FromFloat(f float64) decimal.Decimal {
	if !IsFinite(f) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}
