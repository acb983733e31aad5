package model

import (
	"fmt"
	"math"
)

// Tier is one of the four ticket classes.
type Tier string

const (
	TierVIP       Tier = "vip"
	TierVVIP      Tier = "vvip"
	TierMIP       Tier = "mip"
	TierCelebrity Tier = "celebrity"
)

// Tiers lists every tier in display order.
var Tiers = []Tier{TierVIP, TierVVIP, TierMIP, TierCelebrity}

// ParseTier converts a string into a Tier.
func ParseTier(s string) (Tier, error) {
	switch t := Tier(s); t {
	case TierVIP, TierVVIP, TierMIP, TierCelebrity:
		return t, nil
	}
	return "", Invalid("unknown tier %q", s)
}

// TierCounts holds one integer per tier: capacities, remaining seats or
// requested quantities depending on context.
type TierCounts struct {
	VIP       int `json:"vip"`
	VVIP      int `json:"vvip"`
	MIP       int `json:"mip"`
	Celebrity int `json:"celebrity"`
}

// Get returns the count for a tier.
func (c TierCounts) Get(t Tier) int {
	switch t {
	case TierVIP:
		return c.VIP
	case TierVVIP:
		return c.VVIP
	case TierMIP:
		return c.MIP
	case TierCelebrity:
		return c.Celebrity
	default:
		panic(fmt.Sprintf("model: unknown tier %q", t))
	}
}

// Sum returns the total across all tiers.
func (c TierCounts) Sum() int {
	return c.VIP + c.VVIP + c.MIP + c.Celebrity
}

// Sub returns c minus o, tier by tier. The result may be negative.
func (c TierCounts) Sub(o TierCounts) TierCounts {
	return TierCounts{
		VIP:       c.VIP - o.VIP,
		VVIP:      c.VVIP - o.VVIP,
		MIP:       c.MIP - o.MIP,
		Celebrity: c.Celebrity - o.Celebrity,
	}
}

// Clamped returns a copy with every negative tier raised to zero.
func (c TierCounts) Clamped() TierCounts {
	return TierCounts{
		VIP:       max(0, c.VIP),
		VVIP:      max(0, c.VVIP),
		MIP:       max(0, c.MIP),
		Celebrity: max(0, c.Celebrity),
	}
}

// AnyNegative reports whether some tier is below zero.
func (c TierCounts) AnyNegative() bool {
	for _, t := range Tiers {
		if c.Get(t) < 0 {
			return true
		}
	}
	return false
}

// TierPrices holds the unit price of each tier in whole currency units.
type TierPrices struct {
	VIP       int64 `json:"vip"`
	VVIP      int64 `json:"vvip"`
	MIP       int64 `json:"mip"`
	Celebrity int64 `json:"celebrity"`
}

// MaxTierPrice bounds a single tier's unit price.
const MaxTierPrice int64 = 1_000_000_000

// DefaultTierPrices are applied to events created without explicit prices.
var DefaultTierPrices = TierPrices{VIP: 300, VVIP: 500, MIP: 700, Celebrity: 1000}

// Get returns the unit price for a tier.
func (p TierPrices) Get(t Tier) int64 {
	switch t {
	case TierVIP:
		return p.VIP
	case TierVVIP:
		return p.VVIP
	case TierMIP:
		return p.MIP
	case TierCelebrity:
		return p.Celebrity
	default:
		panic(fmt.Sprintf("model: unknown tier %q", t))
	}
}

// Total returns Σ(quantity × unit price). It fails with ErrInvalidRequest
// when a quantity or price is negative or the sum does not fit in an int64.
func (p TierPrices) Total(q TierCounts) (int64, error) {
	var total int64
	for _, t := range Tiers {
		n, price := int64(q.Get(t)), p.Get(t)
		if n < 0 || price < 0 {
			return 0, Invalid("%s quantity and price cannot be negative", t)
		}
		if n > 0 && price > (math.MaxInt64-total)/n {
			return 0, Invalid("total price overflows")
		}
		total += n * price
	}
	return total, nil
}

// Min returns the cheapest tier price.
func (p TierPrices) Min() int64 {
	return min(p.VIP, p.VVIP, p.MIP, p.Celebrity)
}

// AnyNegative reports whether some tier has a negative price.
func (p TierPrices) AnyNegative() bool {
	return p.VIP < 0 || p.VVIP < 0 || p.MIP < 0 || p.Celebrity < 0
}
