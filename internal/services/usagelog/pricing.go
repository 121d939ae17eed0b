package usagelog

import (
	"github.com/shopspring/decimal"

	"github.com/j-veylop/burnrate-tui/internal/models"
	"github.com/j-veylop/burnrate-tui/internal/services/category"
)

// Price is the USD cost per million tokens of each token kind.
type Price struct {
	Input      decimal.Decimal
	Output     decimal.Decimal
	CacheWrite decimal.Decimal
	CacheRead  decimal.Decimal
}

// Pricing maps a category ID to its price.
type Pricing map[string]Price

var million = decimal.NewFromInt(1_000_000)

func price(input, output, cacheWrite, cacheRead string) Price {
	return Price{
		Input:      decimal.RequireFromString(input),
		Output:     decimal.RequireFromString(output),
		CacheWrite: decimal.RequireFromString(cacheWrite),
		CacheRead:  decimal.RequireFromString(cacheRead),
	}
}

// DefaultPricing returns list prices for the known model families.
func DefaultPricing() Pricing {
	return Pricing{
		category.Opus:   price("15", "75", "18.75", "1.50"),
		category.Sonnet: price("3", "15", "3.75", "0.30"),
		category.Haiku:  price("0.80", "4", "1", "0.08"),
	}
}

// Cost prices a record by its category. Unknown categories cost nothing.
func (p Pricing) Cost(r models.UsageRecord) decimal.Decimal {
	pr, ok := p[category.Classify(r.Category).ID]
	if !ok {
		return decimal.Zero
	}
	total := pr.Input.Mul(decimal.NewFromInt(r.InputTokens)).
		Add(pr.Output.Mul(decimal.NewFromInt(r.OutputTokens))).
		Add(pr.CacheWrite.Mul(decimal.NewFromInt(r.CacheWriteTokens))).
		Add(pr.CacheRead.Mul(decimal.NewFromInt(r.CacheReadTokens)))
	return total.Div(million)
}
