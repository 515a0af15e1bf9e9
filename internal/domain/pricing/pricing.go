package pricing

import (
	"fmt"
	"sort"

	"photo_commerce/internal/domain/models"
)

// StandardLabel marks breakdown rows priced at the gallery default because
// no tier covered them.
const StandardLabel = "standard"

// BreakdownRow is one band of a quote: qty items at one unit price.
type BreakdownRow struct {
	Label          string `json:"label"`
	Qty            int    `json:"qty"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	SubtotalCents  int64  `json:"subtotal_cents"`
}

// Quote is the result of pricing a quantity against a tier schedule.
// FlatTotalCents is what the same quantity would cost at the default price;
// SavingsCents is the difference.
type Quote struct {
	Quantity       int            `json:"quantity"`
	TotalCents     int64          `json:"total_cents"`
	FlatTotalCents int64          `json:"flat_total_cents"`
	SavingsCents   int64          `json:"savings_cents"`
	Breakdown      []BreakdownRow `json:"breakdown"`
}

// Calculate prices quantity items using incremental bucket allocation: tiers
// are walked in ascending min-qty order, each consuming up to its capacity
// (max-min+1, or everything left for an unbounded tier). Any quantity not
// covered by a tier falls back to the default unit price as a "standard"
// row. Pure function, no side effects; safe to run on every selection
// change.
func Calculate(quantity int, tiers models.TierSchedule, defaultUnitCents int64) Quote {
	if quantity <= 0 {
		return Quote{}
	}

	flat := int64(quantity) * defaultUnitCents

	if len(tiers) == 0 {
		return Quote{
			Quantity:       quantity,
			TotalCents:     flat,
			FlatTotalCents: flat,
		}
	}

	sorted := make([]models.PricingTier, len(tiers))
	copy(sorted, tiers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].MinQty < sorted[j].MinQty
	})

	var (
		rows      []BreakdownRow
		total     int64
		remaining = quantity
	)

	for _, tier := range sorted {
		if remaining == 0 {
			break
		}

		take := remaining
		if tier.MaxQty != nil {
			capacity := *tier.MaxQty - tier.MinQty + 1
			if capacity < take {
				take = capacity
			}
		}
		if take <= 0 {
			continue
		}

		subtotal := int64(take) * tier.UnitPriceCents
		rows = append(rows, BreakdownRow{
			Label:          tierLabel(tier),
			Qty:            take,
			UnitPriceCents: tier.UnitPriceCents,
			SubtotalCents:  subtotal,
		})
		total += subtotal
		remaining -= take
	}

	// Gap in the schedule: price the remainder at the gallery default.
	if remaining > 0 {
		subtotal := int64(remaining) * defaultUnitCents
		rows = append(rows, BreakdownRow{
			Label:          StandardLabel,
			Qty:            remaining,
			UnitPriceCents: defaultUnitCents,
			SubtotalCents:  subtotal,
		})
		total += subtotal
	}

	savings := flat - total
	if savings < 0 {
		// Tiers priced above the default are tolerated, never shown as
		// negative savings.
		savings = 0
	}

	return Quote{
		Quantity:       quantity,
		TotalCents:     total,
		FlatTotalCents: flat,
		SavingsCents:   savings,
		Breakdown:      rows,
	}
}

func tierLabel(t models.PricingTier) string {
	if t.MaxQty == nil {
		return fmt.Sprintf("%d+", t.MinQty)
	}
	return fmt.Sprintf("%d-%d", t.MinQty, *t.MaxQty)
}
