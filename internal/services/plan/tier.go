// Package plan resolves a plan selector to the token budget of a session.
package plan

import (
	"fmt"
	"slices"

	"github.com/j-veylop/burnrate-tui/internal/models"
)

// Tier is one fixed budget.
type Tier struct {
	Plan  models.Plan
	Limit int64
}

// Table is the set of fixed tiers, ordered ascending by limit.
type Table struct {
	Tiers []Tier
}

// Default budgets per 5-hour window.
const (
	DefaultProLimit   int64 = 44_000
	DefaultMax5Limit  int64 = 220_000
	DefaultMax20Limit int64 = 880_000
)

// DefaultTable returns the built-in tier table.
func DefaultTable() Table {
	return Table{Tiers: []Tier{
		{Plan: models.PlanPro, Limit: DefaultProLimit},
		{Plan: models.PlanMax5, Limit: DefaultMax5Limit},
		{Plan: models.PlanMax20, Limit: DefaultMax20Limit},
	}}
}

// NewTable builds a table from arbitrary tiers. Tiers are sorted by limit and
// every fixed plan must appear exactly once with a positive limit.
func NewTable(tiers []Tier) (Table, error) {
	seen := make(map[models.Plan]bool, len(tiers))
	for _, t := range tiers {
		if t.Plan == models.PlanAuto {
			return Table{}, fmt.Errorf("plan %q cannot have a fixed limit", t.Plan)
		}
		if _, err := models.ParsePlan(string(t.Plan)); err != nil {
			return Table{}, err
		}
		if t.Limit <= 0 {
			return Table{}, fmt.Errorf("plan %q: limit must be positive, got %d", t.Plan, t.Limit)
		}
		if seen[t.Plan] {
			return Table{}, fmt.Errorf("plan %q listed more than once", t.Plan)
		}
		seen[t.Plan] = true
	}
	if len(tiers) == 0 {
		return Table{}, fmt.Errorf("tier table is empty")
	}

	sorted := slices.Clone(tiers)
	slices.SortStableFunc(sorted, func(a, b Tier) int {
		switch {
		case a.Limit < b.Limit:
			return -1
		case a.Limit > b.Limit:
			return 1
		default:
			return 0
		}
	})
	return Table{Tiers: sorted}, nil
}

// Limit returns the fixed limit of a plan.
func (t Table) Limit(p models.Plan) (int64, bool) {
	for _, tier := range t.Tiers {
		if tier.Plan == p {
			return tier.Limit, true
		}
	}
	return 0, false
}

// Resolve returns the token budget for sel. Fixed plans ignore history.
// Auto (and any plan missing from the table) picks the smallest tier whose
// limit covers the largest session seen, or the largest tier when usage has
// exceeded them all. Empty history yields the smallest tier.
func (t Table) Resolve(sel models.Plan, history []models.Session) int64 {
	if len(t.Tiers) == 0 {
		return 0
	}
	if sel != models.PlanAuto {
		if limit, ok := t.Limit(sel); ok {
			return limit
		}
	}

	var peak int64
	for _, s := range history {
		peak = max(peak, s.TokenCount)
	}

	for _, tier := range t.Tiers {
		if tier.Limit >= peak {
			return tier.Limit
		}
	}
	return t.Tiers[len(t.Tiers)-1].Limit
}

// Detect returns the fixed plan auto-detection settles on for history.
func (t Table) Detect(history []models.Session) models.Plan {
	limit := t.Resolve(models.PlanAuto, history)
	for _, tier := range t.Tiers {
		if tier.Limit == limit {
			return tier.Plan
		}
	}
	return models.PlanAuto
}

// Resolve resolves sel against the default table.
func Resolve(sel models.Plan, history []models.Session) int64 {
	return DefaultTable().Resolve(sel, history)
}
