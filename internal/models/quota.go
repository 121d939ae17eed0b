package models

import (
	"fmt"
	"strings"
)

// Plan selects the token budget a session is measured against.
type Plan string

const (
	// PlanPro is the entry subscription tier.
	PlanPro Plan = "pro"
	// PlanMax5 is the 5x tier.
	PlanMax5 Plan = "max5"
	// PlanMax20 is the 20x tier.
	PlanMax20 Plan = "max20"
	// PlanAuto infers the budget from the largest observed session.
	PlanAuto Plan = "auto"
)

var planOrder = []Plan{PlanPro, PlanMax5, PlanMax20, PlanAuto}

// Plans returns every selectable plan in display order.
func Plans() []Plan {
	out := make([]Plan, len(planOrder))
	copy(out, planOrder)
	return out
}

// String returns the display name for a plan.
func (p Plan) String() string {
	switch p {
	case PlanPro:
		return "Pro"
	case PlanMax5:
		return "Max 5x"
	case PlanMax20:
		return "Max 20x"
	case PlanAuto:
		return "Auto-detect"
	default:
		return "Unknown"
	}
}

// Next cycles to the next plan.
func (p Plan) Next() Plan {
	for i, candidate := range planOrder {
		if candidate == p {
			return planOrder[(i+1)%len(planOrder)]
		}
	}
	return PlanPro
}

// ParsePlan parses a plan name. Matching ignores case and surrounding space.
func ParsePlan(s string) (Plan, error) {
	p := Plan(strings.ToLower(strings.TrimSpace(s)))
	for _, candidate := range planOrder {
		if candidate == p {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown plan %q (want one of pro, max5, max20, auto)", s)
}
