package models

// CategoryInfo describes a known usage category (a model family).
// Tier is higher for more capable families and only matters for
// tie-breaking and presentation.
type CategoryInfo struct {
	ID          string
	DisplayName string
	ShortName   string
	Color       string
	Tier        int
}

// CategoryBreakdown is the share of a session consumed by one category.
type CategoryBreakdown struct {
	Category   string
	Info       CategoryInfo
	TokenCount int64
	Percentage float64
}
