// Package category maps free-form model identifiers to known model families.
package category

import (
	"strings"

	"github.com/j-veylop/burnrate-tui/internal/models"
)

// Family IDs for the known categories.
const (
	Opus    = "opus"
	Sonnet  = "sonnet"
	Haiku   = "haiku"
	Unknown = models.UnknownCategory
)

type pattern struct {
	substring string
	info      models.CategoryInfo
}

// patterns is checked in order; the first substring contained in the
// normalized identifier wins. Identifiers carry version and date suffixes
// (claude-opus-4-1-20250805), so matching is by containment.
var patterns = []pattern{
	{
		substring: "opus",
		info: models.CategoryInfo{
			ID: Opus, DisplayName: "Claude Opus", ShortName: "Opus", Color: "#cc785c", Tier: 3,
		},
	},
	{
		substring: "sonnet",
		info: models.CategoryInfo{
			ID: Sonnet, DisplayName: "Claude Sonnet", ShortName: "Sonnet", Color: "#6c5ce7", Tier: 2,
		},
	},
	{
		substring: "haiku",
		info: models.CategoryInfo{
			ID: Haiku, DisplayName: "Claude Haiku", ShortName: "Haiku", Color: "#51cf66", Tier: 1,
		},
	},
}

var unknownInfo = models.CategoryInfo{
	ID:          Unknown,
	DisplayName: "Unknown",
	ShortName:   "Other",
	Color:       "#9b9b9b",
	Tier:        0,
}

// Classify resolves a raw identifier to its category. Anything that does not
// match a known family, including the empty string, is Unknown.
func Classify(raw string) models.CategoryInfo {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if normalized == "" {
		return unknownInfo
	}
	for _, p := range patterns {
		if strings.Contains(normalized, p.substring) {
			return p.info
		}
	}
	return unknownInfo
}

// Known returns the known categories in priority order, followed by Unknown.
func Known() []models.CategoryInfo {
	out := make([]models.CategoryInfo, 0, len(patterns)+1)
	for _, p := range patterns {
		out = append(out, p.info)
	}
	return append(out, unknownInfo)
}
