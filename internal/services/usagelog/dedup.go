package usagelog

import (
	"slices"

	"github.com/j-veylop/burnrate-tui/internal/models"
)

// Dedup drops records whose (message id, request id) pair was already seen,
// keeping the earliest. Records missing either id are always kept. The
// result is ordered by timestamp; the input is not modified.
func Dedup(records []models.UsageRecord) []models.UsageRecord {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b models.UsageRecord) int {
		return a.Timestamp.Compare(b.Timestamp)
	})

	seen := make(map[string]struct{}, len(sorted))
	result := make([]models.UsageRecord, 0, len(sorted))
	for _, r := range sorted {
		key := r.DedupKey()
		if key == "" {
			result = append(result, r)
			continue
		}
		if _, exists := seen[key]; exists {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, r)
	}
	return result
}
