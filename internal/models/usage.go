package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// UsageRecord is a single logged unit of consumption, one per assistant
// response in the usage logs.
type UsageRecord struct {
	Timestamp        time.Time
	Category         string // raw model identifier, may be empty
	InputTokens      int64
	OutputTokens     int64
	CacheWriteTokens int64
	CacheReadTokens  int64
	Cost             decimal.Decimal
	MessageID        string
	RequestID        string
}

// TotalTokens returns the sum of all token counters on the record.
func (r UsageRecord) TotalTokens() int64 {
	return r.InputTokens + r.OutputTokens + r.CacheWriteTokens + r.CacheReadTokens
}

// DedupKey returns the logical identity of the record.
// Records missing either id have no identity and are never deduplicated.
func (r UsageRecord) DedupKey() string {
	if r.MessageID == "" || r.RequestID == "" {
		return ""
	}
	return r.MessageID + ":" + r.RequestID
}
