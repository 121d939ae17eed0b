package usagelog

import (
	"testing"
	"time"

	"github.com/j-veylop/burnrate-tui/internal/models"
)

func TestDedup(t *testing.T) {
	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	records := []models.UsageRecord{
		{Timestamp: base.Add(2 * time.Minute), MessageID: "m1", RequestID: "r1", InputTokens: 2},
		{Timestamp: base, MessageID: "m1", RequestID: "r1", InputTokens: 1},
		{Timestamp: base.Add(time.Minute), MessageID: "m2", RequestID: "r2", InputTokens: 3},
		{Timestamp: base.Add(3 * time.Minute), MessageID: "m3", InputTokens: 4},
		{Timestamp: base.Add(4 * time.Minute), MessageID: "m3", InputTokens: 5},
	}

	got := Dedup(records)
	if len(got) != 4 {
		t.Fatalf("got %d records, want 4", len(got))
	}
	if got[0].InputTokens != 1 {
		t.Errorf("kept duplicate = %d tokens, want the earliest (1)", got[0].InputTokens)
	}
	for i := 1; i < len(got); i++ {
		if got[i].Timestamp.Before(got[i-1].Timestamp) {
			t.Errorf("result not ordered at %d", i)
		}
	}
	if records[0].InputTokens != 2 {
		t.Error("Dedup modified its input")
	}
}

func TestDedup_Empty(t *testing.T) {
	if got := Dedup(nil); len(got) != 0 {
		t.Errorf("Dedup(nil) = %v", got)
	}
}
