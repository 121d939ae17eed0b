package db

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/j-veylop/burnrate-tui/internal/models"
)

var base = time.Date(2026, 3, 14, 9, 30, 15, 123456789, time.UTC)

func usage(offset time.Duration, msgID, reqID string, tokens int64) models.UsageRecord {
	return models.UsageRecord{
		Timestamp:        base.Add(offset),
		Category:         "claude-sonnet-4-5",
		InputTokens:      tokens,
		OutputTokens:     tokens * 2,
		CacheWriteTokens: 3,
		CacheReadTokens:  4,
		Cost:             decimal.RequireFromString("0.001234"),
		MessageID:        msgID,
		RequestID:        reqID,
	}
}

func TestInsertUsageRecords(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()
	ctx := context.Background()

	records := []models.UsageRecord{
		usage(0, "msg_1", "req_1", 10),
		usage(time.Minute, "msg_2", "req_2", 20),
	}
	n, err := db.InsertUsageRecords(ctx, records, "/logs/a.jsonl")
	if err != nil {
		t.Fatalf("InsertUsageRecords() failed: %v", err)
	}
	if n != 2 {
		t.Errorf("inserted = %d, want 2", n)
	}

	got, err := db.GetUsageRecordsSince(ctx, base.Add(-time.Hour))
	if err != nil {
		t.Fatalf("GetUsageRecordsSince() failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d records, want 2", len(got))
	}
	r := got[0]
	if !r.Timestamp.Equal(base) {
		t.Errorf("Timestamp = %v, want %v", r.Timestamp, base)
	}
	if r.Category != "claude-sonnet-4-5" || r.InputTokens != 10 || r.OutputTokens != 20 ||
		r.CacheWriteTokens != 3 || r.CacheReadTokens != 4 {
		t.Errorf("round trip mismatch: %+v", r)
	}
	if !r.Cost.Equal(decimal.RequireFromString("0.001234")) {
		t.Errorf("Cost = %s, want 0.001234", r.Cost)
	}
	if r.MessageID != "msg_1" || r.RequestID != "req_1" {
		t.Errorf("ids = %q/%q", r.MessageID, r.RequestID)
	}
}

func TestInsertUsageRecords_Dedup(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()
	ctx := context.Background()

	first := []models.UsageRecord{usage(0, "msg_1", "req_1", 10)}
	if _, err := db.InsertUsageRecords(ctx, first, "a"); err != nil {
		t.Fatalf("InsertUsageRecords() failed: %v", err)
	}

	again := []models.UsageRecord{
		usage(0, "msg_1", "req_1", 10),     // duplicate
		usage(time.Second, "msg_1", "", 5), // missing request id
		usage(time.Second, "msg_1", "", 5), // same, still kept
		usage(2*time.Second, "", "", 1),
	}
	n, err := db.InsertUsageRecords(ctx, again, "b")
	if err != nil {
		t.Fatalf("InsertUsageRecords() failed: %v", err)
	}
	if n != 3 {
		t.Errorf("inserted = %d, want 3", n)
	}

	count, err := db.CountUsageRecords(ctx)
	if err != nil {
		t.Fatalf("CountUsageRecords() failed: %v", err)
	}
	if count != 4 {
		t.Errorf("CountUsageRecords() = %d, want 4", count)
	}
}

func TestInsertUsageRecords_Empty(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	n, err := db.InsertUsageRecords(context.Background(), nil, "a")
	if err != nil || n != 0 {
		t.Errorf("InsertUsageRecords(nil) = (%d, %v), want (0, nil)", n, err)
	}
}

func TestGetUsageRecordsSince_FiltersAndOrders(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()
	ctx := context.Background()

	records := []models.UsageRecord{
		usage(3*time.Hour, "m3", "r3", 3),
		usage(-2*time.Hour, "m0", "r0", 0),
		usage(time.Hour, "m1", "r1", 1),
		usage(2*time.Hour, "m2", "r2", 2),
	}
	if _, err := db.InsertUsageRecords(ctx, records, "a"); err != nil {
		t.Fatalf("InsertUsageRecords() failed: %v", err)
	}

	got, err := db.GetUsageRecordsSince(ctx, base)
	if err != nil {
		t.Fatalf("GetUsageRecordsSince() failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d records, want 3", len(got))
	}
	for i, want := range []int64{1, 2, 3} {
		if got[i].InputTokens != want {
			t.Errorf("record %d InputTokens = %d, want %d", i, got[i].InputTokens, want)
		}
	}
}

func TestGetUsageRecordsSince_NonUTCInput(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()
	ctx := context.Background()

	tokyo := time.FixedZone("JST", 9*60*60)
	rec := usage(0, "m", "r", 1)
	rec.Timestamp = rec.Timestamp.In(tokyo)
	if _, err := db.InsertUsageRecords(ctx, []models.UsageRecord{rec}, "a"); err != nil {
		t.Fatalf("InsertUsageRecords() failed: %v", err)
	}

	got, err := db.GetUsageRecordsSince(ctx, base.Add(-time.Nanosecond).In(tokyo))
	if err != nil {
		t.Fatalf("GetUsageRecordsSince() failed: %v", err)
	}
	if len(got) != 1 || !got[0].Timestamp.Equal(base) {
		t.Errorf("got %+v, want one record at %v", got, base)
	}
}

func TestPruneUsageRecords(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()
	ctx := context.Background()

	records := []models.UsageRecord{
		usage(-48*time.Hour, "old", "r", 1),
		usage(0, "new", "r", 1),
	}
	if _, err := db.InsertUsageRecords(ctx, records, "a"); err != nil {
		t.Fatalf("InsertUsageRecords() failed: %v", err)
	}

	n, err := db.PruneUsageRecords(ctx, base.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("PruneUsageRecords() failed: %v", err)
	}
	if n != 1 {
		t.Errorf("pruned = %d, want 1", n)
	}
	if count, _ := db.CountUsageRecords(ctx); count != 1 {
		t.Errorf("remaining = %d, want 1", count)
	}
}

func TestFileOffsets(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()
	ctx := context.Background()

	fo, found, err := db.GetFileOffset(ctx, "/logs/a.jsonl")
	if err != nil {
		t.Fatalf("GetFileOffset() failed: %v", err)
	}
	if found || fo.Offset != 0 {
		t.Errorf("unknown file = (%+v, %v), want zero and not found", fo, found)
	}

	if err := db.SetFileOffset(ctx, "/logs/a.jsonl", 128, 256); err != nil {
		t.Fatalf("SetFileOffset() failed: %v", err)
	}
	if err := db.SetFileOffset(ctx, "/logs/a.jsonl", 256, 256); err != nil {
		t.Fatalf("SetFileOffset() update failed: %v", err)
	}
	if err := db.SetFileOffset(ctx, "/logs/b.jsonl", 10, 10); err != nil {
		t.Fatalf("SetFileOffset() failed: %v", err)
	}

	fo, found, err = db.GetFileOffset(ctx, "/logs/a.jsonl")
	if err != nil || !found {
		t.Fatalf("GetFileOffset() = (%v, %v)", found, err)
	}
	if fo.Offset != 256 || fo.Size != 256 {
		t.Errorf("offset = %d/%d, want 256/256", fo.Offset, fo.Size)
	}
	if fo.UpdatedAt.IsZero() {
		t.Error("UpdatedAt not set")
	}

	all, err := db.ListFileOffsets(ctx)
	if err != nil {
		t.Fatalf("ListFileOffsets() failed: %v", err)
	}
	if len(all) != 2 || all[0].Path != "/logs/a.jsonl" {
		t.Errorf("ListFileOffsets() = %+v", all)
	}
}

func TestSettings(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()
	ctx := context.Background()

	if _, found, err := db.GetSetting(ctx, SettingPlan); err != nil || found {
		t.Errorf("GetSetting() unset = (%v, %v), want not found", found, err)
	}

	if err := db.SetSetting(ctx, SettingPlan, "pro"); err != nil {
		t.Fatalf("SetSetting() failed: %v", err)
	}
	if err := db.SetSetting(ctx, SettingPlan, "auto"); err != nil {
		t.Fatalf("SetSetting() overwrite failed: %v", err)
	}

	got, found, err := db.GetSetting(ctx, SettingPlan)
	if err != nil || !found || got != "auto" {
		t.Errorf("GetSetting() = (%q, %v, %v), want auto", got, found, err)
	}
}

func TestNullString(t *testing.T) {
	if nullString("").Valid {
		t.Error("nullString(\"\") should be invalid")
	}
	if ns := nullString("x"); !ns.Valid || ns.String != "x" {
		t.Errorf("nullString(\"x\") = %+v", ns)
	}
}
