package services

import (
	"context"
	"testing"
	"time"

	"PrintStation/app/models"
)

func TestRetentionPrunesOldEntriesOnStart(t *testing.T) {
	store := newTestStore(t)
	for _, ids := range []string{"velho", "novo"} {
		if err := store.AppendPrintLog(&models.PrintLogEntry{
			OrderIDs: ids, Origin: "poll", Outcome: "printed",
		}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	old := time.Now().UTC().AddDate(0, 0, -30)
	store.DB().Model(&models.PrintLogEntry{}).
		Where("order_ids = ?", "velho").Update("created_at", old)

	svc := NewRetentionService(store, newTestLogger(t), 7)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Run(ctx)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		entries, err := store.RecentPrintLog(10)
		if err != nil {
			t.Fatalf("recent: %v", err)
		}
		if len(entries) == 1 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-done

	entries, _ := store.RecentPrintLog(10)
	if len(entries) != 1 || entries[0].OrderIDs != "novo" {
		t.Errorf("entries after retention pass = %+v, want only the fresh one", entries)
	}
}

func TestRetentionDefaultsKeepDays(t *testing.T) {
	svc := NewRetentionService(newTestStore(t), newTestLogger(t), 0)
	if svc.keepDays != 7 {
		t.Errorf("keepDays = %d, want default 7", svc.keepDays)
	}
}
