package infractions

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/anurag-krmkr/Parrot/pkg/database"
)

func newTestLedger() *Ledger {
	return NewLedger(database.NewMemoryStore())
}

func TestAddAssignsSequentialIDs(t *testing.T) {
	ledger := newTestLedger()
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		record, err := ledger.Add(ctx, "guild-1", "user-1", "mod-1", "spam", "chan-1", "msg-1", time.Now())
		if err != nil {
			t.Fatalf("Add() returned error: %v", err)
		}
		if record.WarnID != int64(i) {
			t.Errorf("WarnID = %d, want %d", record.WarnID, i)
		}
	}

	// Another guild starts its own sequence
	record, err := ledger.Add(ctx, "guild-2", "user-1", "mod-1", "spam", "", "", time.Now())
	if err != nil {
		t.Fatalf("Add() returned error: %v", err)
	}
	if record.WarnID != 1 {
		t.Errorf("WarnID for new guild = %d, want 1", record.WarnID)
	}
}

func TestAddConcurrentDistinctIDs(t *testing.T) {
	ledger := newTestLedger()
	ctx := context.Background()

	const n = 50
	var wg sync.WaitGroup
	ids := make(chan int64, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			record, err := ledger.Add(ctx, "guild-1", "user-1", "mod-1", "spam", "", "", time.Now())
			if err != nil {
				t.Errorf("Add() returned error: %v", err)
				return
			}
			ids <- record.WarnID
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]bool)
	for id := range ids {
		if seen[id] {
			t.Fatalf("duplicate warn id %d", id)
		}
		seen[id] = true
	}
	if len(seen) != n {
		t.Errorf("got %d distinct ids, want %d", len(seen), n)
	}
}

func TestDelete(t *testing.T) {
	ledger := newTestLedger()
	ctx := context.Background()

	record, _ := ledger.Add(ctx, "guild-1", "user-1", "mod-1", "spam", "", "", time.Now())

	removed, err := ledger.Delete(ctx, "guild-1", record.WarnID)
	if err != nil {
		t.Fatalf("Delete() returned error: %v", err)
	}
	if !removed {
		t.Error("Delete() = false, want true for existing record")
	}

	removed, err = ledger.Delete(ctx, "guild-1", record.WarnID)
	if err != nil {
		t.Fatalf("Delete() returned error: %v", err)
	}
	if removed {
		t.Error("Delete() = true, want false for missing record")
	}
}

func TestDeleteMatchingByTarget(t *testing.T) {
	ledger := newTestLedger()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ledger.Add(ctx, "guild-1", "user-1", "mod-1", "spam", "", "", time.Now())
	}
	ledger.Add(ctx, "guild-1", "user-2", "mod-1", "spam", "", "", time.Now())

	removed, err := ledger.DeleteMatching(ctx, "guild-1", Filter{TargetID: "user-1"})
	if err != nil {
		t.Fatalf("DeleteMatching() returned error: %v", err)
	}
	if removed != 3 {
		t.Errorf("DeleteMatching() removed = %d, want 3", removed)
	}

	count, err := ledger.Count(ctx, "guild-1", "user-1")
	if err != nil {
		t.Fatalf("Count() returned error: %v", err)
	}
	if count != 0 {
		t.Errorf("Count() after deletion = %d, want 0", count)
	}

	// Other targets unaffected
	count, _ = ledger.Count(ctx, "guild-1", "user-2")
	if count != 1 {
		t.Errorf("Count() for other target = %d, want 1", count)
	}
}

func TestDeleteMatchingANDsFilterFields(t *testing.T) {
	ledger := newTestLedger()
	ctx := context.Background()

	ledger.Add(ctx, "guild-1", "user-1", "mod-1", "spam", "", "", time.Now())
	ledger.Add(ctx, "guild-1", "user-1", "mod-2", "flood", "", "", time.Now())

	removed, err := ledger.DeleteMatching(ctx, "guild-1", Filter{TargetID: "user-1", ModeratorID: "mod-2"})
	if err != nil {
		t.Fatalf("DeleteMatching() returned error: %v", err)
	}
	if removed != 1 {
		t.Errorf("DeleteMatching() removed = %d, want 1", removed)
	}
}

func TestListChronologicalOrder(t *testing.T) {
	ledger := newTestLedger()
	ctx := context.Background()

	reasons := []string{"first", "second", "third"}
	for _, r := range reasons {
		ledger.Add(ctx, "guild-1", "user-1", "mod-1", r, "", "", time.Now())
	}

	records, err := ledger.List(ctx, "guild-1", Filter{})
	if err != nil {
		t.Fatalf("List() returned error: %v", err)
	}
	if len(records) != len(reasons) {
		t.Fatalf("List() returned %d records, want %d", len(records), len(reasons))
	}
	for i, r := range reasons {
		if records[i].Reason != r {
			t.Errorf("records[%d].Reason = %q, want %q", i, records[i].Reason, r)
		}
	}
}

func TestAddFailsClosedWhenStoreUnavailable(t *testing.T) {
	store := database.NewMemoryStore()
	store.SetFailing(true)
	ledger := NewLedger(store)

	_, err := ledger.Add(context.Background(), "guild-1", "user-1", "mod-1", "spam", "", "", time.Now())
	if err == nil {
		t.Fatal("Add() should fail when the store is unavailable")
	}
}

func TestPurgeResetsSequence(t *testing.T) {
	ledger := newTestLedger()
	ctx := context.Background()

	ledger.Add(ctx, "guild-1", "user-1", "mod-1", "spam", "", "", time.Now())
	ledger.Add(ctx, "guild-1", "user-1", "mod-1", "spam", "", "", time.Now())

	if err := ledger.Purge(ctx, "guild-1"); err != nil {
		t.Fatalf("Purge() returned error: %v", err)
	}

	record, err := ledger.Add(ctx, "guild-1", "user-1", "mod-1", "spam", "", "", time.Now())
	if err != nil {
		t.Fatalf("Add() returned error: %v", err)
	}
	if record.WarnID != 1 {
		t.Errorf("WarnID after purge = %d, want 1", record.WarnID)
	}
}
