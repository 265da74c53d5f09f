package quota

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestLocalRecordAndUsed(t *testing.T) {
	ctx := context.Background()
	c := NewLocal(0, 0)
	defer c.Close(ctx)

	day := Day(time.Now())
	if n, err := c.Used(ctx, day); n != 0 || err != nil {
		t.Fatalf("Used before Record: n=%d err=%v", n, err)
	}

	for want := uint64(1); want <= 3; want++ {
		n, err := c.Record(ctx, day)
		if err != nil || n != want {
			t.Fatalf("Record #%d: n=%d err=%v", want, n, err)
		}
	}
	if n, _ := c.Used(ctx, day); n != 3 {
		t.Fatalf("Used: %d", n)
	}

	// days are independent
	if n, _ := c.Used(ctx, "1999-12-31"); n != 0 {
		t.Fatalf("foreign day reported %d", n)
	}
}

func TestLocalConcurrentRecord(t *testing.T) {
	ctx := context.Background()
	c := NewLocal(0, 0)
	defer c.Close(ctx)

	const workers, perWorker = 8, 50
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				if _, err := c.Record(ctx, "2026-08-30"); err != nil {
					t.Errorf("Record: %v", err)
				}
			}
		}()
	}
	wg.Wait()

	if n, _ := c.Used(ctx, "2026-08-30"); n != workers*perWorker {
		t.Fatalf("lost updates: %d", n)
	}
}

func TestLocalCleanupPrunesStaleDays(t *testing.T) {
	ctx := context.Background()
	c := NewLocal(0, 0)
	defer c.Close(ctx)

	if _, err := c.Record(ctx, "2026-08-29"); err != nil {
		t.Fatalf("Record: %v", err)
	}
	time.Sleep(30 * time.Millisecond)
	if _, err := c.Record(ctx, "2026-08-30"); err != nil {
		t.Fatalf("Record: %v", err)
	}

	c.Cleanup(20 * time.Millisecond)

	if n, _ := c.Used(ctx, "2026-08-29"); n != 0 {
		t.Fatalf("stale day survived cleanup: %d", n)
	}
	if n, _ := c.Used(ctx, "2026-08-30"); n != 1 {
		t.Fatalf("fresh day pruned: %d", n)
	}
}

func TestLocalCloseStopsJanitor(t *testing.T) {
	c := NewLocal(5*time.Millisecond, time.Hour)
	if err := c.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
	// double close must not panic on the stopped ticker path
	if err := c.Close(context.Background()); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestDayFormat(t *testing.T) {
	ts := time.Date(2026, 8, 30, 23, 59, 0, 0, time.FixedZone("west", -7*3600))
	if d := Day(ts); d != "2026-08-31" {
		// 23:59 at UTC-7 is already the next day in UTC
		t.Fatalf("Day: %q", d)
	}
}
