package state

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestLockerSerializesOneSession(t *testing.T) {
	t.Parallel()

	l := NewLocker()
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inside  int
		maxSeen int
		counter int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := l.Lock(context.Background(), "s-1")
			if err != nil {
				t.Errorf("Lock() error = %v", err)
				return
			}
			mu.Lock()
			inside++
			maxSeen = max(maxSeen, inside)
			mu.Unlock()

			counter++
			time.Sleep(time.Millisecond)

			mu.Lock()
			inside--
			mu.Unlock()
			unlock()
		}()
	}
	wg.Wait()

	if maxSeen != 1 {
		t.Fatalf("%d holders at once, want 1", maxSeen)
	}
	if counter != 20 {
		t.Fatalf("counter = %d, want 20", counter)
	}
	if l.Active() != 0 {
		t.Fatalf("Active() = %d after all releases, want 0", l.Active())
	}
}

func TestLockerIndependentSessions(t *testing.T) {
	t.Parallel()

	l := NewLocker()
	unlockA, err := l.Lock(context.Background(), "a")
	if err != nil {
		t.Fatalf("Lock(a) error = %v", err)
	}
	defer unlockA()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	unlockB, err := l.Lock(ctx, "b")
	if err != nil {
		t.Fatalf("Lock(b) should not wait for a: %v", err)
	}
	if l.Active() != 2 {
		t.Fatalf("Active() = %d, want 2", l.Active())
	}
	unlockB()
}

func TestLockerHonorsContext(t *testing.T) {
	t.Parallel()

	l := NewLocker()
	unlock, err := l.Lock(context.Background(), "s")
	if err != nil {
		t.Fatalf("Lock() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := l.Lock(ctx, "s"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Lock() error = %v, want deadline exceeded", err)
	}

	unlock()
	if l.Active() != 0 {
		t.Fatalf("Active() = %d, want 0", l.Active())
	}
}
