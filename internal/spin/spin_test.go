package spin

import (
	"sync"
	"testing"
)

func TestLockMutualExclusion(t *testing.T) {
	var (
		l     Lock
		wg    sync.WaitGroup
		count int
	)
	const goroutines, iterations = 8, 1000
	wg.Add(goroutines)
	for range goroutines {
		go func() {
			defer wg.Done()
			for range iterations {
				l.Lock()
				count++
				l.Unlock()
			}
		}()
	}
	wg.Wait()
	if count != goroutines*iterations {
		t.Errorf("count = %d, want %d", count, goroutines*iterations)
	}
}

func TestTryLock(t *testing.T) {
	var l Lock
	if !l.TryLock() {
		t.Fatal("TryLock on free lock failed")
	}
	if l.TryLock() {
		t.Fatal("TryLock on held lock succeeded")
	}
	l.Unlock()
	if !l.TryLock() {
		t.Fatal("TryLock after Unlock failed")
	}
}
