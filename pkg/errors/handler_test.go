package errors

import (
	"sync"
	"sync/atomic"
	"testing"
)

// TestInitReturnsOneInstance verifies the singleton holds under concurrent
// initialization.
func TestInitReturnsOneInstance(t *testing.T) {
	const callers = 8
	instances := make([]*ErrorHandler, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			instances[i] = Init("", nil)
		}(i)
	}
	wg.Wait()

	for i := 1; i < callers; i++ {
		if instances[i] != instances[0] {
			t.Fatalf("Init returned distinct instances at %d", i)
		}
	}
	if Get() != instances[0] {
		t.Error("Get should return the initialized instance")
	}
}

func TestIncrementError(t *testing.T) {
	h := NewErrorHandler("", nil)
	defer h.Stop()

	h.IncrementError()
	h.IncrementError()
	if got := atomic.LoadInt32(&h.errorCount); got != 2 {
		t.Errorf("errorCount = %d, want 2", got)
	}
}
