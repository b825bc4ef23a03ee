package services

import (
	"fmt"
	"strings"
	"sync"
	"testing"
)

func TestLoggerRecentNewestFirstAndCapped(t *testing.T) {
	logger := NewLoggerService(t.TempDir())
	defer logger.Close()

	for i := 0; i < recentLines+20; i++ {
		logger.LogInfo("linha %d", i)
	}

	recent := logger.Recent()
	if len(recent) != recentLines {
		t.Fatalf("ring holds %d lines, want %d", len(recent), recentLines)
	}
	if !strings.Contains(recent[0], fmt.Sprintf("linha %d", recentLines+19)) {
		t.Errorf("newest line = %q", recent[0])
	}
	if !strings.Contains(recent[0], "[INFO]") {
		t.Errorf("level tag missing: %q", recent[0])
	}
}

func TestLoggerConcurrentWriters(t *testing.T) {
	logger := NewLoggerService(t.TempDir())
	defer logger.Close()

	// drain, poller and socket goroutines all log at once; this must
	// not race on the file state or the ring
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				logger.LogInfo("goroutine %d linha %d", g, i)
				logger.Recent()
			}
		}(g)
	}
	wg.Wait()

	if len(logger.Recent()) != recentLines {
		t.Errorf("ring holds %d lines, want %d", len(logger.Recent()), recentLines)
	}
}
