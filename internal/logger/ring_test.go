package logger

import (
	"fmt"
	"sync"
	"testing"
)

func TestRingKeepsNewestLines(t *testing.T) {
	ring := NewRing(4)

	for i := 1; i <= 6; i++ {
		if _, err := ring.Write([]byte(fmt.Sprintf("line-%d\n", i))); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}

	lines := ring.Lines(0)
	if len(lines) != 4 {
		t.Fatalf("Expected 4 retained lines, got %d: %v", len(lines), lines)
	}
	want := []string{"line-3", "line-4", "line-5", "line-6"}
	for i, line := range lines {
		if line != want[i] {
			t.Errorf("Line %d: expected %q, got %q", i, want[i], line)
		}
	}
	if ring.Total() != 6 {
		t.Errorf("Expected total 6, got %d", ring.Total())
	}
}

func TestRingBeforeWrap(t *testing.T) {
	ring := NewRing(8)

	ring.Write([]byte("first\n"))
	ring.Write([]byte("second\n"))

	lines := ring.Lines(0)
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d", len(lines))
	}
	if lines[0] != "first" || lines[1] != "second" {
		t.Errorf("Unexpected order: %v", lines)
	}
}

func TestRingLimit(t *testing.T) {
	ring := NewRing(8)
	for i := 1; i <= 5; i++ {
		ring.Write([]byte(fmt.Sprintf("line-%d\n", i)))
	}

	lines := ring.Lines(2)
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines with limit, got %d", len(lines))
	}
	if lines[0] != "line-4" || lines[1] != "line-5" {
		t.Errorf("Limit must keep the newest lines, got %v", lines)
	}
}

func TestRingMultiLineWrite(t *testing.T) {
	ring := NewRing(8)
	ring.Write([]byte("one\ntwo\nthree\n"))

	lines := ring.Lines(0)
	if len(lines) != 3 {
		t.Fatalf("Expected 3 lines from one write, got %d: %v", len(lines), lines)
	}
}

func TestRingConcurrentAccess(t *testing.T) {
	ring := NewRing(64)

	var wg sync.WaitGroup
	numGoroutines := 10
	linesPerGoroutine := 100

	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func(id int) {
			defer wg.Done()
			for j := 0; j < linesPerGoroutine; j++ {
				ring.Write([]byte(fmt.Sprintf("goroutine-%d-line-%d\n", id, j)))
				ring.Lines(10)
			}
		}(i)
	}
	wg.Wait()

	if ring.Total() != uint64(numGoroutines*linesPerGoroutine) {
		t.Errorf("Expected %d total lines, got %d", numGoroutines*linesPerGoroutine, ring.Total())
	}
	if len(ring.Lines(0)) != 64 {
		t.Errorf("Expected full ring of 64 lines, got %d", len(ring.Lines(0)))
	}
}
