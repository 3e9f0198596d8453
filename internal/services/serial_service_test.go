package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
)

func TestNewSerialServiceNilDirectory(t *testing.T) {
	if _, err := NewSerialService(nil); err == nil {
		t.Fatalf("NewSerialService nil directory: expected error")
	}
}

func TestSerialServiceFormat(t *testing.T) {
	service, err := NewSerialService(&stubDirectory{})
	if err != nil {
		t.Fatalf("NewSerialService: %v", err)
	}

	serial, err := service.Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if len(serial) != 17 {
		t.Fatalf("serial length = %d, want 17: %q", len(serial), serial)
	}

	groups := strings.Split(serial, "-")
	if len(groups) != 3 {
		t.Fatalf("groups = %d, want 3: %q", len(groups), serial)
	}
	for _, group := range groups {
		if len(group) != 5 {
			t.Fatalf("group %q length = %d, want 5", group, len(group))
		}
		for _, r := range group {
			if !strings.ContainsRune(serialAlphabet, r) {
				t.Fatalf("serial %q contains %q outside the hex alphabet", serial, r)
			}
		}
	}
}

func TestSerialServiceDrawsAreDistinct(t *testing.T) {
	service, err := NewSerialService(&stubDirectory{})
	if err != nil {
		t.Fatalf("NewSerialService: %v", err)
	}

	seen := make(map[string]bool)
	for i := 0; i < 500; i++ {
		serial, err := service.Generate(context.Background())
		if err != nil {
			t.Fatalf("Generate %d: %v", i, err)
		}
		if seen[serial] {
			t.Fatalf("duplicate serial %q", serial)
		}
		seen[serial] = true
	}
}

func TestSerialServiceRedrawsOnCollision(t *testing.T) {
	directory := &stubDirectory{collisions: 3}
	service, err := NewSerialService(directory)
	if err != nil {
		t.Fatalf("NewSerialService: %v", err)
	}

	serial, err := service.Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if serial == "" {
		t.Fatalf("serial is empty")
	}
	if directory.calls != 4 {
		t.Fatalf("directory calls = %d, want 4 (3 collisions + 1 success)", directory.calls)
	}
}

func TestSerialServiceDirectoryError(t *testing.T) {
	directoryErr := errors.New("store unreachable")
	service, err := NewSerialService(&stubDirectory{err: directoryErr})
	if err != nil {
		t.Fatalf("NewSerialService: %v", err)
	}

	if _, err := service.Generate(context.Background()); !errors.Is(err, directoryErr) {
		t.Fatalf("Generate error = %v, want wrapped directory error", err)
	}
}

func TestSerialServiceConcurrentGenerate(t *testing.T) {
	service, err := NewSerialService(&stubDirectory{})
	if err != nil {
		t.Fatalf("NewSerialService: %v", err)
	}

	const workers = 8
	const perWorker = 25

	var mu sync.Mutex
	seen := make(map[string]bool)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				serial, err := service.Generate(context.Background())
				if err != nil {
					t.Errorf("Generate: %v", err)
					return
				}
				mu.Lock()
				if seen[serial] {
					t.Errorf("duplicate serial %q across goroutines", serial)
				}
				seen[serial] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(seen) != workers*perWorker {
		t.Fatalf("distinct serials = %d, want %d", len(seen), workers*perWorker)
	}
}
