package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"
)

const (
	serialAlphabet  = "0123456789ABCDEF"
	serialRawLength = 15
	serialGroupSize = 5
	serialSeparator = "-"

	maxDrawAttempts = 100
)

// SerialService draws serial codes: 15 uppercase hex characters shown in
// three 5-character groups. A candidate is checked against every code ever
// issued and redrawn on collision, so uniqueness holds across batches and
// not just per draw. Check-then-reserve runs under the mutex so concurrent
// ingestions cannot race the same candidate.
type SerialService struct {
	directory CodeDirectory

	mu       sync.Mutex
	rng      *rand.Rand
	reserved map[string]struct{}
}

func NewSerialService(directory CodeDirectory) (*SerialService, error) {
	if directory == nil {
		return nil, errors.New("code directory is nil")
	}

	return &SerialService{
		directory: directory,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		reserved:  make(map[string]struct{}),
	}, nil
}

func (s *SerialService) Generate(ctx context.Context) (string, error) {
	if s == nil {
		return "", errors.New("serial service is nil")
	}
	if s.directory == nil {
		return "", errors.New("code directory is nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for attempt := 0; attempt < maxDrawAttempts; attempt++ {
		candidate := s.draw()
		if _, taken := s.reserved[candidate]; taken {
			continue
		}

		exists, err := s.directory.SerialExists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("check serial uniqueness: %w", err)
		}
		if exists {
			continue
		}

		s.reserved[candidate] = struct{}{}
		return candidate, nil
	}

	return "", fmt.Errorf("no unique serial after %d draws", maxDrawAttempts)
}

func (s *SerialService) draw() string {
	var b strings.Builder
	for i := 0; i < serialRawLength; i++ {
		if i > 0 && i%serialGroupSize == 0 {
			b.WriteString(serialSeparator)
		}
		b.WriteByte(serialAlphabet[s.rng.Intn(len(serialAlphabet))])
	}
	return b.String()
}
