package repository

import (
	"os"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// NextID computes the next assigned identifier for a record list:
// max(existing)+1, or 1 for an empty list.
func NextID(ids []int) int {
	max := 0
	for _, id := range ids {
		if id > max {
			max = id
		}
	}
	return max + 1
}

// Sequence is a persisted high-water mark for one collection's assigned ids.
// Without it, deleting the max-id record would let the allocator hand the
// same id out again. The mark only ever grows.
type Sequence struct {
	path   string
	logger *zap.Logger

	mu sync.Mutex
}

// NewSequence returns a sequence backed by the given sidecar file.
func NewSequence(path string, logger *zap.Logger) *Sequence {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sequence{path: path, logger: logger}
}

// Next returns the next id given the current in-collection maximum and
// advances the persisted mark. A missing or unreadable sidecar falls back
// to currentMax so allocation never blocks a create.
func (s *Sequence) Next(currentMax int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	high := currentMax
	if persisted, ok := s.load(); ok && persisted > high {
		high = persisted
	}
	next := high + 1
	s.store(next)
	return next
}

func (s *Sequence) load() (int, bool) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("sequence file unreadable", zap.String("path", s.path), zap.Error(err))
		}
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		s.logger.Warn("sequence file corrupt", zap.String("path", s.path), zap.Error(err))
		return 0, false
	}
	return n, true
}

func (s *Sequence) store(n int) {
	if err := os.WriteFile(s.path, []byte(strconv.Itoa(n)), 0o644); err != nil {
		s.logger.Warn("failed to persist sequence", zap.String("path", s.path), zap.Error(err))
	}
}
