package stores

import (
	"context"
	"sync"
	"time"
)

type memoryFlowEntry struct {
	record   *FlowRecord
	deadline time.Time
}

// MemoryFlowStore keeps flow records in process memory. It is the default
// store for single-instance deployments and for tests.
type MemoryFlowStore struct {
	mu      sync.Mutex
	entries map[string]memoryFlowEntry
}

func NewMemoryFlowStore() *MemoryFlowStore {
	return &MemoryFlowStore{
		entries: make(map[string]memoryFlowEntry),
	}
}

func (s *MemoryFlowStore) Load(ctx context.Context, flowID string) (*FlowRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.live(flowID)
	if !ok {
		return nil, ErrFlowNotFound
	}
	return cloneFlowRecord(entry.record), nil
}

func (s *MemoryFlowStore) Save(ctx context.Context, flowID string, record *FlowRecord, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[flowID] = memoryFlowEntry{
		record:   cloneFlowRecord(record),
		deadline: time.Now().Add(ttl),
	}
	return nil
}

func (s *MemoryFlowStore) BeginAttempt(ctx context.Context, flowID string, expectedStep, transitionStep uint8, ttl time.Duration) (*FlowRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.live(flowID)
	if !ok {
		return nil, ErrFlowNotFound
	}
	if entry.record.Step != expectedStep {
		return nil, ErrFlowSuperseded
	}
	if entry.record.InFlight {
		return nil, ErrFlowBusy
	}

	entry.record.Step = transitionStep
	entry.record.InFlight = true
	entry.record.Attempt++
	entry.record.UpdatedAt = time.Now().Unix()
	entry.deadline = time.Now().Add(ttl)
	s.entries[flowID] = entry

	return cloneFlowRecord(entry.record), nil
}

func (s *MemoryFlowStore) CompleteAttempt(ctx context.Context, flowID string, attempt uint32, next *FlowRecord, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.live(flowID)
	if !ok {
		return ErrFlowNotFound
	}
	if entry.record.Attempt != attempt || !entry.record.InFlight {
		return ErrFlowSuperseded
	}

	applied := cloneFlowRecord(next)
	applied.Attempt = attempt
	applied.InFlight = false
	applied.UpdatedAt = time.Now().Unix()

	s.entries[flowID] = memoryFlowEntry{
		record:   applied,
		deadline: time.Now().Add(ttl),
	}
	return nil
}

func (s *MemoryFlowStore) Delete(ctx context.Context, flowID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, flowID)
	return nil
}

// live returns the entry for flowID, expiring it lazily. Caller holds the lock.
func (s *MemoryFlowStore) live(flowID string) (memoryFlowEntry, bool) {
	entry, ok := s.entries[flowID]
	if !ok {
		return memoryFlowEntry{}, false
	}
	if time.Now().After(entry.deadline) {
		delete(s.entries, flowID)
		return memoryFlowEntry{}, false
	}
	return entry, true
}
