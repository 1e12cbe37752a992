package otp

import (
	"context"
	"sync"
	"time"

	"tracker_server/core/domain"
)

type memoryEntry struct {
	rec     domain.OTPRecord
	expires time.Time
}

// MemoryStore is a process-local store for single-instance deployments.
// Expired entries are purged on access and by Sweep.
type MemoryStore struct {
	mu     sync.Mutex
	codes  map[string]memoryEntry
	grants map[string]time.Time
	now    func() time.Time
}

// NewMemoryStore creates a new MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		codes:  make(map[string]memoryEntry),
		grants: make(map[string]time.Time),
		now:    time.Now,
	}
}

func (s *MemoryStore) Put(_ context.Context, rec *domain.OTPRecord, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[rec.Email] = memoryEntry{rec: *rec, expires: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, email string) (*domain.OTPRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.codes[email]
	if !ok {
		return nil, nil
	}
	if !s.now().Before(entry.expires) {
		delete(s.codes, email)
		return nil, nil
	}
	rec := entry.rec
	return &rec, nil
}

func (s *MemoryStore) Delete(_ context.Context, email string) error {
	s.mu.Lock()
	delete(s.codes, email)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) GrantReset(_ context.Context, email string, ttl time.Duration) error {
	s.mu.Lock()
	s.grants[email] = s.now().Add(ttl)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) ConsumeReset(_ context.Context, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expires, ok := s.grants[email]
	if !ok {
		return false, nil
	}
	delete(s.grants, email)
	return s.now().Before(expires), nil
}

// Sweep drops every expired code and grant.
func (s *MemoryStore) Sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for email, entry := range s.codes {
		if !now.Before(entry.expires) {
			delete(s.codes, email)
		}
	}
	for email, expires := range s.grants {
		if !now.Before(expires) {
			delete(s.grants, email)
		}
	}
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *MemoryStore) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}
