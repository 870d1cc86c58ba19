package core

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

type MemorySessionLocker struct {
	mu     sync.Mutex
	locks  map[string]memoryLease
	leases uint64
	nowFn  func() time.Time
}

type memoryLease struct {
	token uint64
	until time.Time
}

func NewMemorySessionLocker() *MemorySessionLocker {
	return &MemorySessionLocker{
		locks: make(map[string]memoryLease),
		nowFn: func() time.Time { return time.Now().UTC() },
	}
}

// Acquire fails fast with ErrSessionLocked while another holder's lease on
// the session has not expired.
func (l *MemorySessionLocker) Acquire(_ context.Context, sessionID string, ttl time.Duration) (LockHandle, error) {
	if l == nil {
		return nil, fmt.Errorf("core: session locker is not configured")
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, fmt.Errorf("core: session id is required for lock acquisition")
	}
	if ttl <= 0 {
		ttl = defaultSessionLockTTLSeconds * time.Second
	}

	now := l.nowFn()
	l.mu.Lock()
	defer l.mu.Unlock()

	if lease, ok := l.locks[sessionID]; ok && now.Before(lease.until) {
		return nil, fmt.Errorf("%w for session %q", ErrSessionLocked, sessionID)
	}
	l.leases++
	l.locks[sessionID] = memoryLease{token: l.leases, until: now.Add(ttl)}
	return &memoryLockHandle{locker: l, sessionID: sessionID, token: l.leases}, nil
}

type memoryLockHandle struct {
	locker    *MemorySessionLocker
	sessionID string
	token     uint64
	once      sync.Once
}

// Unlock is a no-op once the lease expired and another holder took it.
func (h *memoryLockHandle) Unlock(_ context.Context) error {
	if h == nil || h.locker == nil {
		return nil
	}
	h.once.Do(func() {
		h.locker.mu.Lock()
		defer h.locker.mu.Unlock()
		if lease, ok := h.locker.locks[h.sessionID]; ok && lease.token == h.token {
			delete(h.locker.locks, h.sessionID)
		}
	})
	return nil
}
