package core

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]SessionContext
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: map[string]SessionContext{}}
}

func (s *MemorySessionStore) Create(_ context.Context, session SessionContext) (SessionContext, error) {
	if s == nil {
		return SessionContext{}, fmt.Errorf("core: memory session store is not configured")
	}
	session = session.Clone()
	session.ID = strings.TrimSpace(session.ID)
	if session.ID == "" {
		session.ID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sessions[session.ID]; exists {
		return SessionContext{}, fmt.Errorf("core: session %q already exists", session.ID)
	}
	s.sessions[session.ID] = session
	return session.Clone(), nil
}

func (s *MemorySessionStore) Get(_ context.Context, sessionID string) (SessionContext, error) {
	if s == nil {
		return SessionContext{}, fmt.Errorf("core: memory session store is not configured")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[strings.TrimSpace(sessionID)]
	if !ok {
		return SessionContext{}, fmt.Errorf("%w: %q", ErrSessionNotFound, sessionID)
	}
	return session.Clone(), nil
}

func (s *MemorySessionStore) GetFlowControlState(ctx context.Context, sessionID string) (*FlowControlState, error) {
	session, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return session.FlowControl, nil
}

func (s *MemorySessionStore) SetFlowControlState(_ context.Context, sessionID string, state FlowControlState) error {
	if s == nil {
		return fmt.Errorf("core: memory session store is not configured")
	}
	sessionID = strings.TrimSpace(sessionID)
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrSessionNotFound, sessionID)
	}
	cloned := state.Clone()
	session.FlowControl = &cloned
	s.sessions[sessionID] = session
	return nil
}
