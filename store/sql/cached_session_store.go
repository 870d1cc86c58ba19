package sqlstore

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/goliatone/go-paysession/core"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
)

const sessionCacheKeyPrefix = "go-paysession::session::v1"

// CachedSessionStore is a read-through cache in front of a SessionStore.
// Writes go to the base store first and then move the session to a new
// cache generation, so a read that fetched the old row before the write
// can only repopulate a key nobody reads again. Generations are tracked in
// process; instances sharing a cache still rely on the cache TTL.
type CachedSessionStore struct {
	base  core.SessionStore
	cache repositorycache.CacheService

	mu          sync.Mutex
	generations map[string]uint64
}

func NewCachedSessionStore(base core.SessionStore, cacheService repositorycache.CacheService) (*CachedSessionStore, error) {
	if base == nil {
		return nil, fmt.Errorf("sqlstore: base session store is required")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("sqlstore: session cache service is required")
	}
	return &CachedSessionStore{
		base:        base,
		cache:       cacheService,
		generations: map[string]uint64{},
	}, nil
}

// SessionCacheKey returns go-paysession::session::v1::<session id> with the
// id URL-path escaped.
func SessionCacheKey(sessionID string) (string, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return "", fmt.Errorf("sqlstore: session id is required")
	}
	return sessionCacheKeyPrefix + "::" + url.PathEscape(sessionID), nil
}

func (s *CachedSessionStore) Create(ctx context.Context, session core.SessionContext) (core.SessionContext, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return core.SessionContext{}, fmt.Errorf("sqlstore: cached session store is not configured")
	}
	created, err := s.base.Create(ctx, session)
	if err != nil {
		return core.SessionContext{}, err
	}
	if err := s.invalidate(ctx, created.ID); err != nil {
		return core.SessionContext{}, err
	}
	return created, nil
}

func (s *CachedSessionStore) Get(ctx context.Context, sessionID string) (core.SessionContext, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return core.SessionContext{}, fmt.Errorf("sqlstore: cached session store is not configured")
	}
	cacheKey, err := s.generationKey(sessionID)
	if err != nil {
		return core.SessionContext{}, err
	}
	session, err := repositorycache.GetOrFetch(ctx, s.cache, cacheKey, func(ctx context.Context) (core.SessionContext, error) {
		fetched, fetchErr := s.base.Get(ctx, sessionID)
		if fetchErr != nil {
			return core.SessionContext{}, fetchErr
		}
		return fetched.Clone(), nil
	})
	if err != nil {
		return core.SessionContext{}, err
	}
	return session.Clone(), nil
}

func (s *CachedSessionStore) GetFlowControlState(ctx context.Context, sessionID string) (*core.FlowControlState, error) {
	session, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return session.FlowControl, nil
}

func (s *CachedSessionStore) SetFlowControlState(ctx context.Context, sessionID string, state core.FlowControlState) error {
	if s == nil || s.base == nil || s.cache == nil {
		return fmt.Errorf("sqlstore: cached session store is not configured")
	}
	if err := s.base.SetFlowControlState(ctx, sessionID, state); err != nil {
		return err
	}
	return s.invalidate(ctx, sessionID)
}

func (s *CachedSessionStore) generationKey(sessionID string) (string, error) {
	cacheKey, err := SessionCacheKey(sessionID)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	generation := s.generations[cacheKey]
	s.mu.Unlock()
	return cacheKey + "::" + strconv.FormatUint(generation, 10), nil
}

func (s *CachedSessionStore) invalidate(ctx context.Context, sessionID string) error {
	cacheKey, err := SessionCacheKey(sessionID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	previous := s.generations[cacheKey]
	s.generations[cacheKey] = previous + 1
	s.mu.Unlock()
	return s.cache.Delete(ctx, cacheKey+"::"+strconv.FormatUint(previous, 10))
}
