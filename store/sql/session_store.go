package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-paysession/core"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type SessionStore struct {
	db   *bun.DB
	repo repository.Repository[*sessionRecord]
}

func NewSessionStore(db *bun.DB) (*SessionStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*sessionRecord](db, sessionHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid session repository wiring: %w", err)
		}
	}
	return &SessionStore{db: db, repo: repo}, nil
}

// Create inserts the session, keeping a caller supplied id verbatim and
// generating a uuid otherwise.
func (s *SessionStore) Create(ctx context.Context, session core.SessionContext) (core.SessionContext, error) {
	if s == nil || s.db == nil {
		return core.SessionContext{}, fmt.Errorf("sqlstore: session store is not configured")
	}
	if strings.TrimSpace(session.ID) == "" {
		session.ID = uuid.NewString()
	}
	record := newSessionRecord(session, time.Now().UTC())
	if _, err := s.db.NewInsert().Model(record).Exec(ctx); err != nil {
		if isUniqueConstraintError(err) {
			return core.SessionContext{}, fmt.Errorf("sqlstore: session %q already exists: %w", record.ID, err)
		}
		return core.SessionContext{}, err
	}
	return record.toDomain(), nil
}

func (s *SessionStore) Get(ctx context.Context, sessionID string) (core.SessionContext, error) {
	if s == nil || s.repo == nil {
		return core.SessionContext{}, fmt.Errorf("sqlstore: session store is not configured")
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return core.SessionContext{}, fmt.Errorf("sqlstore: session id is required")
	}
	records, _, err := s.repo.List(ctx,
		repository.SelectBy("id", "=", sessionID),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return core.SessionContext{}, err
	}
	if len(records) == 0 {
		return core.SessionContext{}, fmt.Errorf("%w: %q", core.ErrSessionNotFound, sessionID)
	}
	return records[0].toDomain(), nil
}

func (s *SessionStore) GetFlowControlState(ctx context.Context, sessionID string) (*core.FlowControlState, error) {
	session, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return session.FlowControl, nil
}

func (s *SessionStore) SetFlowControlState(ctx context.Context, sessionID string, state core.FlowControlState) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: session store is not configured")
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return fmt.Errorf("sqlstore: session id is required")
	}
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		record, err := findSessionTx(ctx, tx, sessionID)
		if err != nil {
			return err
		}
		record.applyFlowControl(&state)
		record.UpdatedAt = time.Now().UTC()
		if _, updateErr := tx.NewUpdate().
			Model(record).
			Column("has_flow_control", "payment_attempts", "updated_at").
			Where("id = ?", record.ID).
			Exec(ctx); updateErr != nil {
			return updateErr
		}
		return nil
	})
}

func findSessionTx(ctx context.Context, tx bun.Tx, sessionID string) (*sessionRecord, error) {
	record := &sessionRecord{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", sessionID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %q", core.ErrSessionNotFound, sessionID)
		}
		return nil, err
	}
	return record, nil
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	text := strings.ToLower(err.Error())
	return strings.Contains(text, "unique") || strings.Contains(text, "duplicate")
}
