package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-paysession/core"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type NotificationDispatchStore struct {
	repo repository.Repository[*notificationDispatchRecord]
}

func NewNotificationDispatchStore(db *bun.DB) (*NotificationDispatchStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*notificationDispatchRecord](db, notificationDispatchHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid notification dispatch repository wiring: %w", err)
		}
	}
	return &NotificationDispatchStore{repo: repo}, nil
}

func (s *NotificationDispatchStore) Record(ctx context.Context, input core.NotificationDispatchRecord) error {
	if s == nil || s.repo == nil {
		return fmt.Errorf("sqlstore: notification dispatch store is not configured")
	}
	if strings.TrimSpace(input.SessionID) == "" {
		return fmt.Errorf("sqlstore: session id is required")
	}
	if strings.TrimSpace(input.PaymentID) == "" {
		return fmt.Errorf("sqlstore: payment id is required")
	}

	status := strings.TrimSpace(input.Status)
	if status == "" {
		status = core.DispatchStatusSent
	}
	createdAt := input.CreatedAt.UTC()
	if input.CreatedAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	payload := map[string]string(input.Payload.Clone())
	record := &notificationDispatchRecord{
		ID:          uuid.NewString(),
		SessionID:   strings.TrimSpace(input.SessionID),
		PaymentID:   strings.TrimSpace(input.PaymentID),
		RecipientID: strings.TrimSpace(input.RecipientID),
		Topic:       strings.TrimSpace(input.Topic),
		Status:      status,
		Error:       strings.TrimSpace(input.Error),
		Payload:     payload,
		CreatedAt:   createdAt,
	}
	_, err := s.repo.Create(ctx, record)
	return err
}

// ListByPayment returns every recorded dispatch for the payment, oldest first.
func (s *NotificationDispatchStore) ListByPayment(ctx context.Context, paymentID string) ([]core.NotificationDispatchRecord, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("sqlstore: notification dispatch store is not configured")
	}
	paymentID = strings.TrimSpace(paymentID)
	if paymentID == "" {
		return nil, fmt.Errorf("sqlstore: payment id is required")
	}
	records, _, err := s.repo.List(ctx,
		repository.SelectBy("payment_id", "=", paymentID),
		repository.OrderBy("created_at ASC"),
	)
	if err != nil {
		return nil, err
	}
	out := make([]core.NotificationDispatchRecord, 0, len(records))
	for _, record := range records {
		out = append(out, record.toDomain())
	}
	return out, nil
}
