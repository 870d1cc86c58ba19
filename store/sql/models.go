package sqlstore

import (
	"strings"
	"time"

	"github.com/goliatone/go-paysession/core"
	"github.com/uptrace/bun"
)

type sessionRecord struct {
	bun.BaseModel `bun:"table:paysession_sessions,alias:ps"`

	ID              string    `bun:"id,pk"`
	BuyerName       string    `bun:"buyer_name,notnull"`
	BuyerAccountID  int64     `bun:"buyer_account_id,notnull"`
	HasFlowControl  bool      `bun:"has_flow_control,notnull"`
	PaymentAttempts *int      `bun:"payment_attempts"`
	CreatedAt       time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt       time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

func newSessionRecord(session core.SessionContext, now time.Time) *sessionRecord {
	record := &sessionRecord{
		ID:        strings.TrimSpace(session.ID),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if session.Buyer != nil {
		record.BuyerName = session.Buyer.Name
		record.BuyerAccountID = session.Buyer.AccountID
	}
	record.applyFlowControl(session.FlowControl)
	return record
}

func (r *sessionRecord) applyFlowControl(state *core.FlowControlState) {
	if state == nil {
		r.HasFlowControl = false
		r.PaymentAttempts = nil
		return
	}
	cloned := state.Clone()
	r.HasFlowControl = true
	r.PaymentAttempts = cloned.PaymentAttempts
}

func (r *sessionRecord) toDomain() core.SessionContext {
	if r == nil {
		return core.SessionContext{}
	}
	session := core.SessionContext{ID: r.ID}
	if r.HasFlowControl {
		state := core.FlowControlState{}
		if r.PaymentAttempts != nil {
			state = core.NewFlowControlState(*r.PaymentAttempts)
		}
		session.FlowControl = &state
	}
	if r.BuyerName != "" || r.BuyerAccountID != 0 {
		session.Buyer = &core.BuyerInfo{
			Name:      r.BuyerName,
			AccountID: r.BuyerAccountID,
		}
	}
	return session
}

type notificationDispatchRecord struct {
	bun.BaseModel `bun:"table:paysession_notification_dispatches,alias:pnd"`

	ID          string            `bun:"id,pk"`
	SessionID   string            `bun:"session_id,notnull"`
	PaymentID   string            `bun:"payment_id,notnull"`
	RecipientID string            `bun:"recipient_id,notnull"`
	Topic       string            `bun:"topic,notnull"`
	Status      string            `bun:"status,notnull"`
	Error       string            `bun:"error,notnull"`
	Payload     map[string]string `bun:"payload,type:jsonb,notnull"`
	CreatedAt   time.Time         `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

func (r *notificationDispatchRecord) toDomain() core.NotificationDispatchRecord {
	if r == nil {
		return core.NotificationDispatchRecord{}
	}
	return core.NotificationDispatchRecord{
		SessionID:   r.SessionID,
		PaymentID:   r.PaymentID,
		RecipientID: r.RecipientID,
		Topic:       r.Topic,
		Status:      r.Status,
		Error:       r.Error,
		Payload:     core.NotificationPayload(r.Payload).Clone(),
		CreatedAt:   r.CreatedAt.UTC(),
	}
}
