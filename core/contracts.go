package core

import (
	"context"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

// SessionStore supplies sessions and their flow-control record.
type SessionStore interface {
	Create(ctx context.Context, session SessionContext) (SessionContext, error)
	Get(ctx context.Context, sessionID string) (SessionContext, error)
	GetFlowControlState(ctx context.Context, sessionID string) (*FlowControlState, error)
	SetFlowControlState(ctx context.Context, sessionID string, state FlowControlState) error
}

// SecurityContextProvider reads the caller's security token from the
// request-scoped attribute store. An unset attribute yields an empty
// SecurityContext and no error.
type SecurityContextProvider interface {
	GetAttribute(ctx context.Context, key string) (SecurityContext, error)
}

type NotificationChannel interface {
	SendNotification(
		ctx context.Context,
		payload NotificationPayload,
		recipientID string,
		topic string,
		securityContext SecurityContext,
	) error
}

type NotificationChannelFunc func(
	ctx context.Context,
	payload NotificationPayload,
	recipientID string,
	topic string,
	securityContext SecurityContext,
) error

func (f NotificationChannelFunc) SendNotification(
	ctx context.Context,
	payload NotificationPayload,
	recipientID string,
	topic string,
	securityContext SecurityContext,
) error {
	return f(ctx, payload, recipientID, topic, securityContext)
}

type LockHandle interface {
	Unlock(ctx context.Context) error
}

type SessionLocker interface {
	Acquire(ctx context.Context, sessionID string, ttl time.Duration) (LockHandle, error)
}

const (
	DispatchStatusSent   = "sent"
	DispatchStatusFailed = "failed"
)

type NotificationDispatchRecord struct {
	SessionID   string
	PaymentID   string
	RecipientID string
	Topic       string
	Status      string
	Error       string
	Payload     NotificationPayload
	CreatedAt   time.Time
}

// NotificationDispatchLog is an audit trail of dispatch outcomes. It is never
// consulted to decide whether to dispatch.
type NotificationDispatchLog interface {
	Record(ctx context.Context, record NotificationDispatchRecord) error
}

type RepositoryStoreFactory interface {
	BuildStores(persistenceClient any) (StoreProvider, error)
}

type StoreProvider interface {
	SessionStore() SessionStore
	DispatchLog() NotificationDispatchLog
}

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

const JobIDCompletionNotification = "paysession.notification.completion"

type JobExecutionMessage struct {
	JobID          string
	ScriptPath     string
	Parameters     map[string]any
	IdempotencyKey string
	DedupPolicy    string
}

type JobNackOptions struct {
	Delay      time.Duration
	Requeue    bool
	DeadLetter bool
	Reason     string
}

type JobEnqueuer interface {
	Enqueue(ctx context.Context, msg *JobExecutionMessage) error
}

type JobDelivery interface {
	Message() *JobExecutionMessage
	Ack(ctx context.Context) error
	Nack(ctx context.Context, opts JobNackOptions) error
}

type JobDequeuer interface {
	Dequeue(ctx context.Context) (JobDelivery, error)
}
