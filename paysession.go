package paysession

import "github.com/goliatone/go-paysession/core"

type Config = core.Config

type Option = core.Option

type Service = core.Service

type ServiceDependencies = core.ServiceDependencies
type SessionStore = core.SessionStore
type SessionLocker = core.SessionLocker
type NotificationChannel = core.NotificationChannel
type NotificationChannelFunc = core.NotificationChannelFunc
type NotificationDispatchLog = core.NotificationDispatchLog
type SecurityContextProvider = core.SecurityContextProvider
type MetricsRecorder = core.MetricsRecorder

type SessionContext = core.SessionContext
type FlowControlState = core.FlowControlState
type BuyerInfo = core.BuyerInfo
type PaymentRecord = core.PaymentRecord
type Transaction = core.Transaction
type Amount = core.Amount
type NotificationPayload = core.NotificationPayload

type CompletionRequest = core.CompletionRequest

type AttemptResult = core.AttemptResult

var (
	WithLogger                  = core.WithLogger
	WithLoggerProvider          = core.WithLoggerProvider
	WithMetricsRecorder         = core.WithMetricsRecorder
	WithErrorFactory            = core.WithErrorFactory
	WithErrorMapper             = core.WithErrorMapper
	WithPersistenceClient       = core.WithPersistenceClient
	WithRepositoryFactory       = core.WithRepositoryFactory
	WithConfigProvider          = core.WithConfigProvider
	WithOptionsResolver         = core.WithOptionsResolver
	WithSessionStore            = core.WithSessionStore
	WithSessionLocker           = core.WithSessionLocker
	WithSecurityContextProvider = core.WithSecurityContextProvider
	WithNotificationChannel     = core.WithNotificationChannel
	WithDispatchLog             = core.WithDispatchLog
	WithJobEnqueuer             = core.WithJobEnqueuer
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

func NewService(cfg Config, opts ...Option) (*Service, error) {
	return core.NewService(cfg, opts...)
}

func Setup(cfg Config, opts ...Option) (*Service, error) {
	return core.Setup(cfg, opts...)
}
