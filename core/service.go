package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
)

type Service struct {
	config            Config
	logger            Logger
	loggerProvider    LoggerProvider
	metricsRecorder   MetricsRecorder
	errorFactory      ErrorFactory
	errorMapper       ErrorMapper
	persistenceClient any
	repositoryFactory any
	configProvider    ConfigProvider
	optionsResolver   OptionsResolver
	sessionStore      SessionStore
	sessionLocker     SessionLocker
	securityContexts  SecurityContextProvider
	channel           NotificationChannel
	dispatchLog       NotificationDispatchLog
	jobEnqueuer       JobEnqueuer
	governor          *AttemptGovernor
	assembler         *NotificationAssembler
}

type ServiceDependencies struct {
	Logger                  Logger
	LoggerProvider          LoggerProvider
	MetricsRecorder         MetricsRecorder
	ErrorFactory            ErrorFactory
	ErrorMapper             ErrorMapper
	PersistenceClient       any
	RepositoryFactory       any
	ConfigProvider          ConfigProvider
	OptionsResolver         OptionsResolver
	SessionStore            SessionStore
	SessionLocker           SessionLocker
	SecurityContextProvider SecurityContextProvider
	NotificationChannel     NotificationChannel
	DispatchLog             NotificationDispatchLog
	JobEnqueuer             JobEnqueuer
	AttemptGovernor         *AttemptGovernor
	NotificationAssembler   *NotificationAssembler
}

func NewService(cfg Config, opts ...Option) (*Service, error) {
	builder := defaultServiceBuilder(cfg)
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	provider, logger := glog.Resolve("paysession", builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if provider != nil {
		if named := provider.GetLogger("paysession"); named != nil {
			logger = glog.Ensure(named)
		}
	}

	if builder.errorFactory == nil {
		builder.errorFactory = goerrors.New
	}
	if builder.metricsRecorder == nil {
		builder.metricsRecorder = NopMetricsRecorder{}
	}
	if builder.errorMapper == nil {
		builder.errorMapper = defaultErrorMapper
	}
	if builder.configProvider == nil {
		builder.configProvider = NewCfgxConfigProvider(nil)
	}
	if builder.optionsResolver == nil {
		builder.optionsResolver = GoOptionsResolver{}
	}
	if builder.sessionLocker == nil {
		builder.sessionLocker = NewMemorySessionLocker()
	}
	if builder.securityContexts == nil {
		builder.securityContexts = RequestAttributeSecurityProvider{}
	}

	defaults := DefaultConfig()
	loaded, err := builder.configProvider.Load(context.Background(), defaults)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	finalConfig, err := builder.optionsResolver.Resolve(defaults, loaded, builder.runtimeConfig)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}

	if (builder.sessionStore == nil || builder.dispatchLog == nil) && builder.repositoryFactory != nil {
		if storeFactory, ok := builder.repositoryFactory.(RepositoryStoreFactory); ok {
			stores, buildErr := storeFactory.BuildStores(builder.persistenceClient)
			if buildErr != nil {
				return nil, mapBuildError(builder.errorMapper, buildErr)
			}
			applyStoreProvider(&builder, stores)
		} else if stores, ok := builder.repositoryFactory.(StoreProvider); ok {
			applyStoreProvider(&builder, stores)
		}
	}
	if builder.sessionStore == nil {
		builder.sessionStore = NewMemorySessionStore()
	}

	governor, err := NewAttemptGovernor(finalConfig.Attempts.MaxAttempts)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}

	var assembler *NotificationAssembler
	if builder.channel != nil {
		assembler, err = NewNotificationAssembler(builder.securityContexts, builder.channel, finalConfig.Notifications)
		if err != nil {
			return nil, mapBuildError(builder.errorMapper, err)
		}
	}

	return &Service{
		config:            finalConfig,
		logger:            logger,
		loggerProvider:    provider,
		metricsRecorder:   builder.metricsRecorder,
		errorFactory:      builder.errorFactory,
		errorMapper:       builder.errorMapper,
		persistenceClient: builder.persistenceClient,
		repositoryFactory: builder.repositoryFactory,
		configProvider:    builder.configProvider,
		optionsResolver:   builder.optionsResolver,
		sessionStore:      builder.sessionStore,
		sessionLocker:     builder.sessionLocker,
		securityContexts:  builder.securityContexts,
		channel:           builder.channel,
		dispatchLog:       builder.dispatchLog,
		jobEnqueuer:       builder.jobEnqueuer,
		governor:          governor,
		assembler:         assembler,
	}, nil
}

func Setup(cfg Config, opts ...Option) (*Service, error) {
	return NewService(cfg, opts...)
}

func applyStoreProvider(builder *serviceBuilder, stores StoreProvider) {
	if builder == nil || stores == nil {
		return
	}
	if builder.sessionStore == nil {
		builder.sessionStore = stores.SessionStore()
	}
	if builder.dispatchLog == nil {
		builder.dispatchLog = stores.DispatchLog()
	}
}

func mapBuildError(mapper ErrorMapper, err error) error {
	if err == nil {
		return nil
	}
	if mapper == nil {
		return err
	}
	mapped := mapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}

func (s *Service) Config() Config {
	if s == nil {
		return Config{}
	}
	return s.config
}

func (s *Service) Dependencies() ServiceDependencies {
	if s == nil {
		return ServiceDependencies{}
	}
	return ServiceDependencies{
		Logger:                  s.logger,
		LoggerProvider:          s.loggerProvider,
		MetricsRecorder:         s.metricsRecorder,
		ErrorFactory:            s.errorFactory,
		ErrorMapper:             s.errorMapper,
		PersistenceClient:       s.persistenceClient,
		RepositoryFactory:       s.repositoryFactory,
		ConfigProvider:          s.configProvider,
		OptionsResolver:         s.optionsResolver,
		SessionStore:            s.sessionStore,
		SessionLocker:           s.sessionLocker,
		SecurityContextProvider: s.securityContexts,
		NotificationChannel:     s.channel,
		DispatchLog:             s.dispatchLog,
		JobEnqueuer:             s.jobEnqueuer,
		AttemptGovernor:         s.governor,
		NotificationAssembler:   s.assembler,
	}
}

// EstablishSession stores a new session. A session created without
// flow-control state gets an empty record so attempts can be governed.
func (s *Service) EstablishSession(ctx context.Context, session SessionContext) (created SessionContext, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"session_id": session.ID}
	defer func() {
		s.observeOperation(ctx, startedAt, "establish_session", err, fields)
	}()

	if s == nil || s.sessionStore == nil {
		err = s.mapError(dependencyError("core: session store is required"))
		return SessionContext{}, err
	}
	session = session.Clone()
	if session.FlowControl == nil {
		session.FlowControl = &FlowControlState{}
	}
	created, err = s.sessionStore.Create(ctx, session)
	if err != nil {
		err = s.mapError(err)
		return SessionContext{}, err
	}
	fields["session_id"] = created.ID
	return created, nil
}

func (s *Service) LoadSession(ctx context.Context, sessionID string) (session SessionContext, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"session_id": sessionID}
	defer func() {
		s.observeOperation(ctx, startedAt, "load_session", err, fields)
	}()

	session, err = s.loadSession(ctx, sessionID)
	if err != nil {
		err = s.mapError(err)
		return SessionContext{}, err
	}
	return session, nil
}

func (s *Service) LoadFlowControlState(ctx context.Context, sessionID string) (state FlowControlState, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"session_id": sessionID}
	defer func() {
		s.observeOperation(ctx, startedAt, "load_flow_control_state", err, fields)
	}()

	if s == nil || s.sessionStore == nil {
		err = s.mapError(dependencyError("core: session store is required"))
		return FlowControlState{}, err
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		err = s.mapError(badInputError("core: session id is required"))
		return FlowControlState{}, err
	}
	current, err := s.sessionStore.GetFlowControlState(ctx, sessionID)
	if err != nil {
		err = s.mapError(err)
		return FlowControlState{}, err
	}
	if current == nil {
		err = s.mapError(StateMissingError(sessionID))
		return FlowControlState{}, err
	}
	return current.Clone(), nil
}

// RecordPaymentAttempt counts one payment attempt against the session while
// holding its lock. The counter saturates at the configured maximum.
func (s *Service) RecordPaymentAttempt(ctx context.Context, sessionID string) (result AttemptResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"session_id": sessionID}
	defer func() {
		s.observeOperation(ctx, startedAt, "record_payment_attempt", err, fields)
	}()

	if s == nil || s.sessionStore == nil || s.governor == nil {
		err = s.mapError(dependencyError("core: attempt governance is not configured"))
		return AttemptResult{}, err
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		err = s.mapError(badInputError("core: session id is required"))
		return AttemptResult{}, err
	}

	if s.sessionLocker != nil {
		handle, lockErr := s.sessionLocker.Acquire(ctx, sessionID, s.config.SessionLockTTL())
		if lockErr != nil {
			err = s.mapError(lockErr)
			return AttemptResult{}, err
		}
		defer func() {
			if unlockErr := handle.Unlock(ctx); unlockErr != nil && err == nil {
				err = s.mapError(unlockErr)
			}
		}()
	}

	current, err := s.sessionStore.GetFlowControlState(ctx, sessionID)
	if err != nil {
		err = s.mapError(err)
		return AttemptResult{}, err
	}
	session := &SessionContext{ID: sessionID, FlowControl: current}
	attempts, err := s.governor.IncrementAndValidate(session)
	if err != nil {
		err = s.mapError(err)
		return AttemptResult{}, err
	}
	if err = s.sessionStore.SetFlowControlState(ctx, sessionID, *session.FlowControl); err != nil {
		err = s.mapError(err)
		return AttemptResult{}, err
	}

	fields["attempts"] = attempts
	return AttemptResult{
		SessionID:   sessionID,
		Attempts:    attempts,
		MaxAttempts: s.governor.MaxAttempts(),
		Exhausted:   attempts >= s.governor.MaxAttempts(),
	}, nil
}

// CompletePayment assembles and sends the buyer's completion notification.
// The dispatch outcome is written to the dispatch log, when one is
// configured, before any channel error is returned.
func (s *Service) CompletePayment(ctx context.Context, req CompletionRequest) (payload NotificationPayload, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{
		"session_id": req.SessionID,
		"payment_id": req.Payment.ID,
	}
	defer func() {
		s.observeOperation(ctx, startedAt, "complete_payment", err, fields)
	}()

	if s == nil || s.assembler == nil {
		err = s.mapError(dependencyError("core: notification channel is required for payment completion"))
		return nil, err
	}
	if err = req.Validate(); err != nil {
		err = s.mapError(err)
		return nil, err
	}
	session, err := s.loadSession(ctx, req.SessionID)
	if err != nil {
		err = s.mapError(err)
		return nil, err
	}

	payload = NotificationPayload{}
	topic, sendErr := s.assembler.dispatch(ctx, &session, req.Payment, payload)
	if sendErr != nil && !IsChannelDispatch(sendErr) {
		err = s.mapError(sendErr)
		return nil, err
	}
	fields["topic"] = topic
	if logErr := s.recordDispatch(ctx, session, req.Payment, topic, payload, sendErr); logErr != nil {
		if sendErr != nil {
			s.logError(ctx, "dispatch log write failed", map[string]any{
				"session_id": session.ID,
				"payment_id": req.Payment.ID,
				"error":      logErr.Error(),
			})
		} else {
			err = s.mapError(logErr)
			return payload, err
		}
	}
	if sendErr != nil {
		err = s.mapError(sendErr)
		return payload, err
	}
	return payload, nil
}

func (s *Service) recordDispatch(
	ctx context.Context,
	session SessionContext,
	payment PaymentRecord,
	topic string,
	payload NotificationPayload,
	sendErr error,
) error {
	if s.dispatchLog == nil {
		return nil
	}
	record := NotificationDispatchRecord{
		SessionID: session.ID,
		PaymentID: payment.ID,
		Topic:     topic,
		Status:    DispatchStatusSent,
		Payload:   payload.Clone(),
		CreatedAt: time.Now().UTC(),
	}
	if session.Buyer != nil {
		record.RecipientID = fmt.Sprint(session.Buyer.AccountID)
	}
	if sendErr != nil {
		record.Status = DispatchStatusFailed
		record.Error = sendErr.Error()
	}
	if err := s.dispatchLog.Record(ctx, record); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "core: dispatch log write failed").
			WithTextCode(PaymentErrorDispatchLogFailed).
			WithMetadata(map[string]any{
				"session_id": session.ID,
				"payment_id": payment.ID,
			})
	}
	return nil
}

func (s *Service) loadSession(ctx context.Context, sessionID string) (SessionContext, error) {
	if s == nil || s.sessionStore == nil {
		return SessionContext{}, dependencyError("core: session store is required")
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return SessionContext{}, badInputError("core: session id is required")
	}
	return s.sessionStore.Get(ctx, sessionID)
}

func (s *Service) mapError(err error) error {
	if err == nil {
		return nil
	}
	if s == nil || s.errorMapper == nil {
		return err
	}
	mapped := s.errorMapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}
