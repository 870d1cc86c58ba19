package core

import (
	"context"
	"fmt"
	"sync"
)

type stubLogger struct{}

func (stubLogger) Trace(string, ...any) {}
func (stubLogger) Debug(string, ...any) {}
func (stubLogger) Info(string, ...any)  {}
func (stubLogger) Warn(string, ...any)  {}
func (stubLogger) Error(string, ...any) {}
func (stubLogger) Fatal(string, ...any) {}
func (s stubLogger) WithContext(context.Context) Logger {
	return s
}

type stubLoggerProvider struct {
	logger Logger
}

func (s stubLoggerProvider) GetLogger(string) Logger {
	return s.logger
}

type mapRawLoader struct {
	values map[string]any
}

func (l mapRawLoader) LoadRaw(context.Context) (map[string]any, error) {
	return l.values, nil
}

type capturedCounter struct {
	name  string
	value int64
	tags  map[string]string
}

type capturedHistogram struct {
	name  string
	value float64
	tags  map[string]string
}

type captureMetricsRecorder struct {
	mu         sync.Mutex
	counters   []capturedCounter
	histograms []capturedHistogram
}

func (m *captureMetricsRecorder) IncCounter(_ context.Context, name string, value int64, tags map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters = append(m.counters, capturedCounter{name: name, value: value, tags: cloneTags(tags)})
}

func (m *captureMetricsRecorder) ObserveHistogram(_ context.Context, name string, value float64, tags map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.histograms = append(m.histograms, capturedHistogram{name: name, value: value, tags: cloneTags(tags)})
}

type capturedLog struct {
	level  string
	msg    string
	fields map[string]any
}

type captureLogger struct {
	mu       *sync.Mutex
	records  *[]capturedLog
	defaults map[string]any
}

func newCaptureLogger() *captureLogger {
	records := []capturedLog{}
	return &captureLogger{mu: &sync.Mutex{}, records: &records, defaults: map[string]any{}}
}

func (l *captureLogger) WithFields(fields map[string]any) Logger {
	merged := cloneFields(l.defaults)
	for key, value := range fields {
		merged[key] = value
	}
	return &captureLogger{mu: l.mu, records: l.records, defaults: merged}
}

func (l *captureLogger) Trace(msg string, args ...any) { l.record("trace", msg, args...) }
func (l *captureLogger) Debug(msg string, args ...any) { l.record("debug", msg, args...) }
func (l *captureLogger) Info(msg string, args ...any)  { l.record("info", msg, args...) }
func (l *captureLogger) Warn(msg string, args ...any)  { l.record("warn", msg, args...) }
func (l *captureLogger) Error(msg string, args ...any) { l.record("error", msg, args...) }
func (l *captureLogger) Fatal(msg string, args ...any) { l.record("fatal", msg, args...) }

func (l *captureLogger) WithContext(context.Context) Logger {
	return &captureLogger{mu: l.mu, records: l.records, defaults: cloneFields(l.defaults)}
}

func (l *captureLogger) record(level string, msg string, args ...any) {
	fields := cloneFields(l.defaults)
	for index := 0; index+1 < len(args); index += 2 {
		key, ok := args[index].(string)
		if !ok {
			continue
		}
		fields[key] = args[index+1]
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	*l.records = append(*l.records, capturedLog{level: level, msg: msg, fields: fields})
}

func (l *captureLogger) snapshot() []capturedLog {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]capturedLog, len(*l.records))
	copy(out, *l.records)
	return out
}

type sentNotification struct {
	payload         NotificationPayload
	recipientID     string
	topic           string
	securityContext SecurityContext
}

type recordingChannel struct {
	mu    sync.Mutex
	sent  []sentNotification
	err   error
	calls int
}

func (c *recordingChannel) SendNotification(
	_ context.Context,
	payload NotificationPayload,
	recipientID string,
	topic string,
	securityContext SecurityContext,
) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	c.sent = append(c.sent, sentNotification{
		payload:         payload.Clone(),
		recipientID:     recipientID,
		topic:           topic,
		securityContext: securityContext,
	})
	return c.err
}

func (c *recordingChannel) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

type staticSecurityProvider struct {
	value SecurityContext
	err   error
	keys  []string
}

func (p *staticSecurityProvider) GetAttribute(_ context.Context, key string) (SecurityContext, error) {
	p.keys = append(p.keys, key)
	return p.value, p.err
}

type recordingDispatchLog struct {
	mu      sync.Mutex
	records []NotificationDispatchRecord
	err     error
}

func (l *recordingDispatchLog) Record(_ context.Context, record NotificationDispatchRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return l.err
	}
	l.records = append(l.records, record)
	return nil
}

type recordingEnqueuer struct {
	messages []*JobExecutionMessage
	err      error
}

func (e *recordingEnqueuer) Enqueue(_ context.Context, msg *JobExecutionMessage) error {
	if e.err != nil {
		return e.err
	}
	e.messages = append(e.messages, msg)
	return nil
}

type fakeDelivery struct {
	msg    *JobExecutionMessage
	acked  int
	nacked []JobNackOptions
}

func (d *fakeDelivery) Message() *JobExecutionMessage { return d.msg }

func (d *fakeDelivery) Ack(context.Context) error {
	d.acked++
	return nil
}

func (d *fakeDelivery) Nack(_ context.Context, opts JobNackOptions) error {
	d.nacked = append(d.nacked, opts)
	return nil
}

func intPtr(value int) *int {
	return &value
}

func sessionWithAttempts(id string, attempts *int) *SessionContext {
	state := FlowControlState{}
	if attempts != nil {
		state = NewFlowControlState(*attempts)
	}
	return &SessionContext{ID: id, FlowControl: &state}
}

func mustService(t interface {
	Helper()
	Fatalf(string, ...any)
}, cfg Config, opts ...Option) *Service {
	t.Helper()
	svc, err := NewService(cfg, opts...)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func buyerSession(id string, name string, accountID int64) SessionContext {
	return SessionContext{
		ID:          id,
		FlowControl: &FlowControlState{},
		Buyer:       &BuyerInfo{Name: name, AccountID: accountID},
	}
}

func paymentWithTransactions(id string, count int) PaymentRecord {
	payment := PaymentRecord{ID: id, Amount: NewAmount(0, 0, "")}
	for index := 0; index < count; index++ {
		payment.Transactions = append(payment.Transactions, Transaction{
			ID:     fmt.Sprintf("%s-txn-%d", id, index+1),
			Amount: NewAmount(1000, 2, "EUR"),
		})
	}
	return payment
}
