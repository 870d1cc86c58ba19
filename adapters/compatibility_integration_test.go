package adapters_test

import (
	"context"
	"sync"
	"testing"

	"github.com/goliatone/go-command"
	job "github.com/goliatone/go-job"
	"github.com/goliatone/go-job/queue"
	jobqueuecommand "github.com/goliatone/go-job/queue/command"
	glog "github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-paysession/adapters/gocommand"
	"github.com/goliatone/go-paysession/adapters/gojob"
	"github.com/goliatone/go-paysession/adapters/gologger"
	paysessioncommand "github.com/goliatone/go-paysession/command"
	"github.com/goliatone/go-paysession/core"
)

func TestRuntimeCompatibility_GoJobGoCommandGoLogger(t *testing.T) {
	ctx := context.Background()

	logger := &compatLogger{}
	provider := &compatProvider{logger: logger}

	_, _, jobProvider, jobLogger := gologger.ResolveForJob("paysession.jobs", provider, nil)
	if jobProvider == nil || jobLogger == nil {
		t.Fatalf("expected go-job logger bridges")
	}

	jobQueue := &compatQueue{}
	channel := &compatChannel{}
	svc, err := core.NewService(core.DefaultConfig(),
		core.WithLoggerProvider(provider),
		core.WithJobEnqueuer(gojob.NewEnqueuerAdapter(jobQueue)),
		core.WithNotificationChannel(channel),
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	if _, err := svc.EstablishSession(ctx, core.SessionContext{
		ID:    "sess_compat",
		Buyer: &core.BuyerInfo{Name: "Mogambo", AccountID: 1539671732305563784},
	}); err != nil {
		t.Fatalf("establish session: %v", err)
	}

	queueRegistry := jobqueuecommand.NewRegistry()
	commandAdapter := gocommand.NewRegistryAdapter(command.NewRegistry())
	if err := commandAdapter.AddQueueResolver("queue", queueRegistry); err != nil {
		t.Fatalf("add queue resolver: %v", err)
	}
	subscription, err := gocommand.RegisterAndSubscribe(commandAdapter, paysessioncommand.NewEnqueueCompletionCommand(svc))
	if err != nil {
		t.Fatalf("register enqueue command: %v", err)
	}
	defer subscription.Unsubscribe()
	if err := commandAdapter.Initialize(); err != nil {
		t.Fatalf("initialize command registry: %v", err)
	}
	if _, ok := queueRegistry.Get(paysessioncommand.TypeEnqueueCompletion); !ok {
		t.Fatalf("expected enqueue command to be mirrored into the go-job queue registry")
	}

	if err := gocommand.Dispatch(ctx, paysessioncommand.EnqueueCompletionMessage{Request: core.CompletionRequest{
		SessionID: "sess_compat",
		Payment: core.PaymentRecord{
			ID:           "pay_compat",
			Amount:       core.NewAmount(50, 0, "INR"),
			Transactions: []core.Transaction{{ID: "t1"}},
		},
	}}); err != nil {
		t.Fatalf("dispatch enqueue command: %v", err)
	}
	if len(jobQueue.pending) != 1 || jobQueue.pending[0].msg.JobID != gojob.JobIDCompletionNotification {
		t.Fatalf("expected completion job on the queue, got %#v", jobQueue.pending)
	}

	consumer, err := gojob.NewCompletionConsumer(
		gojob.NewDequeuerAdapter(jobQueue, gojob.RetryPolicy{MaxAttempts: 1, DeadLetterOnMax: true}),
		svc,
		gojob.WithWorkerHook(gojob.NewLoggingHookFromProvider(provider, nil)),
	)
	if err != nil {
		t.Fatalf("new consumer: %v", err)
	}
	if err := consumer.RunOnce(ctx); err != nil {
		t.Fatalf("consume completion job: %v", err)
	}

	if channel.calls != 1 || channel.lastTopic != core.TopicBuyerReceipt {
		t.Fatalf("expected one buyer receipt dispatch, got calls=%d topic=%q", channel.calls, channel.lastTopic)
	}
	if channel.lastRecipient != "1539671732305563784" {
		t.Fatalf("unexpected recipient %q", channel.lastRecipient)
	}
	if !jobQueue.delivered[0].acked {
		t.Fatalf("expected completion delivery to be acked")
	}
	if !logger.saw("completion job succeeded") {
		t.Fatalf("expected job hook log line, got %#v", logger.messages)
	}
}

type compatQueue struct {
	mu        sync.Mutex
	pending   []*compatDelivery
	delivered []*compatDelivery
}

func (q *compatQueue) Enqueue(_ context.Context, msg *job.ExecutionMessage) (queue.EnqueueReceipt, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append(q.pending, &compatDelivery{msg: msg})
	return queue.EnqueueReceipt{DispatchID: msg.IdempotencyKey}, nil
}

func (q *compatQueue) Dequeue(context.Context) (queue.Delivery, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return nil, nil
	}
	next := q.pending[0]
	q.pending = q.pending[1:]
	q.delivered = append(q.delivered, next)
	return next, nil
}

type compatDelivery struct {
	msg   *job.ExecutionMessage
	acked bool
}

func (d *compatDelivery) Message() *job.ExecutionMessage { return d.msg }

func (d *compatDelivery) Ack(context.Context) error {
	d.acked = true
	return nil
}

func (d *compatDelivery) Nack(context.Context, queue.NackOptions) error { return nil }

type compatChannel struct {
	calls         int
	lastRecipient string
	lastTopic     string
}

func (c *compatChannel) SendNotification(
	_ context.Context,
	_ core.NotificationPayload,
	recipientID string,
	topic string,
	_ core.SecurityContext,
) error {
	c.calls++
	c.lastRecipient = recipientID
	c.lastTopic = topic
	return nil
}

type compatProvider struct {
	logger glog.Logger
}

func (p *compatProvider) GetLogger(string) glog.Logger {
	if p == nil || p.logger == nil {
		return glog.Nop()
	}
	return p.logger
}

type compatLogger struct {
	mu       sync.Mutex
	messages []string
}

func (l *compatLogger) record(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, msg)
}

func (l *compatLogger) saw(msg string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, candidate := range l.messages {
		if candidate == msg {
			return true
		}
	}
	return false
}

func (l *compatLogger) Trace(string, ...any)                    {}
func (l *compatLogger) Debug(string, ...any)                    {}
func (l *compatLogger) Info(msg string, _ ...any)               { l.record(msg) }
func (l *compatLogger) Warn(string, ...any)                     {}
func (l *compatLogger) Error(msg string, _ ...any)              { l.record(msg) }
func (l *compatLogger) Fatal(string, ...any)                    {}
func (l *compatLogger) WithContext(context.Context) glog.Logger { return l }
