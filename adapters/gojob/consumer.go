package gojob

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-job/queue/worker"
	glog "github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-paysession/adapters/gologger"
	"github.com/goliatone/go-paysession/core"
)

const (
	jobLoggerName       = "paysession.jobs"
	defaultPollInterval = time.Second
)

// CompletionProcessor handles one completion delivery, including its ack or
// nack. *core.Service implements it.
type CompletionProcessor interface {
	ProcessCompletionDelivery(ctx context.Context, delivery core.JobDelivery) error
}

type CompletionConsumer struct {
	dequeuer  core.JobDequeuer
	processor CompletionProcessor
	hook      worker.Hook
	interval  time.Duration
	now       func() time.Time
}

type ConsumerOption func(*CompletionConsumer)

// WithPollInterval sets how long Run waits after an empty dequeue.
func WithPollInterval(interval time.Duration) ConsumerOption {
	return func(c *CompletionConsumer) {
		if interval > 0 {
			c.interval = interval
		}
	}
}

func WithWorkerHook(hook worker.Hook) ConsumerOption {
	return func(c *CompletionConsumer) {
		c.hook = hook
	}
}

func NewCompletionConsumer(
	dequeuer core.JobDequeuer,
	processor CompletionProcessor,
	opts ...ConsumerOption,
) (*CompletionConsumer, error) {
	if dequeuer == nil {
		return nil, fmt.Errorf("gojob: dequeuer is required")
	}
	if processor == nil {
		return nil, fmt.Errorf("gojob: completion processor is required")
	}
	consumer := &CompletionConsumer{
		dequeuer:  dequeuer,
		processor: processor,
		interval:  defaultPollInterval,
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(consumer)
		}
	}
	return consumer, nil
}

// RunOnce takes one delivery off the queue. Messages for other job ids are
// dead-lettered without being processed.
func (c *CompletionConsumer) RunOnce(ctx context.Context) error {
	_, dequeueErr, processErr := c.poll(ctx)
	if dequeueErr != nil {
		return dequeueErr
	}
	return processErr
}

// Run polls until ctx is done or the dequeuer fails. Processing errors are
// reported through the hook and do not stop the loop. After an empty dequeue
// Run waits for the poll interval before asking again.
func (c *CompletionConsumer) Run(ctx context.Context) error {
	var idle *time.Timer
	defer func() {
		if idle != nil {
			idle.Stop()
		}
	}()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		received, dequeueErr, _ := c.poll(ctx)
		if dequeueErr != nil {
			if errors.Is(dequeueErr, context.Canceled) || errors.Is(dequeueErr, context.DeadlineExceeded) {
				return ctx.Err()
			}
			return dequeueErr
		}
		if received {
			continue
		}
		if idle == nil {
			idle = time.NewTimer(c.interval)
		} else {
			idle.Reset(c.interval)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-idle.C:
		}
	}
}

func (c *CompletionConsumer) poll(ctx context.Context) (received bool, dequeueErr error, processErr error) {
	if c == nil || c.dequeuer == nil || c.processor == nil {
		return false, fmt.Errorf("gojob: completion consumer is not configured"), nil
	}
	delivery, err := c.dequeuer.Dequeue(ctx)
	if err != nil {
		return false, err, nil
	}
	if delivery == nil {
		return false, nil, nil
	}

	msg := delivery.Message()
	event := worker.Event{
		Message:   ToExecutionMessage(msg),
		Attempt:   1,
		StartedAt: c.now(),
	}
	c.onStart(ctx, event)

	if msg == nil || strings.TrimSpace(msg.JobID) != JobIDCompletionNotification {
		processErr = fmt.Errorf("gojob: unexpected job %q", jobID(msg))
		if nackErr := delivery.Nack(ctx, core.JobNackOptions{
			DeadLetter: true,
			Reason:     processErr.Error(),
		}); nackErr != nil {
			processErr = errors.Join(processErr, nackErr)
		}
	} else {
		processErr = c.processor.ProcessCompletionDelivery(ctx, delivery)
	}

	event.Duration = c.now().Sub(event.StartedAt)
	event.Err = processErr
	if processErr != nil {
		c.onFailure(ctx, event)
		return true, nil, processErr
	}
	c.onSuccess(ctx, event)
	return true, nil, nil
}

func (c *CompletionConsumer) onStart(ctx context.Context, event worker.Event) {
	if c.hook != nil {
		c.hook.OnStart(ctx, event)
	}
}

func (c *CompletionConsumer) onSuccess(ctx context.Context, event worker.Event) {
	if c.hook != nil {
		c.hook.OnSuccess(ctx, event)
	}
}

func (c *CompletionConsumer) onFailure(ctx context.Context, event worker.Event) {
	if c.hook != nil {
		c.hook.OnFailure(ctx, event)
	}
}

func jobID(msg *core.JobExecutionMessage) string {
	if msg == nil {
		return ""
	}
	return msg.JobID
}

// LoggingHook writes one structured line per worker event.
type LoggingHook struct {
	logger glog.Logger
}

func NewLoggingHook(logger glog.Logger) *LoggingHook {
	return &LoggingHook{logger: logger}
}

// NewLoggingHookFromProvider resolves the job logger with provider > logger
// precedence.
func NewLoggingHookFromProvider(provider glog.LoggerProvider, logger glog.Logger) *LoggingHook {
	_, resolved := gologger.Resolve(jobLoggerName, provider, logger)
	return NewLoggingHook(resolved)
}

func (h *LoggingHook) OnStart(ctx context.Context, event worker.Event) {
	h.log(ctx, "info", "completion job started", event)
}

func (h *LoggingHook) OnSuccess(ctx context.Context, event worker.Event) {
	h.log(ctx, "info", "completion job succeeded", event)
}

func (h *LoggingHook) OnFailure(ctx context.Context, event worker.Event) {
	h.log(ctx, "error", "completion job failed", event)
}

func (h *LoggingHook) OnRetry(ctx context.Context, event worker.Event) {
	h.log(ctx, "info", "completion job retry scheduled", event)
}

func (h *LoggingHook) log(ctx context.Context, level string, message string, event worker.Event) {
	if h == nil || h.logger == nil {
		return
	}
	logger := h.logger
	if ctx != nil {
		logger = logger.WithContext(ctx)
	}
	args := []any{"attempt", event.Attempt}
	if event.Message != nil {
		args = append(args,
			"job_id", event.Message.JobID,
			"idempotency_key", event.Message.IdempotencyKey,
		)
	}
	if event.Duration > 0 {
		args = append(args, "duration_ms", event.Duration.Milliseconds())
	}
	if event.Delay > 0 {
		args = append(args, "delay_ms", event.Delay.Milliseconds())
	}
	if event.Err != nil {
		args = append(args, "error", event.Err.Error())
	}
	if level == "error" {
		logger.Error(message, args...)
		return
	}
	logger.Info(message, args...)
}

var (
	_ worker.Hook         = (*LoggingHook)(nil)
	_ CompletionProcessor = (*core.Service)(nil)
)
