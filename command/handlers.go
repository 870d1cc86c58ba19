package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-paysession/core"
)

type MutatingService interface {
	EstablishSession(ctx context.Context, session core.SessionContext) (core.SessionContext, error)
	RecordPaymentAttempt(ctx context.Context, sessionID string) (core.AttemptResult, error)
	CompletePayment(ctx context.Context, req core.CompletionRequest) (core.NotificationPayload, error)
}

// CompletionEnqueuer is implemented by services that can hand completion
// notifications to a job queue.
type CompletionEnqueuer interface {
	EnqueueCompletionNotification(ctx context.Context, req core.CompletionRequest) error
}

type EstablishSessionCommand struct {
	service MutatingService
}

func NewEstablishSessionCommand(service MutatingService) *EstablishSessionCommand {
	return &EstablishSessionCommand{service: service}
}

func (c *EstablishSessionCommand) Execute(ctx context.Context, msg EstablishSessionMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: session service is required")
	}
	out, err := c.service.EstablishSession(ctx, msg.Session)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type RecordPaymentAttemptCommand struct {
	service MutatingService
}

func NewRecordPaymentAttemptCommand(service MutatingService) *RecordPaymentAttemptCommand {
	return &RecordPaymentAttemptCommand{service: service}
}

func (c *RecordPaymentAttemptCommand) Execute(ctx context.Context, msg RecordPaymentAttemptMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: attempt service is required")
	}
	out, err := c.service.RecordPaymentAttempt(ctx, msg.SessionID)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type CompletePaymentCommand struct {
	service MutatingService
}

func NewCompletePaymentCommand(service MutatingService) *CompletePaymentCommand {
	return &CompletePaymentCommand{service: service}
}

// Execute stores the assembled payload whenever one is returned, including
// alongside a channel dispatch error.
func (c *CompletePaymentCommand) Execute(ctx context.Context, msg CompletePaymentMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: completion service is required")
	}
	out, err := c.service.CompletePayment(ctx, msg.Request)
	if out != nil {
		storeResult(ctx, out)
	}
	return err
}

type EnqueueCompletionCommand struct {
	service CompletionEnqueuer
}

func NewEnqueueCompletionCommand(service CompletionEnqueuer) *EnqueueCompletionCommand {
	return &EnqueueCompletionCommand{service: service}
}

func (c *EnqueueCompletionCommand) Execute(ctx context.Context, msg EnqueueCompletionMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: completion enqueuer is required")
	}
	return c.service.EnqueueCompletionNotification(ctx, msg.Request)
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
