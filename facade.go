package paysession

import (
	"fmt"

	paysessioncommand "github.com/goliatone/go-paysession/command"
	paysessionquery "github.com/goliatone/go-paysession/query"
)

type CommandQueryService interface {
	paysessioncommand.MutatingService
	paysessionquery.FlowControlReader
	paysessionquery.SessionReader
}

type Commands struct {
	EstablishSession     *paysessioncommand.EstablishSessionCommand
	RecordPaymentAttempt *paysessioncommand.RecordPaymentAttemptCommand
	CompletePayment      *paysessioncommand.CompletePaymentCommand
	// EnqueueCompletion is nil unless the service or WithCompletionEnqueuer
	// provides a CompletionEnqueuer.
	EnqueueCompletion *paysessioncommand.EnqueueCompletionCommand
}

type Queries struct {
	LoadFlowControlState *paysessionquery.LoadFlowControlStateQuery
	LoadSession          *paysessionquery.LoadSessionQuery
}

type Facade struct {
	service  CommandQueryService
	commands Commands
	queries  Queries
}

type FacadeOption func(*facadeOptions)

type facadeOptions struct {
	enqueuer paysessioncommand.CompletionEnqueuer
}

func WithCompletionEnqueuer(enqueuer paysessioncommand.CompletionEnqueuer) FacadeOption {
	return func(options *facadeOptions) {
		options.enqueuer = enqueuer
	}
}

func NewFacade(service CommandQueryService, opts ...FacadeOption) (*Facade, error) {
	if service == nil {
		return nil, fmt.Errorf("paysession: command/query service is required")
	}
	cfg := facadeOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	enqueuer := cfg.enqueuer
	if enqueuer == nil {
		if candidate, ok := service.(paysessioncommand.CompletionEnqueuer); ok {
			enqueuer = candidate
		}
	}

	facade := &Facade{service: service}
	facade.commands = Commands{
		EstablishSession:     paysessioncommand.NewEstablishSessionCommand(service),
		RecordPaymentAttempt: paysessioncommand.NewRecordPaymentAttemptCommand(service),
		CompletePayment:      paysessioncommand.NewCompletePaymentCommand(service),
	}
	if enqueuer != nil {
		facade.commands.EnqueueCompletion = paysessioncommand.NewEnqueueCompletionCommand(enqueuer)
	}
	facade.queries = Queries{
		LoadFlowControlState: paysessionquery.NewLoadFlowControlStateQuery(service),
		LoadSession:          paysessionquery.NewLoadSessionQuery(service),
	}

	return facade, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Service() CommandQueryService {
	if f == nil {
		return nil
	}
	return f.service
}

var _ CommandQueryService = (*Service)(nil)
