package gocommand

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-command"
	jobqueuecommand "github.com/goliatone/go-job/queue/command"
	paysession "github.com/goliatone/go-paysession"
	paysessioncommand "github.com/goliatone/go-paysession/command"
	"github.com/goliatone/go-paysession/core"
	paysessionquery "github.com/goliatone/go-paysession/query"
)

type okMessage struct{}

func (okMessage) Type() string { return "paysession.test.ok" }

type invalidMessage struct{}

func (invalidMessage) Type() string { return "" }

type failingMessage struct{}

func (failingMessage) Type() string { return "paysession.test.fail" }

func (failingMessage) Validate() error { return errors.New("invalid payload") }

type dispatchMessage struct {
	ID string
}

func (dispatchMessage) Type() string { return "paysession.test.dispatch" }

type queueMessage struct{}

func (queueMessage) Type() string { return "paysession.test.queue" }

func TestValidateMessageContract(t *testing.T) {
	if err := ValidateMessageContract(okMessage{}); err != nil {
		t.Fatalf("expected valid message, got %v", err)
	}
	if err := ValidateMessageContract(invalidMessage{}); err == nil {
		t.Fatalf("expected empty type to fail contract validation")
	}
	if err := ValidateMessageContract(failingMessage{}); err == nil {
		t.Fatalf("expected Validate() failure to bubble")
	}
}

func TestRegistryAndDispatchWiring(t *testing.T) {
	adapter := NewRegistryAdapter(command.NewRegistry())
	executed := 0
	customResolverCalled := 0

	cmd := command.CommandFunc[dispatchMessage](func(context.Context, dispatchMessage) error {
		executed++
		return nil
	})

	if _, err := RegisterAndSubscribe(adapter, cmd); err != nil {
		t.Fatalf("register and subscribe: %v", err)
	}
	if err := adapter.AddResolver("custom", func(any, command.CommandMeta, *command.Registry) error {
		customResolverCalled++
		return nil
	}); err != nil {
		t.Fatalf("add resolver: %v", err)
	}
	if !adapter.HasResolver("custom") {
		t.Fatalf("expected custom resolver to be registered")
	}
	if err := adapter.Initialize(); err != nil {
		t.Fatalf("initialize registry: %v", err)
	}
	if customResolverCalled == 0 {
		t.Fatalf("expected resolver hook to run during initialization")
	}

	if err := Dispatch(context.Background(), dispatchMessage{ID: "m1"}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if executed != 1 {
		t.Fatalf("expected command execution count=1, got %d", executed)
	}
}

func TestQueueResolverHookWiring(t *testing.T) {
	adapter := NewRegistryAdapter(command.NewRegistry())
	queueRegistry := jobqueuecommand.NewRegistry()

	cmd := command.CommandFunc[queueMessage](func(context.Context, queueMessage) error { return nil })

	if err := adapter.AddQueueResolver("queue", queueRegistry); err != nil {
		t.Fatalf("add queue resolver: %v", err)
	}
	if err := adapter.RegisterCommand(cmd); err != nil {
		t.Fatalf("register command: %v", err)
	}
	if err := adapter.Initialize(); err != nil {
		t.Fatalf("initialize registry: %v", err)
	}

	if _, ok := queueRegistry.Get("paysession.test.queue"); !ok {
		t.Fatalf("expected command to be mirrored into queue registry")
	}
}

func TestRegisterFacade_DispatchesThroughService(t *testing.T) {
	ctx := context.Background()
	channelCalls := 0
	svc, err := paysession.NewService(paysession.DefaultConfig(),
		paysession.WithNotificationChannel(core.NotificationChannelFunc(func(
			context.Context, core.NotificationPayload, string, string, core.SecurityContext,
		) error {
			channelCalls++
			return nil
		})),
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	facade, err := paysession.NewFacade(svc)
	if err != nil {
		t.Fatalf("new facade: %v", err)
	}

	adapter := NewRegistryAdapter(command.NewRegistry())
	subscriptions, err := RegisterFacade(adapter, facade)
	if err != nil {
		t.Fatalf("register facade: %v", err)
	}
	defer unsubscribeAll(subscriptions)
	if len(subscriptions) != 5 {
		t.Fatalf("expected 5 subscriptions without enqueue support, got %d", len(subscriptions))
	}
	if err := adapter.Initialize(); err != nil {
		t.Fatalf("initialize registry: %v", err)
	}

	if err := Dispatch(ctx, paysessioncommand.EstablishSessionMessage{Session: core.SessionContext{
		ID:    "sess_dispatch",
		Buyer: &core.BuyerInfo{Name: "Ann", AccountID: 42},
	}}); err != nil {
		t.Fatalf("dispatch establish: %v", err)
	}
	for range 2 {
		if err := Dispatch(ctx, paysessioncommand.RecordPaymentAttemptMessage{SessionID: "sess_dispatch"}); err != nil {
			t.Fatalf("dispatch record attempt: %v", err)
		}
	}

	state, err := Query[paysessionquery.LoadFlowControlStateMessage, core.FlowControlState](
		ctx,
		paysessionquery.LoadFlowControlStateMessage{SessionID: "sess_dispatch"},
	)
	if err != nil {
		t.Fatalf("query flow control: %v", err)
	}
	if state.Attempts() != 2 {
		t.Fatalf("expected 2 attempts, got %d", state.Attempts())
	}

	if err := Dispatch(ctx, paysessioncommand.CompletePaymentMessage{Request: core.CompletionRequest{
		SessionID: "sess_dispatch",
		Payment:   core.PaymentRecord{ID: "pay_dispatch", Transactions: []core.Transaction{{ID: "t1"}}},
	}}); err != nil {
		t.Fatalf("dispatch complete payment: %v", err)
	}
	if channelCalls != 1 {
		t.Fatalf("expected one channel dispatch, got %d", channelCalls)
	}
}

func TestRegisterFacade_RequiresFacade(t *testing.T) {
	if _, err := RegisterFacade(NewRegistryAdapter(nil), nil); err == nil {
		t.Fatalf("expected error for nil facade")
	}
}
