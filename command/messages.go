package command

import (
	"strings"

	"github.com/goliatone/go-paysession/core"
)

const (
	TypeEstablishSession     = "paysession.command.session.establish"
	TypeRecordPaymentAttempt = "paysession.command.attempt.record"
	TypeCompletePayment      = "paysession.command.payment.complete"
	TypeEnqueueCompletion    = "paysession.command.notification.enqueue"
)

type EstablishSessionMessage struct {
	Session core.SessionContext
}

func (EstablishSessionMessage) Type() string { return TypeEstablishSession }

func (m EstablishSessionMessage) Validate() error {
	if m.Session.FlowControl != nil && m.Session.FlowControl.Attempts() < 0 {
		return commandValidationError("session.flow_control.payment_attempts", "must be >= 0")
	}
	return nil
}

type RecordPaymentAttemptMessage struct {
	SessionID string
}

func (RecordPaymentAttemptMessage) Type() string { return TypeRecordPaymentAttempt }

func (m RecordPaymentAttemptMessage) Validate() error {
	if strings.TrimSpace(m.SessionID) == "" {
		return commandValidationError("session_id", "is required")
	}
	return nil
}

type CompletePaymentMessage struct {
	Request core.CompletionRequest
}

func (CompletePaymentMessage) Type() string { return TypeCompletePayment }

func (m CompletePaymentMessage) Validate() error {
	return validateCompletionRequest(m.Request)
}

type EnqueueCompletionMessage struct {
	Request core.CompletionRequest
}

func (EnqueueCompletionMessage) Type() string { return TypeEnqueueCompletion }

func (m EnqueueCompletionMessage) Validate() error {
	return validateCompletionRequest(m.Request)
}

func validateCompletionRequest(req core.CompletionRequest) error {
	if strings.TrimSpace(req.SessionID) == "" {
		return commandValidationError("session_id", "is required")
	}
	if strings.TrimSpace(req.Payment.ID) == "" {
		return commandValidationError("payment.id", "is required")
	}
	return nil
}
