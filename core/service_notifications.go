package core

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	completionParamSessionID = "session_id"
	completionParamPayment   = "payment"

	completionDedupPolicy = "drop"
)

type completionJobAmount struct {
	Units    int64  `json:"units"`
	Scale    int32  `json:"scale"`
	Currency string `json:"currency"`
}

type completionJobTransaction struct {
	ID     string              `json:"id"`
	Amount completionJobAmount `json:"amount"`
}

type completionJobPayment struct {
	ID           string                     `json:"id"`
	Transactions []completionJobTransaction `json:"transactions,omitempty"`
	Amount       completionJobAmount        `json:"amount"`
}

// CompletionIdempotencyKey is the queue dedup key for a payment's completion
// notification.
func CompletionIdempotencyKey(paymentID string) string {
	return "payment-completion:" + strings.TrimSpace(paymentID)
}

// EnqueueCompletionNotification schedules CompletePayment on the job queue.
// The queue drops duplicates for the same payment.
func (s *Service) EnqueueCompletionNotification(ctx context.Context, req CompletionRequest) (err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{
		"session_id": req.SessionID,
		"payment_id": req.Payment.ID,
	}
	defer func() {
		s.observeOperation(ctx, startedAt, "enqueue_completion_notification", err, fields)
	}()

	if s == nil || s.jobEnqueuer == nil {
		err = s.mapError(dependencyError("core: job enqueuer is required"))
		return err
	}
	if err = req.Validate(); err != nil {
		err = s.mapError(err)
		return err
	}
	msg, err := completionJobMessage(req)
	if err != nil {
		err = s.mapError(err)
		return err
	}
	if err = s.jobEnqueuer.Enqueue(ctx, msg); err != nil {
		err = s.mapError(err)
		return err
	}
	return nil
}

// ProcessCompletionDelivery runs a queued completion. A failed delivery is
// dead-lettered rather than requeued so the buyer is never notified twice.
func (s *Service) ProcessCompletionDelivery(ctx context.Context, delivery JobDelivery) (err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{}
	defer func() {
		s.observeOperation(ctx, startedAt, "process_completion_delivery", err, fields)
	}()

	if delivery == nil {
		err = s.mapError(badInputError("core: job delivery is required"))
		return err
	}
	req, decodeErr := decodeCompletionJob(delivery.Message())
	if decodeErr == nil {
		fields["session_id"] = req.SessionID
		fields["payment_id"] = req.Payment.ID
		_, decodeErr = s.CompletePayment(ctx, req)
	}
	if decodeErr != nil {
		err = s.mapError(decodeErr)
		if nackErr := delivery.Nack(ctx, JobNackOptions{
			Requeue:    false,
			DeadLetter: true,
			Reason:     err.Error(),
		}); nackErr != nil {
			s.logError(ctx, "completion delivery nack failed", map[string]any{
				"error": nackErr.Error(),
			})
		}
		return err
	}
	if err = delivery.Ack(ctx); err != nil {
		err = s.mapError(err)
		return err
	}
	return nil
}

func completionJobMessage(req CompletionRequest) (*JobExecutionMessage, error) {
	encoded, err := json.Marshal(toCompletionJobPayment(req.Payment))
	if err != nil {
		return nil, fmt.Errorf("core: encode completion payment: %w", err)
	}
	return &JobExecutionMessage{
		JobID: JobIDCompletionNotification,
		Parameters: map[string]any{
			completionParamSessionID: strings.TrimSpace(req.SessionID),
			completionParamPayment:   string(encoded),
		},
		IdempotencyKey: CompletionIdempotencyKey(req.Payment.ID),
		DedupPolicy:    completionDedupPolicy,
	}, nil
}

func decodeCompletionJob(msg *JobExecutionMessage) (CompletionRequest, error) {
	if msg == nil {
		return CompletionRequest{}, badInputError("core: job message is required")
	}
	if strings.TrimSpace(msg.JobID) != JobIDCompletionNotification {
		return CompletionRequest{}, badInputError(fmt.Sprintf("core: unexpected job id %q", msg.JobID))
	}
	sessionID, _ := msg.Parameters[completionParamSessionID].(string)

	var raw []byte
	switch typed := msg.Parameters[completionParamPayment].(type) {
	case string:
		raw = []byte(typed)
	case []byte:
		raw = typed
	case nil:
		return CompletionRequest{}, badInputError("core: completion job payment is required")
	default:
		encoded, err := json.Marshal(typed)
		if err != nil {
			return CompletionRequest{}, badInputError("core: completion job payment is invalid")
		}
		raw = encoded
	}

	var payment completionJobPayment
	if err := json.Unmarshal(raw, &payment); err != nil {
		return CompletionRequest{}, badInputError("core: completion job payment is invalid: " + err.Error())
	}
	req := CompletionRequest{
		SessionID: strings.TrimSpace(sessionID),
		Payment:   fromCompletionJobPayment(payment),
	}
	if err := req.Validate(); err != nil {
		return CompletionRequest{}, err
	}
	return req, nil
}

func toCompletionJobPayment(payment PaymentRecord) completionJobPayment {
	out := completionJobPayment{
		ID:     payment.ID,
		Amount: toCompletionJobAmount(payment.Amount),
	}
	for _, txn := range payment.Transactions {
		out.Transactions = append(out.Transactions, completionJobTransaction{
			ID:     txn.ID,
			Amount: toCompletionJobAmount(txn.Amount),
		})
	}
	return out
}

func fromCompletionJobPayment(payment completionJobPayment) PaymentRecord {
	out := PaymentRecord{
		ID:     payment.ID,
		Amount: NewAmount(payment.Amount.Units, payment.Amount.Scale, payment.Amount.Currency),
	}
	for _, txn := range payment.Transactions {
		out.Transactions = append(out.Transactions, Transaction{
			ID:     txn.ID,
			Amount: NewAmount(txn.Amount.Units, txn.Amount.Scale, txn.Amount.Currency),
		})
	}
	return out
}

func toCompletionJobAmount(amount Amount) completionJobAmount {
	return completionJobAmount{
		Units:    amount.Units,
		Scale:    amount.Scale,
		Currency: amount.Currency,
	}
}
