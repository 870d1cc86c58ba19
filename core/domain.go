package core

import "strings"

const (
	PayloadKeyBuyerName          = "BUYER_NAME"
	PayloadKeyPaymentAmount      = "PAYMENT_AMOUNT"
	PayloadKeyIsMultiTransaction = "IS_MULTI_TRANSACTION"
)

// FlowControlState is the per-session attempt record. A nil PaymentAttempts
// means no attempt was ever recorded, which is not the same as an explicit 0.
type FlowControlState struct {
	PaymentAttempts *int
}

func NewFlowControlState(attempts int) FlowControlState {
	return FlowControlState{PaymentAttempts: &attempts}
}

func (s FlowControlState) Attempts() int {
	if s.PaymentAttempts == nil {
		return 0
	}
	return *s.PaymentAttempts
}

func (s FlowControlState) Clone() FlowControlState {
	if s.PaymentAttempts == nil {
		return FlowControlState{}
	}
	value := *s.PaymentAttempts
	return FlowControlState{PaymentAttempts: &value}
}

type BuyerInfo struct {
	Name      string
	AccountID int64
}

type SessionContext struct {
	ID          string
	FlowControl *FlowControlState
	Buyer       *BuyerInfo
}

func (s SessionContext) Clone() SessionContext {
	out := SessionContext{ID: s.ID}
	if s.FlowControl != nil {
		state := s.FlowControl.Clone()
		out.FlowControl = &state
	}
	if s.Buyer != nil {
		buyer := *s.Buyer
		out.Buyer = &buyer
	}
	return out
}

type Transaction struct {
	ID     string
	Amount Amount
}

type PaymentRecord struct {
	ID           string
	Transactions []Transaction
	Amount       Amount
}

type TransactionClass string

const (
	TransactionClassNone   TransactionClass = "none"
	TransactionClassSingle TransactionClass = "single"
	TransactionClassMulti  TransactionClass = "multi"
)

func (p PaymentRecord) TransactionClass() TransactionClass {
	switch n := len(p.Transactions); {
	case n == 0:
		return TransactionClassNone
	case n == 1:
		return TransactionClassSingle
	default:
		return TransactionClassMulti
	}
}

type NotificationPayload map[string]string

func (p NotificationPayload) Clone() NotificationPayload {
	out := make(NotificationPayload, len(p))
	for key, value := range p {
		out[key] = value
	}
	return out
}

// SecurityContext is an opaque serialized token; it is never inspected.
type SecurityContext string

func (c SecurityContext) IsEmpty() bool {
	return strings.TrimSpace(string(c)) == ""
}

type AttemptResult struct {
	SessionID   string
	Attempts    int
	MaxAttempts int
	Exhausted   bool
}

type CompletionRequest struct {
	SessionID string
	Payment   PaymentRecord
}

func (r CompletionRequest) Validate() error {
	if strings.TrimSpace(r.SessionID) == "" {
		return badInputError("core: session id is required")
	}
	if strings.TrimSpace(r.Payment.ID) == "" {
		return badInputError("core: payment id is required")
	}
	return nil
}
