package command

import (
	"context"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-paysession/core"
)

func TestRecordPaymentAttemptMessage_ValidateReturnsRichError(t *testing.T) {
	err := (RecordPaymentAttemptMessage{}).Validate()
	if err == nil {
		t.Fatalf("expected validation error")
	}

	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.Category != goerrors.CategoryValidation {
		t.Fatalf("expected validation category, got %q", rich.Category)
	}
	if rich.TextCode != core.PaymentErrorBadInput {
		t.Fatalf("expected %q text code, got %q", core.PaymentErrorBadInput, rich.TextCode)
	}
}

func TestCompletePaymentCommand_NilServiceReturnsRichError(t *testing.T) {
	var cmd *CompletePaymentCommand
	err := cmd.Execute(context.Background(), CompletePaymentMessage{})
	if err == nil {
		t.Fatalf("expected command dependency error")
	}

	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.Category != goerrors.CategoryInternal {
		t.Fatalf("expected internal category, got %q", rich.Category)
	}
	if rich.TextCode != core.PaymentErrorInternal {
		t.Fatalf("expected %q text code, got %q", core.PaymentErrorInternal, rich.TextCode)
	}
}
