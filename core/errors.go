package core

import (
	"errors"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	PaymentErrorBadInput          = "PAYMENT_BAD_INPUT"
	PaymentErrorStateMissing      = "PAYMENT_STATE_MISSING"
	PaymentErrorBuyerInfoMissing  = "PAYMENT_BUYER_INFO_MISSING"
	PaymentErrorDispatchFailed    = "PAYMENT_NOTIFICATION_DISPATCH_FAILED"
	PaymentErrorDispatchLogFailed = "PAYMENT_DISPATCH_LOG_FAILED"
	PaymentErrorSessionNotFound   = "PAYMENT_SESSION_NOT_FOUND"
	PaymentErrorSessionLocked     = "PAYMENT_SESSION_LOCKED"
	PaymentErrorInternal          = "PAYMENT_INTERNAL_ERROR"
)

var (
	ErrSessionNotFound = errors.New("core: session not found")
	ErrSessionLocked   = errors.New("core: session lock already held")
)

// StateMissingError reports a governance call on a session without
// flow-control state.
func StateMissingError(sessionID string) *goerrors.Error {
	return goerrors.New("core: flow control state is missing for session", goerrors.CategoryBadInput).
		WithCode(http.StatusConflict).
		WithTextCode(PaymentErrorStateMissing).
		WithMetadata(map[string]any{"session_id": strings.TrimSpace(sessionID)})
}

// MissingBuyerInfoError reports a completion notification requested for a
// session that lacks the buyer fields the payload needs.
func MissingBuyerInfoError(sessionID string, reason string) *goerrors.Error {
	return goerrors.New("core: buyer info is missing: "+reason, goerrors.CategoryBadInput).
		WithCode(http.StatusUnprocessableEntity).
		WithTextCode(PaymentErrorBuyerInfoMissing).
		WithMetadata(map[string]any{"session_id": strings.TrimSpace(sessionID)})
}

// ChannelDispatchError wraps a notification channel failure. The channel's
// error stays reachable through errors.Is and errors.As.
func ChannelDispatchError(source error, recipientID string, topic string) *goerrors.Error {
	return goerrors.Wrap(source, goerrors.CategoryExternal, "core: notification channel dispatch failed").
		WithCode(http.StatusBadGateway).
		WithTextCode(PaymentErrorDispatchFailed).
		WithMetadata(map[string]any{
			"recipient_id": recipientID,
			"topic":        topic,
		})
}

func IsStateMissing(err error) bool {
	return hasTextCode(err, PaymentErrorStateMissing)
}

func IsMissingBuyerInfo(err error) bool {
	return hasTextCode(err, PaymentErrorBuyerInfoMissing)
}

func IsChannelDispatch(err error) bool {
	return hasTextCode(err, PaymentErrorDispatchFailed)
}

func hasTextCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return false
	}
	return richErr.TextCode == code
}

func badInputError(message string) *goerrors.Error {
	return newPaymentError(message, goerrors.CategoryBadInput, PaymentErrorBadInput)
}

func dependencyError(message string) *goerrors.Error {
	return newPaymentError(message, goerrors.CategoryInternal, PaymentErrorInternal)
}

func paymentErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensurePaymentErrorEnvelope(richErr)
	}

	switch {
	case errors.Is(err, ErrSessionNotFound):
		return ensurePaymentErrorEnvelope(
			goerrors.Wrap(err, goerrors.CategoryNotFound, err.Error()).WithTextCode(PaymentErrorSessionNotFound),
		)
	case errors.Is(err, ErrSessionLocked):
		return ensurePaymentErrorEnvelope(
			goerrors.Wrap(err, goerrors.CategoryConflict, err.Error()).WithTextCode(PaymentErrorSessionLocked),
		)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "required"), strings.Contains(msg, "invalid"), strings.Contains(msg, "must be"):
		return newPaymentError(err.Error(), goerrors.CategoryBadInput, PaymentErrorBadInput)
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensurePaymentErrorEnvelope(mapped)
}

func newPaymentError(message string, category goerrors.Category, textCode string) *goerrors.Error {
	return ensurePaymentErrorEnvelope(
		goerrors.New(message, category).
			WithTextCode(textCode),
	)
}

func ensurePaymentErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = paymentHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultPaymentTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultPaymentTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return PaymentErrorBadInput
	case goerrors.CategoryNotFound:
		return PaymentErrorSessionNotFound
	case goerrors.CategoryConflict:
		return PaymentErrorSessionLocked
	case goerrors.CategoryExternal:
		return PaymentErrorDispatchFailed
	default:
		return PaymentErrorInternal
	}
}

func paymentHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryConflict:
		return http.StatusConflict
	case goerrors.CategoryExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
