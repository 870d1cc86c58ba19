package core

import (
	"context"
	"strconv"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// NotificationAssembler builds the completion payload for a payment and
// hands it to the notification channel exactly once per call.
type NotificationAssembler struct {
	securityContexts SecurityContextProvider
	channel          NotificationChannel
	topics           TopicTable
	attribute        string
	multiPolicy      MultiTransactionPolicy
}

func NewNotificationAssembler(
	securityContexts SecurityContextProvider,
	channel NotificationChannel,
	cfg NotificationsConfig,
) (*NotificationAssembler, error) {
	if securityContexts == nil {
		return nil, dependencyError("core: security context provider is required")
	}
	if channel == nil {
		return nil, dependencyError("core: notification channel is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, badInputError(err.Error())
	}
	return &NotificationAssembler{
		securityContexts: securityContexts,
		channel:          channel,
		topics:           NewTopicTable(cfg.Topics),
		attribute:        strings.TrimSpace(cfg.SecurityContextAttribute),
		multiPolicy:      cfg.MultiTransactionPolicy,
	}, nil
}

// SendCompletionNotification fills scratch with the BUYER_NAME,
// PAYMENT_AMOUNT and IS_MULTI_TRANSACTION keys, replacing anything it held,
// and dispatches it to the buyer's account. On a validation error scratch is
// left untouched.
func (a *NotificationAssembler) SendCompletionNotification(
	ctx context.Context,
	session *SessionContext,
	payment PaymentRecord,
	scratch NotificationPayload,
) error {
	_, err := a.dispatch(ctx, session, payment, scratch)
	return err
}

// dispatch returns the topic it resolved once the payload reaches the
// channel step, so callers can record it even when the channel fails.
func (a *NotificationAssembler) dispatch(
	ctx context.Context,
	session *SessionContext,
	payment PaymentRecord,
	scratch NotificationPayload,
) (string, error) {
	if a == nil || a.channel == nil || a.securityContexts == nil {
		return "", dependencyError("core: notification assembler is not configured")
	}
	if scratch == nil {
		return "", badInputError("core: notification payload is required")
	}
	buyer, err := requireBuyer(session)
	if err != nil {
		return "", err
	}
	topic, err := a.topics.Topic(payment.TransactionClass())
	if err != nil {
		return "", dependencyError(err.Error())
	}

	clear(scratch)
	scratch[PayloadKeyBuyerName] = buyer.Name
	scratch[PayloadKeyPaymentAmount] = payment.Amount.String()
	scratch[PayloadKeyIsMultiTransaction] = strconv.FormatBool(a.isMultiTransaction(payment))

	securityContext, err := a.securityContexts.GetAttribute(ctx, a.attribute)
	if err != nil {
		return topic, goerrors.Wrap(err, goerrors.CategoryInternal, "core: security context lookup failed").
			WithTextCode(PaymentErrorInternal)
	}

	recipientID := strconv.FormatInt(buyer.AccountID, 10)
	if err := a.channel.SendNotification(ctx, scratch, recipientID, topic, securityContext); err != nil {
		return topic, ChannelDispatchError(err, recipientID, topic)
	}
	return topic, nil
}

func (a *NotificationAssembler) isMultiTransaction(payment PaymentRecord) bool {
	if a.multiPolicy == MultiTransactionAtLeastOne {
		return len(payment.Transactions) >= 1
	}
	return len(payment.Transactions) > 1
}

func requireBuyer(session *SessionContext) (BuyerInfo, error) {
	if session == nil {
		return BuyerInfo{}, MissingBuyerInfoError("", "session is nil")
	}
	if session.Buyer == nil {
		return BuyerInfo{}, MissingBuyerInfoError(session.ID, "session has no buyer")
	}
	if strings.TrimSpace(session.Buyer.Name) == "" {
		return BuyerInfo{}, MissingBuyerInfoError(session.ID, "buyer name is empty")
	}
	if session.Buyer.AccountID == 0 {
		return BuyerInfo{}, MissingBuyerInfoError(session.ID, "buyer account id is empty")
	}
	return *session.Buyer, nil
}
