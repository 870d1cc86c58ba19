package core

import (
	"fmt"
	"strings"
)

const (
	TopicBuyerReceiptEmpty        = "PAYMENT_BUYER_RECEIPT_EMPTY"
	TopicBuyerReceipt             = "PAYMENT_BUYER_RECEIPT"
	TopicMultiPaymentBuyerReceipt = "MULTI_PAYMENT_BUYER_RECEIPT"
)

// TopicTable maps a payment's transaction class to its notification topic.
type TopicTable map[TransactionClass]string

func DefaultTopicTable() TopicTable {
	return NewTopicTable(DefaultNotificationsConfig().Topics)
}

func NewTopicTable(cfg TopicsConfig) TopicTable {
	return TopicTable{
		TransactionClassNone:   strings.TrimSpace(cfg.None),
		TransactionClassSingle: strings.TrimSpace(cfg.Single),
		TransactionClassMulti:  strings.TrimSpace(cfg.Multi),
	}
}

func (t TopicTable) Topic(class TransactionClass) (string, error) {
	topic, ok := t[class]
	if !ok || strings.TrimSpace(topic) == "" {
		return "", fmt.Errorf("core: no notification topic configured for transaction class %q", class)
	}
	return topic, nil
}

func (t TopicTable) Validate() error {
	for _, class := range []TransactionClass{TransactionClassNone, TransactionClassSingle, TransactionClassMulti} {
		if _, err := t.Topic(class); err != nil {
			return err
		}
	}
	return nil
}
