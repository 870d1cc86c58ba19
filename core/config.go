package core

import (
	"fmt"
	"strings"
	"time"
)

const (
	DefaultMaxAttempts              = 3
	DefaultSecurityContextAttribute = "SECURITY_CONTEXT"
	defaultSessionLockTTLSeconds    = 30
)

type MultiTransactionPolicy string

const (
	// MultiTransactionMoreThanOne flags a payment as multi only when it has
	// more than one transaction.
	MultiTransactionMoreThanOne MultiTransactionPolicy = "more_than_one"
	// MultiTransactionAtLeastOne flags any payment with transactions as multi.
	MultiTransactionAtLeastOne MultiTransactionPolicy = "at_least_one"
)

type AttemptsConfig struct {
	MaxAttempts int `koanf:"max_attempts" mapstructure:"max_attempts"`
}

type TopicsConfig struct {
	None   string `koanf:"none" mapstructure:"none"`
	Single string `koanf:"single" mapstructure:"single"`
	Multi  string `koanf:"multi" mapstructure:"multi"`
}

type NotificationsConfig struct {
	SecurityContextAttribute string                 `koanf:"security_context_attribute" mapstructure:"security_context_attribute"`
	MultiTransactionPolicy   MultiTransactionPolicy `koanf:"multi_transaction_policy" mapstructure:"multi_transaction_policy"`
	Topics                   TopicsConfig           `koanf:"topics" mapstructure:"topics"`
}

type Config struct {
	ServiceName           string              `koanf:"service_name" mapstructure:"service_name"`
	Attempts              AttemptsConfig      `koanf:"attempts" mapstructure:"attempts"`
	Notifications         NotificationsConfig `koanf:"notifications" mapstructure:"notifications"`
	SessionLockTTLSeconds int                 `koanf:"session_lock_ttl_seconds" mapstructure:"session_lock_ttl_seconds"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName: "paysession",
		Attempts: AttemptsConfig{
			MaxAttempts: DefaultMaxAttempts,
		},
		Notifications:         DefaultNotificationsConfig(),
		SessionLockTTLSeconds: defaultSessionLockTTLSeconds,
	}
}

func DefaultNotificationsConfig() NotificationsConfig {
	return NotificationsConfig{
		SecurityContextAttribute: DefaultSecurityContextAttribute,
		MultiTransactionPolicy:   MultiTransactionMoreThanOne,
		Topics: TopicsConfig{
			None:   TopicBuyerReceiptEmpty,
			Single: TopicBuyerReceipt,
			Multi:  TopicMultiPaymentBuyerReceipt,
		},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	if c.Attempts.MaxAttempts < 1 {
		return fmt.Errorf("core: attempts.max_attempts must be >= 1, got %d", c.Attempts.MaxAttempts)
	}
	if c.SessionLockTTLSeconds < 0 {
		return fmt.Errorf("core: session_lock_ttl_seconds must be >= 0")
	}
	return c.Notifications.Validate()
}

func (c NotificationsConfig) Validate() error {
	if strings.TrimSpace(c.SecurityContextAttribute) == "" {
		return fmt.Errorf("core: notifications.security_context_attribute is required")
	}
	switch c.MultiTransactionPolicy {
	case MultiTransactionMoreThanOne, MultiTransactionAtLeastOne:
	default:
		return fmt.Errorf("core: notifications.multi_transaction_policy %q is invalid", c.MultiTransactionPolicy)
	}
	if strings.TrimSpace(c.Topics.None) == "" ||
		strings.TrimSpace(c.Topics.Single) == "" ||
		strings.TrimSpace(c.Topics.Multi) == "" {
		return fmt.Errorf("core: notifications.topics requires none, single and multi")
	}
	return nil
}

func (c Config) SessionLockTTL() time.Duration {
	if c.SessionLockTTLSeconds <= 0 {
		return defaultSessionLockTTLSeconds * time.Second
	}
	return time.Duration(c.SessionLockTTLSeconds) * time.Second
}
