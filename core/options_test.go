package core

import (
	"context"
	"testing"

	glog "github.com/goliatone/go-logger/glog"
)

func TestNewService_UsesDefaults(t *testing.T) {
	svc := mustService(t, DefaultConfig())
	deps := svc.Dependencies()

	if deps.Logger == nil || deps.LoggerProvider == nil {
		t.Fatalf("expected default logger wiring")
	}
	if _, ok := deps.MetricsRecorder.(NopMetricsRecorder); !ok {
		t.Fatalf("expected nop metrics recorder, got %T", deps.MetricsRecorder)
	}
	if _, ok := deps.SessionStore.(*MemorySessionStore); !ok {
		t.Fatalf("expected memory session store, got %T", deps.SessionStore)
	}
	if _, ok := deps.SessionLocker.(*MemorySessionLocker); !ok {
		t.Fatalf("expected memory session locker, got %T", deps.SessionLocker)
	}
	if _, ok := deps.SecurityContextProvider.(RequestAttributeSecurityProvider); !ok {
		t.Fatalf("expected request attribute security provider, got %T", deps.SecurityContextProvider)
	}
	if deps.NotificationAssembler != nil {
		t.Fatalf("expected no assembler without a notification channel")
	}
	if deps.AttemptGovernor == nil || deps.AttemptGovernor.MaxAttempts() != DefaultMaxAttempts {
		t.Fatalf("expected governor with default ceiling")
	}
}

func TestNewService_LoggerProviderTakesPrecedence(t *testing.T) {
	named := newCaptureLogger()
	svc := mustService(t, DefaultConfig(),
		WithLogger(stubLogger{}),
		WithLoggerProvider(stubLoggerProvider{logger: named}),
	)
	if _, err := svc.EstablishSession(context.Background(), SessionContext{ID: "sess_1"}); err != nil {
		t.Fatalf("establish session: %v", err)
	}
	if len(named.snapshot()) == 0 {
		t.Fatalf("expected provider logger to receive operation logs")
	}
}

func TestNewService_NopLoggerFallback(t *testing.T) {
	svc := mustService(t, DefaultConfig(), WithLoggerProvider(glog.ProviderFromLogger(glog.Nop())))
	if svc.Dependencies().Logger == nil {
		t.Fatalf("expected logger to be resolved")
	}
}

func TestNewService_ConfigLayering(t *testing.T) {
	loader := mapRawLoader{values: map[string]any{
		"attempts": map[string]any{"max_attempts": 5},
		"notifications": map[string]any{
			"multi_transaction_policy": "at_least_one",
		},
	}}
	svc := mustService(t, Config{SessionLockTTLSeconds: 90},
		WithConfigProvider(NewCfgxConfigProvider(loader)),
	)
	cfg := svc.Config()

	if cfg.Attempts.MaxAttempts != 5 {
		t.Fatalf("expected loaded max attempts 5, got %d", cfg.Attempts.MaxAttempts)
	}
	if cfg.Notifications.MultiTransactionPolicy != MultiTransactionAtLeastOne {
		t.Fatalf("expected loaded policy, got %q", cfg.Notifications.MultiTransactionPolicy)
	}
	if cfg.SessionLockTTLSeconds != 90 {
		t.Fatalf("expected runtime lock ttl 90, got %d", cfg.SessionLockTTLSeconds)
	}
	if cfg.Notifications.Topics.Multi != TopicMultiPaymentBuyerReceipt {
		t.Fatalf("expected default topic to survive, got %q", cfg.Notifications.Topics.Multi)
	}
	if cfg.ServiceName != "paysession" {
		t.Fatalf("expected default service name, got %q", cfg.ServiceName)
	}
	if svc.Dependencies().AttemptGovernor.MaxAttempts() != 5 {
		t.Fatalf("expected governor to use resolved ceiling")
	}
}

func TestNewService_RuntimeOverridesLoaded(t *testing.T) {
	loader := mapRawLoader{values: map[string]any{
		"attempts": map[string]any{"max_attempts": 5},
	}}
	runtime := Config{Attempts: AttemptsConfig{MaxAttempts: 2}}
	svc := mustService(t, runtime, WithConfigProvider(NewCfgxConfigProvider(loader)))
	if got := svc.Config().Attempts.MaxAttempts; got != 2 {
		t.Fatalf("expected runtime max attempts 2, got %d", got)
	}
}

func TestNewService_RejectsInvalidConfig(t *testing.T) {
	loader := mapRawLoader{values: map[string]any{
		"notifications": map[string]any{"multi_transaction_policy": "sometimes"},
	}}
	if _, err := NewService(DefaultConfig(), WithConfigProvider(NewCfgxConfigProvider(loader))); err == nil {
		t.Fatalf("expected invalid policy to be rejected")
	}
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "zero max attempts", mutate: func(c *Config) { c.Attempts.MaxAttempts = 0 }},
		{name: "blank service name", mutate: func(c *Config) { c.ServiceName = " " }},
		{name: "negative lock ttl", mutate: func(c *Config) { c.SessionLockTTLSeconds = -1 }},
		{name: "blank attribute", mutate: func(c *Config) { c.Notifications.SecurityContextAttribute = "" }},
		{name: "unknown policy", mutate: func(c *Config) { c.Notifications.MultiTransactionPolicy = "maybe" }},
		{name: "blank topic", mutate: func(c *Config) { c.Notifications.Topics.None = "" }},
	}
	for _, tc := range cases {
		cfg := DefaultConfig()
		tc.mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestCfgxConfigProvider_NilLoader(t *testing.T) {
	cfg, err := NewCfgxConfigProvider(nil).Load(context.Background(), DefaultConfig())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Attempts.MaxAttempts != DefaultMaxAttempts {
		t.Fatalf("expected defaults, got %#v", cfg)
	}
}
