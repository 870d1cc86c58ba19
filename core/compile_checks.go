package core

import glog "github.com/goliatone/go-logger/glog"

var (
	_ SessionStore            = (*MemorySessionStore)(nil)
	_ SessionLocker           = (*MemorySessionLocker)(nil)
	_ SecurityContextProvider = RequestAttributeSecurityProvider{}
	_ NotificationChannel     = NotificationChannelFunc(nil)
	_ MetricsRecorder         = NopMetricsRecorder{}
	_ ConfigProvider          = (*CfgxConfigProvider)(nil)
	_ OptionsResolver         = GoOptionsResolver{}
	_ RawConfigLoader         = staticRawConfigLoader{}

	_ Logger         = glog.Nop()
	_ LoggerProvider = glog.ProviderFromLogger(glog.Nop())
)
