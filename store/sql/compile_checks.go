package sqlstore

import "github.com/goliatone/go-paysession/core"

var (
	_ core.SessionStore            = (*SessionStore)(nil)
	_ core.SessionStore            = (*CachedSessionStore)(nil)
	_ core.NotificationDispatchLog = (*NotificationDispatchStore)(nil)
	_ core.StoreProvider           = (*RepositoryFactory)(nil)
	_ core.RepositoryStoreFactory  = (*RepositoryFactory)(nil)
)
