package query

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-paysession/core"
)

var (
	_ gocmd.Querier[LoadFlowControlStateMessage, core.FlowControlState] = (*LoadFlowControlStateQuery)(nil)
	_ gocmd.Querier[LoadSessionMessage, core.SessionContext]            = (*LoadSessionQuery)(nil)
)
