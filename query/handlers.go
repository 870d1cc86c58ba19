package query

import (
	"context"

	"github.com/goliatone/go-paysession/core"
)

type FlowControlReader interface {
	LoadFlowControlState(ctx context.Context, sessionID string) (core.FlowControlState, error)
}

type SessionReader interface {
	LoadSession(ctx context.Context, sessionID string) (core.SessionContext, error)
}

type LoadFlowControlStateQuery struct {
	reader FlowControlReader
}

func NewLoadFlowControlStateQuery(reader FlowControlReader) *LoadFlowControlStateQuery {
	return &LoadFlowControlStateQuery{reader: reader}
}

func (q *LoadFlowControlStateQuery) Query(
	ctx context.Context,
	msg LoadFlowControlStateMessage,
) (core.FlowControlState, error) {
	if q == nil || q.reader == nil {
		return core.FlowControlState{}, queryDependencyError("query: flow control reader is required")
	}
	return q.reader.LoadFlowControlState(ctx, msg.SessionID)
}

type LoadSessionQuery struct {
	reader SessionReader
}

func NewLoadSessionQuery(reader SessionReader) *LoadSessionQuery {
	return &LoadSessionQuery{reader: reader}
}

func (q *LoadSessionQuery) Query(ctx context.Context, msg LoadSessionMessage) (core.SessionContext, error) {
	if q == nil || q.reader == nil {
		return core.SessionContext{}, queryDependencyError("query: session reader is required")
	}
	return q.reader.LoadSession(ctx, msg.SessionID)
}
