package query

import "strings"

const (
	TypeLoadFlowControlState = "paysession.query.flow_control.load"
	TypeLoadSession          = "paysession.query.session.load"
)

type LoadFlowControlStateMessage struct {
	SessionID string
}

func (LoadFlowControlStateMessage) Type() string { return TypeLoadFlowControlState }

func (m LoadFlowControlStateMessage) Validate() error {
	if strings.TrimSpace(m.SessionID) == "" {
		return queryValidationError("session_id", "is required")
	}
	return nil
}

type LoadSessionMessage struct {
	SessionID string
}

func (LoadSessionMessage) Type() string { return TypeLoadSession }

func (m LoadSessionMessage) Validate() error {
	if strings.TrimSpace(m.SessionID) == "" {
		return queryValidationError("session_id", "is required")
	}
	return nil
}
