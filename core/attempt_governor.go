package core

import "fmt"

// AttemptGovernor keeps a per-session payment attempt counter saturated at a
// fixed ceiling. It holds no per-session state and does no locking; callers
// serialize governance calls on the same session.
type AttemptGovernor struct {
	maxAttempts int
}

func NewAttemptGovernor(maxAttempts int) (*AttemptGovernor, error) {
	if maxAttempts < 1 {
		return nil, badInputError(fmt.Sprintf("core: max attempts must be >= 1, got %d", maxAttempts))
	}
	return &AttemptGovernor{maxAttempts: maxAttempts}, nil
}

func (g *AttemptGovernor) MaxAttempts() int {
	if g == nil {
		return 0
	}
	return g.maxAttempts
}

// IncrementAndValidate bumps the session's attempt counter by one, clamped
// to MaxAttempts, and returns the stored value. Reaching the ceiling is not
// an error.
func (g *AttemptGovernor) IncrementAndValidate(session *SessionContext) (int, error) {
	if g == nil || g.maxAttempts < 1 {
		return 0, dependencyError("core: attempt governor is not configured")
	}
	if session == nil {
		return 0, StateMissingError("")
	}
	if session.FlowControl == nil {
		return 0, StateMissingError(session.ID)
	}

	current := max(session.FlowControl.Attempts(), 0)
	next := min(current+1, g.maxAttempts)
	session.FlowControl.PaymentAttempts = &next
	return next, nil
}
