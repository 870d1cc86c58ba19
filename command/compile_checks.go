package command

import gocmd "github.com/goliatone/go-command"

var (
	_ gocmd.Commander[EstablishSessionMessage]     = (*EstablishSessionCommand)(nil)
	_ gocmd.Commander[RecordPaymentAttemptMessage] = (*RecordPaymentAttemptCommand)(nil)
	_ gocmd.Commander[CompletePaymentMessage]      = (*CompletePaymentCommand)(nil)
	_ gocmd.Commander[EnqueueCompletionMessage]    = (*EnqueueCompletionCommand)(nil)
)
