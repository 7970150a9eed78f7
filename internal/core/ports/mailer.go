package ports

import "context"

// EmailJob is one outbound message handed to the dispatcher.
type EmailJob struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers a single email synchronously.
type Mailer interface {
	Send(job EmailJob) error
}

// EmailEnqueuer hands an email off for asynchronous delivery. Enqueueing is
// fire-and-forget: delivery failures are logged by the worker, never surfaced
// to the request that queued the message.
type EmailEnqueuer interface {
	Enqueue(ctx context.Context, job EmailJob)
}
