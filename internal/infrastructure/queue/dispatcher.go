package queue

import (
	"context"
	"hash/fnv"

	"github.com/rs/zerolog"

	"github.com/usersvc/accounts-api/internal/api/metrics"
	"github.com/usersvc/accounts-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 128
)

// Dispatcher routes outbound emails to a fixed set of workers using
// consistent hashing on the recipient, so messages to the same address are
// delivered in the order they were queued.
type Dispatcher struct {
	workers []chan ports.EmailJob
	mailer  ports.Mailer
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, mailer ports.Mailer, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.EmailJob, numWorkers),
		mailer:  mailer,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.EmailJob, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands a job to the worker responsible for its recipient. Delivery
// is fire-and-forget: a full channel drops the message with a log line
// rather than blocking the request that queued it.
func (d *Dispatcher) Enqueue(_ context.Context, job ports.EmailJob) {
	select {
	case d.workers[d.shardIndex(job.To)] <- job:
	default:
		d.log.Warn().Str("to", job.To).Msg("email queue full, dropping message")
		metrics.WelcomeEmailsTotal.WithLabelValues("failed").Inc()
	}
}

// shardIndex maps a recipient deterministically to a worker index.
func (d *Dispatcher) shardIndex(to string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(to))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.EmailJob) {
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-ch:
			if !ok {
				return
			}
			if err := d.mailer.Send(job); err != nil {
				metrics.WelcomeEmailsTotal.WithLabelValues("failed").Inc()
				d.log.Error().Err(err).
					Str("to", job.To).
					Int("worker_id", id).
					Msg("email delivery failed")
				continue
			}
			metrics.WelcomeEmailsTotal.WithLabelValues("sent").Inc()
		}
	}
}
