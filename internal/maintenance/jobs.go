package maintenance

import (
	"context"
	"log/slog"
	"time"
)

// Job is one run of a periodic task.
type Job func(ctx context.Context) error

// RunEvery runs job every interval until ctx is done. Failures are logged and
// the loop carries on. An interval of zero or less returns immediately.
func RunEvery(ctx context.Context, name string, interval time.Duration, job Job, log *slog.Logger) {
	if interval <= 0 {
		return
	}
	if log == nil {
		log = slog.Default()
	}
	log = log.With("job", name)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			start := time.Now()
			if err := job(ctx); err != nil {
				if ctx.Err() != nil {
					return
				}
				log.ErrorContext(ctx, "maintenance job failed", "error", err)
				continue
			}
			log.DebugContext(ctx, "maintenance job done", "took", time.Since(start))
		}
	}
}

// Start runs RunEvery in its own goroutine. The returned channel is closed
// once the loop has exited.
func Start(ctx context.Context, name string, interval time.Duration, job Job, log *slog.Logger) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		RunEvery(ctx, name, interval, job, log)
	}()
	return done
}
