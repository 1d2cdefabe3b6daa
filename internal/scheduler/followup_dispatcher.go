package scheduler

import (
	"context"
	"fmt"
	"time"

	"growthscore_backend/platform/config"
	"growthscore_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// FollowUpDispatcher enqueues a tick task at a fixed interval so due
// sequence emails go out without an external cron caller. The tick itself
// is idempotent, so an overlap with an HTTP-triggered run is harmless.
type FollowUpDispatcher struct {
	client   *asynq.Client
	queue    string
	interval time.Duration
	log      *logger.Logger
}

func NewFollowUpDispatcher(cfg config.SchedulerConfig, log *logger.Logger) (*FollowUpDispatcher, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	interval := cfg.GetDispatchInterval()
	if interval <= 0 {
		interval = time.Minute
	}

	return &FollowUpDispatcher{
		client:   asynq.NewClient(opt),
		queue:    queue,
		interval: interval,
		log:      log,
	}, nil
}

func (d *FollowUpDispatcher) Close() error {
	if d == nil || d.client == nil {
		return nil
	}
	return d.client.Close()
}

func (d *FollowUpDispatcher) Run(ctx context.Context) {
	if d == nil || d.client == nil {
		return
	}

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		task, err := NewFollowUpTickTask(FollowUpTickPayload{RequestedAt: time.Now().UTC()})
		if err != nil {
			d.log.Warn("follow-up tick task build failed", "error", err)
			continue
		}

		if _, err := d.client.EnqueueContext(ctx, task, asynq.Queue(d.queue)); err != nil {
			d.log.Warn("follow-up tick enqueue failed", "error", err)
		}
	}
}
