package scheduler

import (
	"context"
	"fmt"

	"growthscore_backend/internal/followup"
	"growthscore_backend/platform/config"
	"growthscore_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// FollowUpTicker runs one pass over all leads whose next sequence email is
// due. Implemented by the follow-up service.
type FollowUpTicker interface {
	Tick(ctx context.Context) (followup.TickResult, error)
}

type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	ticker FollowUpTicker
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, ticker FollowUpTicker, log *logger.Logger) (*Worker, error) {
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

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		ticker: ticker,
		log:    log,
	}

	mux.HandleFunc(TaskFollowUpTick, w.handleFollowUpTick)

	return w, nil
}

func (w *Worker) handleFollowUpTick(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseFollowUpTickPayload(task)
	if err != nil {
		return err
	}

	result, err := w.ticker.Tick(ctx)
	if err != nil {
		return err
	}

	w.log.Info("follow-up tick complete",
		"requested_at", payload.RequestedAt,
		"processed", result.Processed,
		"sent", result.Sent,
		"failed", result.Failed,
	)
	return nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
