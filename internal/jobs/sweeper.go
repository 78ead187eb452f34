package jobs

import (
	"context"
	"log"
	"time"

	"docuchat/internal/app"
)

// SweeperJob runs the retention sweep on a fixed interval. The schedule is
// external to the sweep itself: SweeperService.Sweep can also be invoked
// directly, e.g. from an operator task.
type SweeperJob struct {
	sweeper  *app.SweeperService
	interval time.Duration
	done     chan struct{}
}

func NewSweeperJob(sweeper *app.SweeperService, interval time.Duration) *SweeperJob {
	if interval <= 0 {
		interval = time.Hour
	}
	return &SweeperJob{
		sweeper:  sweeper,
		interval: interval,
		done:     make(chan struct{}),
	}
}

func (j *SweeperJob) Start() {
	go j.run()
	log.Printf("sweeper job started, interval %s", j.interval)
}

func (j *SweeperJob) Stop() {
	close(j.done)
	log.Printf("sweeper job stopped")
}

func (j *SweeperJob) run() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.sweep()

	for {
		select {
		case <-j.done:
			return
		case <-ticker.C:
			j.sweep()
		}
	}
}

func (j *SweeperJob) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if _, err := j.sweeper.Sweep(ctx); err != nil {
		log.Printf("sweeper run failed: %v", err)
	}
}
