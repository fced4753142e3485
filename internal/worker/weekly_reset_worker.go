package worker

import (
	"context"
	"sync"
	"time"

	"github.com/lunarforge/gachad/internal/fatepoints"
	"github.com/lunarforge/gachad/internal/logger"
)

// WeeklyResetWorker fires at each Monday 00:00 UTC boundary and sweeps fate
// point rows still carrying the previous week's earnings. The credit path
// also rolls weeks over lazily, so the sweep and the lazy path are free to
// race; both key on the same week boundary.
type WeeklyResetWorker struct {
	fatePointsService fatepoints.Service
	timer             *time.Timer
	shutdown          chan struct{}
	wg                sync.WaitGroup
	mu                sync.Mutex
}

func NewWeeklyResetWorker(fatePointsService fatepoints.Service) *WeeklyResetWorker {
	return &WeeklyResetWorker{
		fatePointsService: fatePointsService,
		shutdown:          make(chan struct{}),
	}
}

func (w *WeeklyResetWorker) Start() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.scheduleNext()
	}()
}

func (w *WeeklyResetWorker) scheduleNext() {
	duration := timeUntilNextWeeklyReset()

	w.mu.Lock()
	w.timer = time.AfterFunc(duration, func() {
		w.wg.Add(1)
		go w.executeReset()
	})
	w.mu.Unlock()
}

func (w *WeeklyResetWorker) executeReset() {
	defer w.wg.Done()

	ctx := context.Background()
	log := logger.FromContext(ctx)

	log.Info(LogMsgWeeklyResetStarting)

	swept, err := w.fatePointsService.SweepStaleWeeks(ctx)
	if err != nil {
		log.Error(LogMsgWeeklyResetFailed, "error", err)
	} else {
		log.Info(LogMsgWeeklyResetCompleted, "rows_swept", swept)
	}

	// Schedule next reset
	w.scheduleNext()
}

// timeUntilNextWeeklyReset calculates time until next Monday 00:00 UTC
func timeUntilNextWeeklyReset() time.Duration {
	now := time.Now().UTC()

	// Monday is day 1 in Go's time.Weekday
	daysUntilMonday := (8 - int(now.Weekday())) % 7
	if daysUntilMonday == 0 {
		// It's Monday already, go to next Monday
		daysUntilMonday = 7
	}

	nextReset := time.Date(
		now.Year(), now.Month(), now.Day(),
		0, 0, 0, 0, time.UTC,
	).AddDate(0, 0, daysUntilMonday)

	duration := nextReset.Sub(now)

	log := logger.FromContext(context.Background())
	log.Info(LogMsgWeeklyResetScheduled,
		"next_reset", nextReset.Format(time.RFC3339),
		"duration", duration.String())

	return duration
}

func (w *WeeklyResetWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
