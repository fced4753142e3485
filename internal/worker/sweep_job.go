package worker

import (
	"context"

	"github.com/lunarforge/gachad/internal/fatepoints"
	"github.com/lunarforge/gachad/internal/logger"
)

// StaleWeekSweepJob is the periodic safety net behind the weekly reset
// worker. Rows belonging to users who never roll after a Monday boundary
// would otherwise keep a stale points_this_week until their next credit.
type StaleWeekSweepJob struct {
	fatePointsService fatepoints.Service
}

func NewStaleWeekSweepJob(fatePointsService fatepoints.Service) *StaleWeekSweepJob {
	return &StaleWeekSweepJob{fatePointsService: fatePointsService}
}

func (j *StaleWeekSweepJob) Process(ctx context.Context) error {
	swept, err := j.fatePointsService.SweepStaleWeeks(ctx)
	if err != nil {
		logger.FromContext(ctx).Error(LogMsgSweepFailed, "error", err)
		return err
	}
	if swept > 0 {
		logger.FromContext(ctx).Info(LogMsgSweepCompleted, "rows_swept", swept)
	}
	return nil
}
