package preview

import (
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/sitebuilder/internal/build"
	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

// schedule runs periodic rebuilds. A zero interval disables it.
type schedule struct {
	scheduler gocron.Scheduler
}

func startSchedule(interval time.Duration, request func(build.Trigger)) (*schedule, error) {
	if interval <= 0 {
		return &schedule{}, nil
	}
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryRuntime, "failed to create scheduler").Build()
	}
	_, err = s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(request, build.TriggerSchedule),
		gocron.WithName("scheduled-rebuild"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, ferrors.WrapError(err, ferrors.CategoryRuntime, "failed to schedule rebuild").
			WithContext("interval", interval.String()).Build()
	}
	s.Start()
	slog.Info("Scheduled rebuilds enabled", slog.Duration("interval", interval))
	return &schedule{scheduler: s}, nil
}

func (s *schedule) stop() {
	if s.scheduler == nil {
		return
	}
	if err := s.scheduler.Shutdown(); err != nil {
		slog.Warn("Scheduler shutdown error", slog.String("error", err.Error()))
	}
}
