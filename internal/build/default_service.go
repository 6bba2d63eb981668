package build

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/sitebuilder/internal/eventstore"
	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/notify"
	"git.home.luguber.info/inful/sitebuilder/internal/observability"
	"git.home.luguber.info/inful/sitebuilder/internal/site"
	"git.home.luguber.info/inful/sitebuilder/internal/version"
)

// DefaultBuildService is the standard implementation of BuildService.
type DefaultBuildService struct {
	recorder  metrics.Recorder
	history   eventstore.Store
	publisher notify.Publisher
	newID     func() string
}

// NewBuildService creates a service with no history and no event publishing.
func NewBuildService() *DefaultBuildService {
	return &DefaultBuildService{
		recorder:  metrics.NoopRecorder{},
		publisher: notify.Noop{},
		newID:     uuid.NewString,
	}
}

// WithRecorder sets the metrics recorder.
func (s *DefaultBuildService) WithRecorder(r metrics.Recorder) *DefaultBuildService {
	if r != nil {
		s.recorder = r
	}
	return s
}

// WithHistory records every build in store.
func (s *DefaultBuildService) WithHistory(store eventstore.Store) *DefaultBuildService {
	s.history = store
	return s
}

// WithPublisher publishes every finished report through p.
func (s *DefaultBuildService) WithPublisher(p notify.Publisher) *DefaultBuildService {
	if p != nil {
		s.publisher = p
	}
	return s
}

// WithIDGenerator replaces the build id source (for testing).
func (s *DefaultBuildService) WithIDGenerator(fn func() string) *DefaultBuildService {
	if fn != nil {
		s.newID = fn
	}
	return s
}

// Run executes one build. The returned result is non-nil even on error.
func (s *DefaultBuildService) Run(ctx context.Context, req BuildRequest) (*BuildResult, error) {
	startTime := time.Now()
	result := &BuildResult{StartTime: startTime}

	if req.Config == nil {
		result.Status = BuildStatusFailed
		result.EndTime = time.Now()
		result.Duration = result.EndTime.Sub(startTime)
		s.recorder.IncBuildOutcome(metrics.BuildOutcomeFailed)
		return result, ferrors.WrapError(ErrNoConfig, ferrors.CategoryConfig, "config required").Build()
	}

	result.BuildID = s.newID()
	result.OutputPath = req.Config.OutputRoot()
	ctx = observability.WithBuildID(ctx, result.BuildID)
	// Bookkeeping after the pipeline must survive cancellation of the build.
	bookCtx := context.WithoutCancel(ctx)

	trigger := req.Trigger
	if trigger == "" {
		trigger = TriggerCLI
	}
	s.record(bookCtx, func() (eventstore.Event, error) {
		return eventstore.NewBuildStarted(result.BuildID, eventstore.BuildStartedMeta{
			Trigger:    string(trigger),
			ConfigPath: req.ConfigPath,
			OutputDir:  result.OutputPath,
			Version:    version.Version,
		})
	})

	report, runErr := site.NewGenerator(req.Config).WithRecorder(s.recorder).Generate(ctx)
	result.Report = report
	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(startTime)
	result.Status = statusFor(report.Outcome)
	if runErr != nil && result.Status.IsSuccess() {
		result.Status = BuildStatusFailed
	}

	s.recorder.ObserveBuildDuration(result.Duration)
	s.recorder.IncBuildOutcome(outcomeLabel(result.Status))

	if req.ReportDir != "" {
		if err := report.Persist(req.ReportDir); err != nil {
			observability.WarnContext(bookCtx, "Failed to persist build report", logfields.Path(req.ReportDir), logfields.Error(err))
		}
	}

	reportJSON, err := report.JSON()
	if err != nil {
		observability.WarnContext(bookCtx, "Failed to encode build report", logfields.Error(err))
	}
	s.recordOutcome(bookCtx, result, runErr, reportJSON)
	if err := s.publisher.Publish(bookCtx, result.BuildID, reportJSON); err != nil {
		observability.WarnContext(bookCtx, "Failed to publish build event", logfields.Error(err))
	}

	if runErr != nil {
		if result.Status == BuildStatusCancelled {
			return result, errors.Join(ErrCanceled, runErr)
		}
		return result, runErr
	}
	return result, nil
}

func (s *DefaultBuildService) recordOutcome(ctx context.Context, result *BuildResult, runErr error, reportJSON []byte) {
	report := result.Report
	if result.Status.IsSuccess() {
		s.record(ctx, func() (eventstore.Event, error) {
			return eventstore.NewSiteGenerated(result.BuildID, eventstore.SiteCounts{
				Files:           report.Files,
				Written:         report.Written,
				Collection:      report.Collection,
				Standalone:      report.Standalone,
				Ignored:         report.Ignored,
				Skipped:         report.Skipped,
				HomeSynthesized: report.HomeSynthesized,
			})
		})
		s.record(ctx, func() (eventstore.Event, error) {
			return eventstore.NewBuildCompleted(result.BuildID, string(outcomeLabel(result.Status)), result.Duration, len(report.Warnings), reportJSON)
		})
		return
	}

	stage, msg := "", ""
	if runErr != nil {
		msg = runErr.Error()
		var se *site.StageError
		if errors.As(runErr, &se) {
			stage = string(se.Stage)
		}
	}
	s.record(ctx, func() (eventstore.Event, error) {
		return eventstore.NewBuildFailed(result.BuildID, string(outcomeLabel(result.Status)), stage, msg)
	})
}

// record appends an event to the history store. History failures never fail
// the build.
func (s *DefaultBuildService) record(ctx context.Context, mk func() (eventstore.Event, error)) {
	if s.history == nil {
		return
	}
	e, err := mk()
	if err == nil {
		err = eventstore.Record(ctx, s.history, e)
	}
	if err != nil {
		observability.WarnContext(ctx, "Failed to record build history", logfields.Error(err))
	}
}

func outcomeLabel(s BuildStatus) metrics.BuildOutcomeLabel {
	switch s {
	case BuildStatusSuccess:
		return metrics.BuildOutcomeSuccess
	case BuildStatusWarning:
		return metrics.BuildOutcomeWarning
	case BuildStatusCancelled:
		return metrics.BuildOutcomeCanceled
	default:
		return metrics.BuildOutcomeFailed
	}
}
