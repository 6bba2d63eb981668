package build

import (
	"context"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/site"
)

// BuildService executes site builds.
type BuildService interface {
	Run(ctx context.Context, req BuildRequest) (*BuildResult, error)
}

// Trigger names what started a build.
type Trigger string

const (
	TriggerCLI      Trigger = "cli"
	TriggerWatch    Trigger = "watch"
	TriggerSchedule Trigger = "schedule"
)

// BuildRequest contains all inputs required to execute a build.
type BuildRequest struct {
	Config *config.Config

	// ConfigPath is recorded in the build history only.
	ConfigPath string

	Trigger Trigger

	// ReportDir, when set, receives build-report.json and build-report.txt.
	ReportDir string
}

// BuildResult contains the outcome of a build execution.
type BuildResult struct {
	BuildID    string
	Status     BuildStatus
	Report     *site.Report
	OutputPath string
	Duration   time.Duration
	StartTime  time.Time
	EndTime    time.Time
}

// BuildStatus represents the outcome of a build execution.
type BuildStatus string

const (
	BuildStatusSuccess   BuildStatus = "success"
	BuildStatusWarning   BuildStatus = "warning"
	BuildStatusFailed    BuildStatus = "failed"
	BuildStatusCancelled BuildStatus = "cancelled"
)

// IsSuccess returns true if the site was written. Warnings still count.
func (s BuildStatus) IsSuccess() bool {
	return s == BuildStatusSuccess || s == BuildStatusWarning
}

func statusFor(outcome site.BuildOutcome) BuildStatus {
	switch outcome {
	case site.OutcomeSuccess:
		return BuildStatusSuccess
	case site.OutcomeWarning:
		return BuildStatusWarning
	case site.OutcomeCanceled:
		return BuildStatusCancelled
	default:
		return BuildStatusFailed
	}
}
