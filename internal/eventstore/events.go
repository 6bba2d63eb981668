package eventstore

import (
	"encoding/json"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

// BuildStartedMeta describes what a build was asked to do.
type BuildStartedMeta struct {
	Trigger    string `json:"trigger"` // cli, watch, schedule
	ConfigPath string `json:"config_path,omitempty"`
	OutputDir  string `json:"output_dir"`
	Version    string `json:"version"`
}

// BuildStarted is emitted when a build begins.
type BuildStarted struct {
	BaseEvent
	Meta BuildStartedMeta
}

// NewBuildStarted creates a BuildStarted event.
func NewBuildStarted(buildID string, meta BuildStartedMeta) (*BuildStarted, error) {
	payload, err := marshalPayload(buildID, TypeBuildStarted, meta)
	if err != nil {
		return nil, err
	}
	return &BuildStarted{BaseEvent: newBase(buildID, TypeBuildStarted, payload), Meta: meta}, nil
}

// SiteCounts are the page tallies of a finished render.
type SiteCounts struct {
	Files           int  `json:"files"`
	Written         int  `json:"written"`
	Collection      int  `json:"collection"`
	Standalone      int  `json:"standalone"`
	Ignored         int  `json:"ignored"`
	Skipped         int  `json:"skipped"`
	HomeSynthesized bool `json:"home_synthesized"`
}

// SiteGenerated is emitted once all pages are written.
type SiteGenerated struct {
	BaseEvent
	Counts SiteCounts
}

// NewSiteGenerated creates a SiteGenerated event.
func NewSiteGenerated(buildID string, counts SiteCounts) (*SiteGenerated, error) {
	payload, err := marshalPayload(buildID, TypeSiteGenerated, counts)
	if err != nil {
		return nil, err
	}
	return &SiteGenerated{BaseEvent: newBase(buildID, TypeSiteGenerated, payload), Counts: counts}, nil
}

// BuildCompleted is emitted when a build ends without a fatal error.
// The stored payload embeds the full JSON build report.
type BuildCompleted struct {
	BaseEvent
	Outcome  string
	Duration time.Duration
	Warnings int
}

type buildCompletedPayload struct {
	Outcome    string          `json:"outcome"`
	DurationMS int64           `json:"duration_ms"`
	Warnings   int             `json:"warnings"`
	Report     json.RawMessage `json:"report,omitempty"`
}

// NewBuildCompleted creates a BuildCompleted event.
func NewBuildCompleted(buildID, outcome string, duration time.Duration, warnings int, report []byte) (*BuildCompleted, error) {
	payload, err := marshalPayload(buildID, TypeBuildCompleted, buildCompletedPayload{
		Outcome:    outcome,
		DurationMS: duration.Milliseconds(),
		Warnings:   warnings,
		Report:     report,
	})
	if err != nil {
		return nil, err
	}
	return &BuildCompleted{
		BaseEvent: newBase(buildID, TypeBuildCompleted, payload),
		Outcome:   outcome,
		Duration:  duration,
		Warnings:  warnings,
	}, nil
}

// BuildFailed is emitted when a stage aborts the build.
type BuildFailed struct {
	BaseEvent
	Stage string
	Error string
}

type buildFailedPayload struct {
	Outcome string `json:"outcome"`
	Stage   string `json:"stage"`
	Error   string `json:"error"`
}

// NewBuildFailed creates a BuildFailed event. Outcome is failed or canceled.
func NewBuildFailed(buildID, outcome, stage, errorMsg string) (*BuildFailed, error) {
	payload, err := marshalPayload(buildID, TypeBuildFailed, buildFailedPayload{
		Outcome: outcome,
		Stage:   stage,
		Error:   errorMsg,
	})
	if err != nil {
		return nil, err
	}
	return &BuildFailed{
		BaseEvent: newBase(buildID, TypeBuildFailed, payload),
		Stage:     stage,
		Error:     errorMsg,
	}, nil
}

func newBase(buildID, eventType string, payload []byte) BaseEvent {
	return BaseEvent{
		EventBuildID:   buildID,
		EventType:      eventType,
		EventTimestamp: time.Now(),
		EventPayload:   payload,
	}
}

func marshalPayload(buildID, eventType string, v any) ([]byte, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, errors.WrapError(err, ErrMarshalPayloadFailed.Category(), ErrMarshalPayloadFailed.Message()).
			WithContext("build_id", buildID).
			WithContext("event_type", eventType).
			Build()
	}
	return payload, nil
}
