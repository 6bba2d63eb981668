// Package eventstore records site builds as events in SQLite and projects
// them into a build history.
package eventstore

import (
	"context"
	"encoding/json"
	"slices"
	"sync"
	"time"
)

const statusRunning = "running"

// BuildSummary is the read model of one build.
type BuildSummary struct {
	BuildID      string        `json:"build_id"`
	Trigger      string        `json:"trigger,omitempty"`
	Status       string        `json:"status"` // running, or the final outcome
	StartedAt    time.Time     `json:"started_at"`
	CompletedAt  *time.Time    `json:"completed_at,omitempty"`
	Duration     time.Duration `json:"duration,omitempty"`
	Counts       SiteCounts    `json:"counts"`
	Warnings     int           `json:"warnings"`
	ErrorStage   string        `json:"error_stage,omitempty"`
	ErrorMessage string        `json:"error_message,omitempty"`
}

// Finished reports whether a terminal event was seen for the build.
func (b *BuildSummary) Finished() bool { return b.CompletedAt != nil }

// BuildHistoryProjection keeps the most recent builds in memory.
type BuildHistoryProjection struct {
	mu      sync.RWMutex
	store   Store
	builds  map[string]*BuildSummary
	history []*BuildSummary // newest first
	maxSize int
}

// NewBuildHistoryProjection creates a projection backed by store.
func NewBuildHistoryProjection(store Store, maxHistorySize int) *BuildHistoryProjection {
	if maxHistorySize <= 0 {
		maxHistorySize = 100
	}
	return &BuildHistoryProjection{
		store:   store,
		builds:  make(map[string]*BuildSummary),
		maxSize: maxHistorySize,
	}
}

// Rebuild replays every stored event.
func (p *BuildHistoryProjection) Rebuild(ctx context.Context) error {
	events, err := p.store.GetRange(ctx, time.Unix(0, 0), time.Now().Add(time.Hour))
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.builds = make(map[string]*BuildSummary)
	p.history = nil
	for _, event := range events {
		p.applyLocked(event)
	}
	slices.SortStableFunc(p.history, func(a, b *BuildSummary) int {
		return b.StartedAt.Compare(a.StartedAt)
	})
	p.trimLocked()
	return nil
}

// Apply folds a single event into the projection.
func (p *BuildHistoryProjection) Apply(event Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.applyLocked(event)
	p.trimLocked()
}

func (p *BuildHistoryProjection) applyLocked(event Event) {
	buildID := event.BuildID()
	if buildID == "" {
		return
	}
	summary, ok := p.builds[buildID]
	if !ok {
		summary = &BuildSummary{BuildID: buildID, Status: statusRunning, StartedAt: event.Timestamp()}
		p.builds[buildID] = summary
		p.history = append([]*BuildSummary{summary}, p.history...)
	}

	switch event.Type() {
	case TypeBuildStarted:
		summary.StartedAt = event.Timestamp()
		var meta BuildStartedMeta
		if err := json.Unmarshal(event.Payload(), &meta); err == nil {
			summary.Trigger = meta.Trigger
		}

	case TypeSiteGenerated:
		_ = json.Unmarshal(event.Payload(), &summary.Counts)

	case TypeBuildCompleted:
		var payload buildCompletedPayload
		if err := json.Unmarshal(event.Payload(), &payload); err == nil {
			summary.Status = payload.Outcome
			summary.Warnings = payload.Warnings
		}
		p.completeLocked(summary, event.Timestamp())

	case TypeBuildFailed:
		var payload buildFailedPayload
		if err := json.Unmarshal(event.Payload(), &payload); err == nil {
			summary.Status = payload.Outcome
			summary.ErrorStage = payload.Stage
			summary.ErrorMessage = payload.Error
		}
		p.completeLocked(summary, event.Timestamp())
	}
}

func (p *BuildHistoryProjection) completeLocked(summary *BuildSummary, at time.Time) {
	summary.CompletedAt = &at
	summary.Duration = at.Sub(summary.StartedAt)
	if summary.Status == "" || summary.Status == statusRunning {
		summary.Status = "failed"
	}
}

func (p *BuildHistoryProjection) trimLocked() {
	if len(p.history) <= p.maxSize {
		return
	}
	for _, dropped := range p.history[p.maxSize:] {
		delete(p.builds, dropped.BuildID)
	}
	p.history = p.history[:p.maxSize]
}

// History returns up to limit builds, newest first. A limit <= 0 returns all.
func (p *BuildHistoryProjection) History(limit int) []BuildSummary {
	p.mu.RLock()
	defer p.mu.RUnlock()

	n := len(p.history)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]BuildSummary, n)
	for i := range n {
		out[i] = *p.history[i]
	}
	return out
}

// GetBuild returns a copy of the summary for buildID.
func (p *BuildHistoryProjection) GetBuild(buildID string) (BuildSummary, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	summary, ok := p.builds[buildID]
	if !ok {
		return BuildSummary{}, false
	}
	return *summary, true
}

// LastCompleted returns the newest finished build.
func (p *BuildHistoryProjection) LastCompleted() (BuildSummary, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	for _, s := range p.history {
		if s.Finished() {
			return *s, true
		}
	}
	return BuildSummary{}, false
}
