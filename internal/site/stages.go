// Package site is the page pipeline: it discovers and renders every page, then,
// behind a barrier, sequences the collection, rewrites navigation, builds the
// TOC and resolves the home page.
package site

import (
	"context"
	"fmt"
)

// Stage is a discrete unit of work in the site build.
type Stage func(ctx context.Context, bs *BuildState) error

// StageName is a strongly-typed identifier for a build stage.
type StageName string

// Canonical stage names, in pipeline order.
const (
	StageLoadTemplates      StageName = "load_templates"
	StageDiscover           StageName = "discover"
	StageRenderPages        StageName = "render_pages"
	StageBarrier            StageName = "barrier"
	StageSequenceCollection StageName = "sequence_collection"
	StageRewriteNavigation  StageName = "rewrite_navigation"
	StageBuildTOC           StageName = "build_toc"
	StageResolveHome        StageName = "resolve_home"
)

// StageErrorKind classifies the outcome of a stage.
type StageErrorKind string

const (
	StageErrorFatal    StageErrorKind = "fatal"    // Build must abort.
	StageErrorWarning  StageErrorKind = "warning"  // Non-fatal; record and continue.
	StageErrorCanceled StageErrorKind = "canceled" // Context cancellation.
)

// StageError is a structured error carrying category and underlying cause.
type StageError struct {
	Kind  StageErrorKind
	Stage StageName
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s stage %s: %v", e.Kind, e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

// NewFatalStageError creates a new fatal stage error.
func NewFatalStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorFatal, Stage: stage, Err: err}
}

func NewWarnStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorWarning, Stage: stage, Err: err}
}

func NewCanceledStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorCanceled, Stage: stage, Err: err}
}

// StageResult captures the high-level outcome of a stage.
type StageResult string

const (
	StageResultSuccess  StageResult = "success"
	StageResultWarning  StageResult = "warning"
	StageResultFatal    StageResult = "fatal"
	StageResultCanceled StageResult = "canceled"
)

// StageDef pairs a stage name with its executing function.
type StageDef struct {
	Name StageName
	Fn   Stage
}

// Pipeline is a fluent builder for ordered stage definitions.
type Pipeline struct{ Defs []StageDef }

// NewPipeline creates an empty pipeline.
func NewPipeline() *Pipeline { return &Pipeline{Defs: make([]StageDef, 0, 8)} }

// Add appends a stage unconditionally.
func (p *Pipeline) Add(name StageName, fn Stage) *Pipeline {
	p.Defs = append(p.Defs, StageDef{Name: name, Fn: fn})
	return p
}

// Build returns a copy of the stage definitions slice.
func (p *Pipeline) Build() []StageDef {
	out := make([]StageDef, len(p.Defs))
	copy(out, p.Defs)
	return out
}

// DefaultPipeline is the full two-phase build. Everything after the barrier
// sees the final collection membership.
func DefaultPipeline() []StageDef {
	return NewPipeline().
		Add(StageLoadTemplates, stageLoadTemplates).
		Add(StageDiscover, stageDiscover).
		Add(StageRenderPages, stageRenderPages).
		Add(StageBarrier, stageBarrier).
		Add(StageSequenceCollection, stageSequenceCollection).
		Add(StageRewriteNavigation, stageRewriteNavigation).
		Add(StageBuildTOC, stageBuildTOC).
		Add(StageResolveHome, stageResolveHome).
		Build()
}
