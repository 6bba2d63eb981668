package site

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/version"
)

// BuildOutcome is the typed enumeration of final build result states.
type BuildOutcome string

const (
	OutcomeSuccess  BuildOutcome = "success"
	OutcomeWarning  BuildOutcome = "warning"
	OutcomeFailed   BuildOutcome = "failed"
	OutcomeCanceled BuildOutcome = "canceled"
)

// ReportIssueCode enumerates machine-parseable issue identifiers.
type ReportIssueCode string

const (
	IssueTemplateFailure   ReportIssueCode = "TEMPLATE_FAILURE"
	IssueDiscoveryFailure  ReportIssueCode = "DISCOVERY_FAILURE"
	IssueRenderFailure     ReportIssueCode = "RENDER_FAILURE"
	IssueConvertSkipped    ReportIssueCode = "CONVERT_SKIPPED"
	IssueInvalidMetadata   ReportIssueCode = "INVALID_METADATA"
	IssueRewriteFailure    ReportIssueCode = "REWRITE_FAILURE"
	IssueHomeFallback      ReportIssueCode = "HOME_FALLBACK"
	IssueCanceled          ReportIssueCode = "BUILD_CANCELED"
	IssueGenericStageError ReportIssueCode = "GENERIC_STAGE_ERROR"
)

// IssueSeverity represents normalized severity levels.
type IssueSeverity string

const (
	SeverityError   IssueSeverity = "error"
	SeverityWarning IssueSeverity = "warning"
)

// ReportIssue is a structured entry describing a discrete problem encountered.
type ReportIssue struct {
	Code     ReportIssueCode `json:"code"`
	Stage    StageName       `json:"stage"`
	Severity IssueSeverity   `json:"severity"`
	Message  string          `json:"message"`
}

// StageCount aggregates counts of outcomes for a stage.
type StageCount struct {
	Success  int `json:"success"`
	Warning  int `json:"warning"`
	Fatal    int `json:"fatal"`
	Canceled int `json:"canceled"`
}

// PageRecord describes one generated page.
type PageRecord struct {
	Source      string `json:"source"`
	Output      string `json:"output"`
	URL         string `json:"url"`
	Kind        string `json:"kind"`
	Title       string `json:"title"`
	Fingerprint string `json:"fingerprint,omitempty"`
}

// Report captures what a build did and how it ended.
type Report struct {
	BuildID         string
	Version         string
	Start           time.Time
	End             time.Time
	Files           int // source files discovered
	Written         int // pages written, synthesized home page included
	Ignored         int // sources without the trigger tag
	Skipped         int // sources dropped by the skip conversion policy
	Collection      int
	Standalone      int
	HomeSynthesized bool
	Errors          []error
	Warnings        []error
	Issues          []ReportIssue
	StageDurations  map[string]time.Duration
	StageCounts     map[StageName]StageCount
	Pages           []PageRecord
	Outcome         BuildOutcome
}

// NewReport constructs an empty report stamped with the build id.
func NewReport(buildID string) *Report {
	return &Report{
		BuildID:        buildID,
		Version:        version.Version,
		Start:          time.Now(),
		StageDurations: make(map[string]time.Duration),
		StageCounts:    make(map[StageName]StageCount),
	}
}

// AddIssue appends a structured issue and mirrors severity into Errors/Warnings slices.
func (r *Report) AddIssue(code ReportIssueCode, stage StageName, severity IssueSeverity, msg string, err error) {
	r.Issues = append(r.Issues, ReportIssue{Code: code, Stage: stage, Severity: severity, Message: msg})
	if err == nil {
		return
	}
	switch severity {
	case SeverityError:
		r.Errors = append(r.Errors, err)
	case SeverityWarning:
		r.Warnings = append(r.Warnings, err)
	}
}

// RecordStageResult updates the stage counters and emits metrics.
func (r *Report) RecordStageResult(stage StageName, res StageResult, recorder metrics.Recorder) {
	sc := r.StageCounts[stage]
	var label metrics.ResultLabel
	switch res {
	case StageResultSuccess:
		sc.Success++
		label = metrics.ResultSuccess
	case StageResultWarning:
		sc.Warning++
		label = metrics.ResultWarning
	case StageResultFatal:
		sc.Fatal++
		label = metrics.ResultFatal
	case StageResultCanceled:
		sc.Canceled++
		label = metrics.ResultCanceled
	}
	r.StageCounts[stage] = sc
	if recorder != nil {
		recorder.IncStageResult(string(stage), label)
	}
}

// Finish sets the end time and derives the outcome.
func (r *Report) Finish() {
	r.End = time.Now()
	r.DeriveOutcome()
}

// Duration is the wall time of the build so far.
func (r *Report) Duration() time.Duration {
	if r.End.IsZero() {
		return time.Since(r.Start)
	}
	return r.End.Sub(r.Start)
}

// DeriveOutcome sets the Outcome field based on recorded errors/warnings.
func (r *Report) DeriveOutcome() {
	if len(r.Errors) > 0 {
		for _, e := range r.Errors {
			var se *StageError
			if errors.As(e, &se) && se.Kind == StageErrorCanceled {
				r.Outcome = OutcomeCanceled
				return
			}
		}
		r.Outcome = OutcomeFailed
		return
	}
	if len(r.Warnings) > 0 {
		r.Outcome = OutcomeWarning
		return
	}
	r.Outcome = OutcomeSuccess
}

// Summary returns a human-readable single-line summary.
func (r *Report) Summary() string {
	return fmt.Sprintf("files=%d written=%d collection=%d standalone=%d ignored=%d skipped=%d duration=%s errors=%d warnings=%d outcome=%s",
		r.Files, r.Written, r.Collection, r.Standalone, r.Ignored, r.Skipped,
		r.Duration().Truncate(time.Millisecond), len(r.Errors), len(r.Warnings), r.Outcome)
}

// ReportSerializable mirrors Report with string errors for JSON output.
type ReportSerializable struct {
	BuildID         string                   `json:"build_id"`
	Version         string                   `json:"version"`
	Start           time.Time                `json:"start"`
	End             time.Time                `json:"end"`
	Files           int                      `json:"files"`
	Written         int                      `json:"written"`
	Ignored         int                      `json:"ignored"`
	Skipped         int                      `json:"skipped"`
	Collection      int                      `json:"collection"`
	Standalone      int                      `json:"standalone"`
	HomeSynthesized bool                     `json:"home_synthesized"`
	Errors          []string                 `json:"errors"`
	Warnings        []string                 `json:"warnings"`
	Issues          []ReportIssue            `json:"issues"`
	StageDurations  map[string]time.Duration `json:"stage_durations"`
	StageCounts     map[string]StageCount    `json:"stage_counts"`
	Pages           []PageRecord             `json:"pages"`
	Outcome         string                   `json:"outcome"`
}

// SanitizedCopy returns a copy with error fields converted to strings.
func (r *Report) SanitizedCopy() *ReportSerializable {
	s := &ReportSerializable{
		BuildID:         r.BuildID,
		Version:         r.Version,
		Start:           r.Start,
		End:             r.End,
		Files:           r.Files,
		Written:         r.Written,
		Ignored:         r.Ignored,
		Skipped:         r.Skipped,
		Collection:      r.Collection,
		Standalone:      r.Standalone,
		HomeSynthesized: r.HomeSynthesized,
		Errors:          make([]string, len(r.Errors)),
		Warnings:        make([]string, len(r.Warnings)),
		Issues:          r.Issues,
		StageDurations:  r.StageDurations,
		StageCounts:     make(map[string]StageCount, len(r.StageCounts)),
		Pages:           r.Pages,
		Outcome:         string(r.Outcome),
	}
	for i, e := range r.Errors {
		s.Errors[i] = e.Error()
	}
	for i, w := range r.Warnings {
		s.Warnings[i] = w.Error()
	}
	for k, v := range r.StageCounts {
		s.StageCounts[string(k)] = v
	}
	if s.Issues == nil {
		s.Issues = []ReportIssue{}
	}
	if s.Pages == nil {
		s.Pages = []PageRecord{}
	}
	return s
}

// JSON encodes the sanitized report.
func (r *Report) JSON() ([]byte, error) {
	return json.MarshalIndent(r.SanitizedCopy(), "", "  ")
}

// Persist writes build-report.json and build-report.txt atomically into dir.
func (r *Report) Persist(dir string) error {
	if r.End.IsZero() {
		r.Finish()
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("ensure dir for report: %w", err)
	}
	jb, err := r.JSON()
	if err != nil {
		return fmt.Errorf("marshal report json: %w", err)
	}
	if err := writeAtomic(filepath.Join(dir, "build-report.json"), jb); err != nil {
		return err
	}
	return writeAtomic(filepath.Join(dir, "build-report.txt"), []byte(r.Summary()+"\n"))
}

func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write temp %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("atomic rename %s: %w", filepath.Base(path), err)
	}
	return nil
}
