package site

import (
	"context"
	"errors"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/observability"
)

// RunStages executes stages in order, recording timing and stopping on the
// first fatal or canceled stage. Warning stage errors are recorded and the
// pipeline continues.
func RunStages(ctx context.Context, bs *BuildState, stages []StageDef) error {
	for _, st := range stages {
		if err := ctx.Err(); err != nil {
			se := NewCanceledStageError(st.Name, err)
			bs.Report.AddIssue(IssueCanceled, st.Name, SeverityError, se.Error(), se)
			bs.Report.RecordStageResult(st.Name, StageResultCanceled, bs.Recorder)
			return se
		}

		stageCtx := observability.WithStage(ctx, string(st.Name))
		observability.DebugContext(stageCtx, "Stage started")

		t0 := time.Now()
		err := st.Fn(stageCtx, bs)
		dur := time.Since(t0)

		bs.Report.StageDurations[string(st.Name)] = dur
		bs.Recorder.ObserveStageDuration(string(st.Name), dur)

		if err == nil {
			bs.Report.RecordStageResult(st.Name, StageResultSuccess, bs.Recorder)
			observability.DebugContext(stageCtx, "Stage completed", logfields.Elapsed(dur))
			continue
		}

		var se *StageError
		if !errors.As(err, &se) {
			se = NewFatalStageError(st.Name, err)
		}
		switch se.Kind {
		case StageErrorWarning:
			bs.Report.AddIssue(issueCodeFor(se), st.Name, SeverityWarning, se.Error(), se)
			bs.Report.RecordStageResult(st.Name, StageResultWarning, bs.Recorder)
			observability.WarnContext(stageCtx, "Stage completed with warnings", logfields.Error(se))
		case StageErrorCanceled:
			bs.Report.AddIssue(IssueCanceled, st.Name, SeverityError, se.Error(), se)
			bs.Report.RecordStageResult(st.Name, StageResultCanceled, bs.Recorder)
			return se
		default:
			bs.Report.AddIssue(issueCodeFor(se), st.Name, SeverityError, se.Error(), se)
			bs.Report.RecordStageResult(st.Name, StageResultFatal, bs.Recorder)
			observability.ErrorContext(stageCtx, "Stage failed", logfields.Error(se), logfields.Elapsed(dur))
			return se
		}
	}
	return nil
}

func issueCodeFor(se *StageError) ReportIssueCode {
	switch se.Stage {
	case StageLoadTemplates:
		return IssueTemplateFailure
	case StageDiscover:
		return IssueDiscoveryFailure
	case StageRenderPages:
		return IssueRenderFailure
	case StageRewriteNavigation, StageResolveHome:
		return IssueRewriteFailure
	default:
		return IssueGenericStageError
	}
}
