package scase

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/krun-tools/stepcraft/pkg/idwrap"
	"github.com/krun-tools/stepcraft/pkg/logconsole"
	"github.com/krun-tools/stepcraft/pkg/model/mstep"
	"github.com/krun-tools/stepcraft/pkg/model/mvar"
)

// BatchResult pairs one case with its execution outcome. Err is set when the
// request itself failed; a case that ran but had failing steps comes back
// with Err nil and Summary.Success false.
type BatchResult struct {
	CaseID  int64
	Summary *mstep.ExecuteSummary
	Err     error
}

const batchConcurrency = 4

// BatchExecute runs several cases concurrently, a bounded number at a time.
// One case failing does not stop the rest; results keep the input order.
func (s *Service) BatchExecute(ctx context.Context, caseIDs []int64, envName string, initial []mvar.KeyValue) []BatchResult {
	return s.batchExecute(ctx, caseIDs, envName, initial, nil, idwrap.IDWrap{})
}

// BatchExecuteStream is BatchExecute with live progress: each case's outcome
// is published on the run's console channel the moment it finishes, in
// completion order. The returned slice still keeps the input order.
func (s *Service) BatchExecuteStream(ctx context.Context, caseIDs []int64, envName string, initial []mvar.KeyValue, logs *logconsole.LogChanMap, runID idwrap.IDWrap) []BatchResult {
	return s.batchExecute(ctx, caseIDs, envName, initial, logs, runID)
}

func (s *Service) batchExecute(ctx context.Context, caseIDs []int64, envName string, initial []mvar.KeyValue, logs *logconsole.LogChanMap, runID idwrap.IDWrap) []BatchResult {
	results := make([]BatchResult, len(caseIDs))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(batchConcurrency)
	for i, caseID := range caseIDs {
		i, caseID := i, caseID
		g.Go(func() error {
			summary, err := s.Execute(ctx, ExecuteRequest{
				CaseID:           caseID,
				EnvName:          envName,
				InitialVariables: initial,
			})
			mu.Lock()
			results[i] = BatchResult{CaseID: caseID, Summary: summary, Err: err}
			mu.Unlock()
			if logs != nil {
				publishResult(ctx, logs, runID, caseID, summary, err)
			}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func publishResult(ctx context.Context, logs *logconsole.LogChanMap, runID idwrap.IDWrap, caseID int64, summary *mstep.ExecuteSummary, execErr error) {
	name := fmt.Sprintf("case-%d", caseID)
	switch {
	case execErr != nil:
		_ = logs.StepResult(ctx, runID, name, logconsole.LogLevelError, execErr.Error(), nil)
	case summary != nil && !summary.Success:
		_ = logs.StepResult(ctx, runID, name, logconsole.LogLevelWarning,
			fmt.Sprintf("%d/%d 步骤失败", summary.FailedSteps, summary.TotalSteps), summary)
	default:
		_ = logs.StepResult(ctx, runID, name, logconsole.LogLevelUnspecified, "通过", summary)
	}
}
