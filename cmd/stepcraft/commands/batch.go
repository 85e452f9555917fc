package commands

import (
	"fmt"
	"sync"

	"github.com/spf13/cobra"

	"github.com/krun-tools/stepcraft/pkg/idwrap"
	"github.com/krun-tools/stepcraft/pkg/logconsole"
)

func batchCmd() *cobra.Command {
	var (
		caseIDs []int64
		envName string
		vars    []string
	)
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Execute several cases concurrently",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger()
			if len(caseIDs) == 0 {
				return fmt.Errorf("at least one --case-id is required")
			}
			initial, err := parseVars(vars)
			if err != nil {
				return err
			}

			// Stream per-case outcomes to the terminal as they finish.
			logs := logconsole.NewLogChanMap()
			runID := idwrap.NewNow()
			ch := logs.AddLogChannel(runID)
			var wg sync.WaitGroup
			wg.Add(1)
			go func() {
				defer wg.Done()
				for msg := range ch {
					switch msg.Level {
					case logconsole.LogLevelError:
						log.Error(msg.Value, "case", msg.StepName)
					case logconsole.LogLevelWarning:
						log.Warn(msg.Value, "case", msg.StepName)
					default:
						log.Info(msg.Value, "case", msg.StepName)
					}
				}
			}()

			results := newService().BatchExecuteStream(cmd.Context(), caseIDs, envName, initial, &logs, runID)
			logs.DeleteLogChannel(runID)
			close(ch)
			wg.Wait()

			failed := 0
			for _, r := range results {
				if r.Err != nil || (r.Summary != nil && !r.Summary.Success) {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d cases failed", failed, len(results))
			}
			log.Info("batch finished", "cases", len(results))
			return nil
		},
	}
	cmd.Flags().Int64SliceVar(&caseIDs, "case-id", nil, "backend case id, repeatable")
	cmd.Flags().StringVar(&envName, "env", "", "environment name")
	cmd.Flags().StringArrayVar(&vars, "var", nil, "initial variable, key=value, repeatable")
	return cmd
}
