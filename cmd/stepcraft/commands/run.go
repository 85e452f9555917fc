package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/krun-tools/stepcraft/pkg/model/mvar"
	"github.com/krun-tools/stepcraft/pkg/service/scase"
)

func runCmd() *cobra.Command {
	var (
		caseID  int64
		envName string
		vars    []string
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute a saved case and report the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger()
			if caseID == 0 {
				return fmt.Errorf("--case-id is required")
			}
			initial, err := parseVars(vars)
			if err != nil {
				return err
			}

			summary, err := newService().Execute(cmd.Context(), scase.ExecuteRequest{
				CaseID:           caseID,
				EnvName:          envName,
				InitialVariables: initial,
			})
			if err != nil {
				return err
			}

			log.Info("run finished",
				"case", summary.CaseName,
				"total", summary.TotalSteps,
				"passed", summary.SuccessSteps,
				"failed", summary.FailedSteps,
				"pass_ratio", summary.PassRatio,
				"report", summary.ReportCode)
			if !summary.Success {
				return fmt.Errorf("case %d failed: %d of %d steps failed",
					caseID, summary.FailedSteps, summary.TotalSteps)
			}
			return nil
		},
	}
	cmd.Flags().Int64Var(&caseID, "case-id", 0, "backend case id")
	cmd.Flags().StringVar(&envName, "env", "", "environment name")
	cmd.Flags().StringArrayVar(&vars, "var", nil, "initial variable, key=value, repeatable")
	return cmd
}

func parseVars(pairs []string) ([]mvar.KeyValue, error) {
	var out []mvar.KeyValue
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --var %q, expected key=value", p)
		}
		out = append(out, mvar.KeyValue{Key: key, Value: value})
	}
	return out, nil
}
