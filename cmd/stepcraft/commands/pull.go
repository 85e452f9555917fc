package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/krun-tools/stepcraft/pkg/io/caseyaml"
	"github.com/krun-tools/stepcraft/pkg/model/mcase"
	"github.com/krun-tools/stepcraft/pkg/steptree"
)

func pullCmd() *cobra.Command {
	var (
		caseID   int64
		caseCode string
		output   string
	)
	cmd := &cobra.Command{
		Use:   "pull",
		Short: "Download a case's step tree as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger()
			svc := newService()

			loaded, err := svc.GetStepTree(cmd.Context(), caseID, caseCode)
			if err != nil {
				return err
			}
			c := loaded.Case
			if c == nil {
				c = &mcase.Case{CaseID: caseID, CaseCode: caseCode}
			}
			if c.CaseName == "" {
				c.CaseName = fmt.Sprintf("case-%d", c.CaseID)
			}

			t := steptree.NewTree(loaded.Roots)
			t.SetSessionVariables(c.SessionVariables)
			data, err := caseyaml.Export(c, t)
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return err
			}
			log.Info("pulled case",
				"case", c.CaseName,
				"steps", loaded.Counter.TotalSteps,
				"file", output)
			return nil
		},
	}
	cmd.Flags().Int64Var(&caseID, "case-id", 0, "backend case id")
	cmd.Flags().StringVar(&caseCode, "case-code", "", "backend case code")
	cmd.Flags().StringVarP(&output, "output", "o", "-", "output file, - for stdout")
	return cmd
}
