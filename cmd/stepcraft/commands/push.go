package commands

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/krun-tools/stepcraft/pkg/io/caseyaml"
	"github.com/krun-tools/stepcraft/pkg/steptree"
	"github.com/krun-tools/stepcraft/pkg/translate/tstep"
)

func pushCmd() *cobra.Command {
	var (
		caseID   int64
		caseCode string
	)
	cmd := &cobra.Command{
		Use:   "push <file.yaml>",
		Short: "Upload a YAML document as a case's step tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger()

			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			c, t, err := caseyaml.Import(data)
			if err != nil {
				return err
			}
			if caseID != 0 {
				c.CaseID = caseID
			}
			if caseCode != "" {
				c.CaseCode = caseCode
			}

			if err := t.Validate(c); err != nil {
				var verr *steptree.ValidationError
				if errors.As(err, &verr) {
					log.Error("validation failed", "detail", verr.Error())
				}
				return err
			}

			payload, err := tstep.BuildSavePayload(t, c)
			if err != nil {
				return err
			}
			result, err := newService().SaveStepTree(cmd.Context(), t, payload)
			if err != nil {
				return err
			}
			log.Info("pushed case",
				"case", c.CaseName,
				"created", result.CreatedCount,
				"updated", result.UpdatedCount)
			return nil
		},
	}
	cmd.Flags().Int64Var(&caseID, "case-id", 0, "save into an existing case by id")
	cmd.Flags().StringVar(&caseCode, "case-code", "", "save into an existing case by code")
	return cmd
}
