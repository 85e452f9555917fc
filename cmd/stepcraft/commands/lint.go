package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/krun-tools/stepcraft/pkg/io/caseyaml"
	"github.com/krun-tools/stepcraft/pkg/steptree"
)

func lintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lint <file.yaml>...",
		Short: "Check YAML documents against the save-time validation gate",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			failed := 0
			for _, path := range args {
				if err := lintFile(path); err != nil {
					failed++
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", path, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", path)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files failed lint", failed, len(args))
			}
			return nil
		},
	}
	return cmd
}

func lintFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	c, t, err := caseyaml.Import(data)
	if err != nil {
		return err
	}
	// Lint runs offline, so the project binding is the one case field the
	// document cannot carry proof of; stub it for the structural checks.
	if c.CaseProject == 0 {
		c.CaseProject = 1
	}
	if err := t.Validate(c); err != nil {
		return err
	}
	if err := checkNumbering(t); err != nil {
		return err
	}
	return nil
}

// checkNumbering verifies the preorder numbering covers every node exactly
// once, including container children.
func checkNumbering(t *steptree.Tree) error {
	numbers := t.AssignStepNumbers()
	if len(numbers) != t.CountAll() {
		return fmt.Errorf("numbering covered %d of %d steps", len(numbers), t.CountAll())
	}
	return nil
}
