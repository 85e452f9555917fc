package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/krun-tools/stepcraft/pkg/draftstore"
	"github.com/krun-tools/stepcraft/pkg/io/caseyaml"
	"github.com/krun-tools/stepcraft/pkg/translate/tstep"
)

func draftCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "draft",
		Short: "Manage local drafts of unsaved trees",
	}
	cmd.AddCommand(draftSaveCmd(), draftListCmd(), draftShowCmd(), draftDeleteCmd())
	return cmd
}

func openDrafts() (*draftstore.Store, error) {
	path := viper.GetString("drafts")
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return draftstore.Open(path)
}

func draftSaveCmd() *cobra.Command {
	var caseCode string
	cmd := &cobra.Command{
		Use:   "save <file.yaml>",
		Short: "Store a YAML document as a local draft",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			c, t, err := caseyaml.Import(data)
			if err != nil {
				return err
			}
			if caseCode != "" {
				c.CaseCode = caseCode
			}
			key := c.CaseCode
			if key == "" {
				key = c.CaseName
			}

			payload, err := tstep.BuildSavePayload(t, c)
			if err != nil {
				return err
			}

			store, err := openDrafts()
			if err != nil {
				return err
			}
			defer store.Close()
			if err := store.Save(cmd.Context(), key, payload); err != nil {
				return err
			}
			newLogger().Info("draft saved", "key", key, "steps", len(payload.Steps))
			return nil
		},
	}
	cmd.Flags().StringVar(&caseCode, "case-code", "", "store under this case code")
	return cmd
}

func draftListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored drafts",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openDrafts()
			if err != nil {
				return err
			}
			defer store.Close()

			drafts, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, d := range drafts {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n",
					d.CaseCode, d.CaseName, d.UpdatedAt.Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}
}

func draftShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <case-code>",
		Short: "Print a draft's save payload as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openDrafts()
			if err != nil {
				return err
			}
			defer store.Close()

			draft, err := store.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(draft.Payload, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}

func draftDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <case-code>",
		Short: "Delete a stored draft",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openDrafts()
			if err != nil {
				return err
			}
			defer store.Close()
			return store.Delete(cmd.Context(), args[0])
		},
	}
}
