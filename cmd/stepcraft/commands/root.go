// Package commands wires the stepcraft CLI: pull, push, run, batch, lint
// and draft management against a Krun backend.
package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/krun-tools/stepcraft/pkg/httpclient"
	"github.com/krun-tools/stepcraft/pkg/service/scase"
)

func Root() *cobra.Command {
	root := &cobra.Command{
		Use:           "stepcraft",
		Short:         "Edit, lint and run autotest case step trees",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("base-url", "http://127.0.0.1:8018", "backend base URL")
	root.PersistentFlags().String("drafts", defaultDraftPath(), "path of the local draft database")
	root.PersistentFlags().Bool("verbose", false, "debug logging")

	cobra.OnInitialize(func() {
		viper.SetConfigName(".stepcraft")
		viper.SetConfigType("yaml")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetEnvPrefix("STEPCRAFT")
		viper.AutomaticEnv()
		_ = viper.ReadInConfig()
	})
	for _, name := range []string{"base-url", "drafts", "verbose"} {
		if err := viper.BindPFlag(name, root.PersistentFlags().Lookup(name)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", name, err))
		}
	}

	root.AddCommand(
		pullCmd(),
		pushCmd(),
		runCmd(),
		batchCmd(),
		lintCmd(),
		draftCmd(),
	)
	return root
}

func defaultDraftPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "stepcraft-drafts.db"
	}
	return filepath.Join(home, ".stepcraft", "drafts.db")
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if viper.GetBool("verbose") {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func newService() *scase.Service {
	return scase.New(httpclient.New(), viper.GetString("base-url"))
}
