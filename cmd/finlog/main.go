// Command finlog runs the personal finance tracking backend and its admin tools.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ArionMiles/finlog/pkg/config"
	"github.com/ArionMiles/finlog/pkg/logging"
)

// app carries state shared by all subcommands once configuration is loaded.
type app struct {
	envFile string
	cfg     config.Config
	logger  *slog.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:          "finlog",
		Short:        "Track expenses, imported bank SMS and monthly journals",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(a.envFile)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = logging.Setup(logging.NewConfig(cfg.LogLevel, cfg.LogFormat))
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")

	root.AddCommand(
		a.newServeCmd(),
		a.newMigrateCmd(),
		a.newStatusCmd(),
		a.newParseCmd(),
		a.newUserCmd(),
	)
	return root
}
