package cmd

import (
	"log"
	"log/slog"
	"os"

	"github.com/ThatOtherAndrew/Sketchmatch/internal/logger"
	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "sketchmatch",
	Short: "Score how closely a drawing matches a reference shape",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			logger.Set(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
		}
	},
	SilenceUsage: true,
}

func init() {
	log.SetFlags(0)
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
