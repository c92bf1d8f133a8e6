// Package cli wires up the redline command tree.
package cli

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/scribeworks/redline/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "redline",
	Short: "Review and selectively apply AI-proposed document edits",
	Long: `redline computes structured diffs between document versions, groups
them into reviewable paragraphs, and tracks a review session through
partial confirmation to a single apply-or-discard resolution.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		loadedConfig = cfg

		level, err := zerolog.ParseLevel(cfg.LogLevel)
		if err != nil {
			level = zerolog.InfoLevel
		}
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level)
		return nil
	},
}

// loadedConfig is populated by the root pre-run for subcommands.
var loadedConfig = config.Default()

func init() {
	rootCmd.PersistentFlags().String("config", "", "path to YAML config file")
	rootCmd.AddCommand(reviewCmd, diffCmd, serveCmd, versionCmd)
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		return err
	}
	return nil
}
