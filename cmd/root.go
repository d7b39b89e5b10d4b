package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	rulesFile string
	verbose   bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "normcast",
	Short: "normcast - normalize coercions in expressions and certify the rewrite",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if verbose {
			logger, err = zap.NewDevelopment()
		} else {
			logger, err = zap.NewProduction()
		}
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&rulesFile, "rules", "r", "normcast.yaml", "Rule file to load")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(deriveCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(compareCmd)
}
