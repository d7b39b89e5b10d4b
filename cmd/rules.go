package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/normcast-labs/normcast/norm"
)

var (
	nameStyle  = color.New(color.FgCyan, color.Bold)
	labelStyle = color.New(color.FgYellow)
	overStyle  = color.New(color.FgRed, color.Bold)
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the registered rewrite rules and their labels",
	Run: func(cmd *cobra.Command, args []string) {
		n, err := norm.New(rulesFile, logger)
		if err != nil {
			logger.Fatal("Failed to load rule file", zap.Error(err))
		}

		for _, r := range n.Rules() {
			line := fmt.Sprintf("%s %s  %s = %s",
				nameStyle.Sprint(r.Name),
				labelStyle.Sprintf("[%s]", r.Label),
				r.LHS, r.RHS)
			if r.Overridden {
				line += " " + overStyle.Sprint("(label overridden)")
			}
			fmt.Println(line)
		}

		cache := n.Cache()
		fmt.Printf("\n%d rules: up=%d down=%d squash=%d\n",
			len(n.Rules()), cache.Up.Len(), cache.Down.Len(), cache.Squash.Len())
	},
}
