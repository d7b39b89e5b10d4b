package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/normcast-labs/normcast/internal/rules"
	"github.com/normcast-labs/normcast/norm"
)

var (
	agreeStyle    = color.New(color.FgGreen, color.Bold)
	disagreeStyle = color.New(color.FgRed, color.Bold)
	failStyle     = color.New(color.FgYellow, color.Bold)
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Run the structural and legacy classifiers over every rule and report drift",
	Run: func(cmd *cobra.Command, args []string) {
		n, err := norm.New(rulesFile, logger)
		if err != nil {
			logger.Fatal("Failed to load rule file", zap.Error(err))
		}

		ruleSet := n.Rules()
		bar := progressbar.Default(int64(len(ruleSet)), "classifying")

		// Compare rule by rule so the bar tracks real progress.
		var report rules.Report
		for _, r := range ruleSet {
			partial := rules.CompareClassifiers(rules.Classify, rules.LegacyClassify, []*rules.RewriteRule{r})
			report.Agree += partial.Agree
			report.Disagree += partial.Disagree
			report.FirstFails += partial.FirstFails
			report.SecondFails += partial.SecondFails
			report.DisagreeOn = append(report.DisagreeOn, partial.DisagreeOn...)
			report.FirstFailOn = append(report.FirstFailOn, partial.FirstFailOn...)
			report.SecondFailOn = append(report.SecondFailOn, partial.SecondFailOn...)
			_ = bar.Add(1)
		}

		fmt.Println()
		fmt.Println(report.Summary())
		printBucket(disagreeStyle, "disagree", report.DisagreeOn)
		printBucket(failStyle, "first classifier fails", report.FirstFailOn)
		printBucket(failStyle, "second classifier fails", report.SecondFailOn)
		if report.Disagree == 0 && report.FirstFails == 0 && report.SecondFails == 0 {
			agreeStyle.Println("classifiers agree on the full rule set")
		}
	},
}

func printBucket(style *color.Color, title string, names []string) {
	if len(names) == 0 {
		return
	}
	style.Printf("%s:\n", title)
	for _, name := range names {
		fmt.Printf("  - %s\n", name)
	}
}
