package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"hourglass/internal/core/countdown"
	"hourglass/internal/storage"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "show recent runs",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		history, err := storage.OpenHistory(appName)
		if err != nil {
			cmd.Println("Error:", err.Error())
			os.Exit(1)
		}
		defer func() {
			_ = history.Close()
		}()

		runs, err := history.RecentRuns(flagHistoryLimit)
		if err != nil {
			cmd.Println("Error:", err.Error())
			os.Exit(1)
		}
		if len(runs) == 0 {
			fmt.Println("no runs recorded yet")
			return
		}

		for _, run := range runs {
			mark := "stopped"
			if run.Completed {
				mark = "done"
			}
			line := fmt.Sprintf("%s  %-10s %-8s", run.StartedAt.Format("2006-01-02 15:04"), countdown.FormatDuration(run.Duration), mark)
			if run.Loops > 0 {
				line += fmt.Sprintf(" %d loops", run.Loops)
			}
			fmt.Println(line)
		}
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "show run totals",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		history, err := storage.OpenHistory(appName)
		if err != nil {
			cmd.Println("Error:", err.Error())
			os.Exit(1)
		}
		defer func() {
			_ = history.Close()
		}()

		stats, err := history.GetStats()
		if err != nil {
			cmd.Println("Error:", err.Error())
			os.Exit(1)
		}

		fmt.Printf("runs:    %d (%d completed)\n", stats.TotalRuns, stats.CompletedRuns)
		fmt.Printf("tracked: %s\n", countdown.FormatDuration(time.Duration(stats.TotalSeconds)*time.Second))
		fmt.Printf("today:   %d runs\n", stats.TodayRuns)
	},
}

func init() {
	historyCmd.Flags().IntVar(&flagHistoryLimit, "limit", 10, "number of runs to show")

	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(statsCmd)
}
