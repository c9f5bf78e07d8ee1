package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nyc-osyd/atlas-cli/internal/cluster"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show training-coverage statistics for the filtered subset",
	RunE: func(cmd *cobra.Command, args []string) error {
		filters, err := filterFromFlags(cmd)
		if err != nil {
			return err
		}

		s, err := loadCachedStore(cmd.Context())
		if err != nil {
			return err
		}

		subset := cluster.Filter(s, filters)
		stats := cluster.Aggregate(subset, s.Baseline())

		if filters.IsEmpty() {
			fmt.Printf("All %d schools (snapshot from %s)\n", stats.Size, s.LoadedAt().Format("2006-01-02 15:04"))
		} else {
			fmt.Printf("%d of %d schools match (snapshot from %s)\n",
				stats.Size, s.Len(), s.LoadedAt().Format("2006-01-02 15:04"))
		}

		fmt.Println("\nTraining status          subset      citywide")
		for _, st := range stats.Statuses {
			fmt.Printf("  %-20s %5.1f%% (%d)    %5.1f%%\n",
				st.Status.Display(), st.Percent, st.Count, st.CityPercent)
		}

		fmt.Printf("\nMean STH %.1f%% (citywide %.1f%%)\n", stats.MeanSTH, stats.CityMeanSTH)
		fmt.Printf("Mean ENI %.1f%% (citywide %.1f%%)\n", stats.MeanENI, stats.CityMeanENI)
		fmt.Printf("High-need schools: %d\n", stats.HighNeedCount)
		return nil
	},
}

func init() {
	addFilterFlags(statsCmd)
	rootCmd.AddCommand(statsCmd)
}
