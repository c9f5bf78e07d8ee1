package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/nyc-osyd/atlas-cli/internal/cluster"
	"github.com/nyc-osyd/atlas-cli/internal/export"
	"github.com/nyc-osyd/atlas-cli/internal/model"
)

var priorityCmd = &cobra.Command{
	Use:   "priority",
	Short: "Rank schools meeting the enabled need criteria, grouped by superintendent",
	RunE: func(cmd *cobra.Command, args []string) error {
		filters, err := filterFromFlags(cmd)
		if err != nil {
			return err
		}
		criteria := criteriaFromFlags(cmd)

		s, err := loadCachedStore(cmd.Context())
		if err != nil {
			return err
		}

		subset := cluster.Filter(s, filters)
		groups := cluster.Score(subset, criteria)

		if out, _ := cmd.Flags().GetString("out"); out != "" {
			f, err := os.Create(out)
			if err != nil {
				return eris.Wrap(err, "priority: create output file")
			}
			defer f.Close() //nolint:errcheck
			if err := export.WritePriorityCSV(f, groups); err != nil {
				return err
			}
			fmt.Printf("Wrote %d schools to %s\n", len(cluster.Flatten(groups)), out)
			return nil
		}

		if len(groups) == 0 {
			fmt.Println("No schools match the enabled criteria.")
			return nil
		}
		for _, g := range groups {
			fmt.Printf("%s (%d schools)\n", g.SuperintendentID, len(g.Schools))
			for _, r := range g.Schools {
				fmt.Printf("  %-8s %-30s criteria met: %d\n", r.Entity.ID, r.Entity.Name, r.CriteriaMet)
			}
		}
		return nil
	},
}

func criteriaFromFlags(cmd *cobra.Command) model.PriorityCriteria {
	criteria := defaultCriteria()
	f := cmd.Flags()
	if f.Changed("high-sth") {
		criteria.HighSTH, _ = f.GetBool("high-sth")
	}
	if f.Changed("high-eni") {
		criteria.HighENI, _ = f.GetBool("high-eni")
	}
	if f.Changed("untrained") {
		criteria.Untrained, _ = f.GetBool("untrained")
	}
	if f.Changed("fundamentals-only") {
		criteria.FundamentalsOnly, _ = f.GetBool("fundamentals-only")
	}
	return criteria
}

func init() {
	addFilterFlags(priorityCmd)
	f := priorityCmd.Flags()
	f.Bool("high-sth", false, "include schools with STH at or above the threshold")
	f.Bool("high-eni", false, "include schools with ENI at or above the threshold")
	f.Bool("untrained", false, "include schools with no training")
	f.Bool("fundamentals-only", false, "include schools with partial training")
	f.String("out", "", "write the flattened list as CSV to this path")
	rootCmd.AddCommand(priorityCmd)
}
