package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nyc-osyd/atlas-cli/internal/geo"
)

var districtsCmd = &cobra.Command{
	Use:   "districts",
	Short: "Show per-district training coverage",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadCachedStore(cmd.Context())
		if err != nil {
			return err
		}

		coverage, unassigned := geo.Aggregate(s.Entities())
		if len(coverage) == 0 {
			fmt.Println("No schools carry a district id.")
			return nil
		}

		fmt.Println("District  Schools  Complete  Partial  None  Coverage")
		for _, c := range coverage {
			fmt.Printf("%-8s %8d %9d %8d %5d %8.1f%%\n",
				c.DistrictID, c.Schools, c.Complete, c.FundamentalsOnly, c.None, c.CoveragePct)
		}
		if unassigned > 0 {
			fmt.Printf("(%d schools have no district id)\n", unassigned)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(districtsCmd)
}
