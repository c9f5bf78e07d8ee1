package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Fetch the workbook export and cache a validated snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		s, report, err := buildStoreFromSource(ctx)
		if err != nil {
			return err
		}

		snap, err := openSnapshotStore(ctx)
		if err != nil {
			return err
		}
		defer snap.Close() //nolint:errcheck

		if err := snap.SaveSnapshot(ctx, s.Entities(), s.LoadedAt()); err != nil {
			return eris.Wrap(err, "load: save snapshot")
		}

		fmt.Printf("Loaded %d schools (%d rows excluded)\n", s.Len(), report.Excluded)
		showErrors, _ := cmd.Flags().GetBool("show-errors")
		if showErrors {
			for _, re := range report.Errors {
				fmt.Println("  " + re.String())
			}
		}

		b := s.Baseline()
		fmt.Printf("Citywide mean STH %.1f%% (%d schools), mean ENI %.1f%% (%d schools)\n",
			b.MeanSTH, b.STHSamples, b.MeanENI, b.ENISamples)

		zap.L().Info("snapshot cached",
			zap.Int("schools", s.Len()),
			zap.Int("excluded", report.Excluded),
		)
		return nil
	},
}

func init() {
	loadCmd.Flags().Bool("show-errors", false, "print every excluded row")
	rootCmd.AddCommand(loadCmd)
}
