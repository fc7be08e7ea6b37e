// Package cli defines the koetutka command line.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

// DefaultYear is the trial season processed when --year is not given.
const DefaultYear = 2026

// RunFunc performs one ETL run for the given year.
type RunFunc func(ctx context.Context, year int) error

// NewRootCmd creates the root command. run is invoked with the command's
// context once flags are validated.
func NewRootCmd(run RunFunc) *cobra.Command {
	var year int

	cmd := &cobra.Command{
		Use:   "koetutka",
		Short: "Build the SNJ trial map data for one year",
		Long: `Fetches the SNJ trial calendar, resolves every trial location to
coordinates (cached in a local file between runs) and writes the year's
trials, sorted by date, to koetutka_{year}.json.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if year < 1 || year > 9998 {
				return fmt.Errorf("invalid --year %d", year)
			}
			return run(cmd.Context(), year)
		},
	}

	cmd.Flags().IntVar(&year, "year", DefaultYear, "Trial season to process")

	return cmd
}
