package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vijay-prabhu/jobmatch/internal/database"
	"github.com/vijay-prabhu/jobmatch/internal/output"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show counts of stored postings and profiles",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

type statsSource interface {
	GetStats(ctx context.Context) (*database.Stats, error)
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	src, ok := a.store.(statsSource)
	if !ok {
		return fmt.Errorf("stats are not supported for the %s driver", a.cfg.Database.Driver)
	}

	stats, err := src.GetStats(ctx)
	if err != nil {
		return fmt.Errorf("failed to get stats: %w", err)
	}

	return output.OutputTo(cmd.OutOrStdout(), outputFmt, stats)
}
