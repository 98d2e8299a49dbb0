package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vijay-prabhu/jobmatch/internal/scheduler"
)

var (
	watchSpec     string
	watchProfiles []string
	watchOnce     bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Periodically rank and notify matches for job seekers",
	Long: `Watch runs a digest on the schedule.spec cron schedule. Each run ranks
postings for every watched profile and notifies the top matches. A failure
for one profile is logged and the digest moves on to the next.

Examples:
  jobmatch watch                          # every stored profile, schedule.spec
  jobmatch watch --spec="0 9 * * 1-5"     # weekday mornings
  jobmatch watch --profile=u-1 --once     # one digest, then exit`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVar(&watchSpec, "spec", "", "Cron spec (default: schedule.spec)")
	watchCmd.Flags().StringSliceVar(&watchProfiles, "profile", nil, "Profile id to watch (repeatable, default: schedule.profile_ids or all)")
	watchCmd.Flags().BoolVar(&watchOnce, "once", false, "Run a single digest and exit")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	rec, err := a.recommender(ctx, true, false, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	sc := a.cfg.Schedule
	spec := watchSpec
	if spec == "" {
		spec = sc.Spec
	}
	profiles := watchProfiles
	if len(profiles) == 0 {
		profiles = sc.ProfileIDs
	}

	s := scheduler.New(rec, a.store, scheduler.Config{
		Spec:       spec,
		ProfileIDs: profiles,
		Options:    a.rankOptions(rankFilters, -1, -1),
	}, a.logger)

	if watchOnce {
		summary := s.RunOnce(ctx)
		if len(summary.Errors) > 0 {
			a.logger.Warn("digest finished with errors", zap.Int("errors", len(summary.Errors)))
		}
		return nil
	}

	if err := s.Start(ctx); err != nil {
		return err
	}
	defer s.Stop()

	if sc.RunOnStart {
		s.RunOnce(ctx)
	}

	<-ctx.Done()
	return nil
}
