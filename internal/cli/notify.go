package cli

import (
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/vijay-prabhu/jobmatch/internal/config"
	"github.com/vijay-prabhu/jobmatch/internal/email/gmail"
	"github.com/vijay-prabhu/jobmatch/internal/notify"
	"github.com/vijay-prabhu/jobmatch/internal/output"
)

const (
	promptYes = "Yes"
	promptNo  = "No"
)

var notifyYes bool

var notifyCmd = &cobra.Command{
	Use:   "notify <user-id>",
	Short: "Notify a job seeker about their top matches",
	Long: `Notify ranks postings for the job seeker, keeps the top matches that reach
notify.high_threshold and dispatches one notification per match through the
configured transport. A failed dispatch never stops the others.

Examples:
  jobmatch notify u-42          # asks before sending
  jobmatch notify u-42 --yes    # no prompt, for scripts`,
	Args: cobra.ExactArgs(1),
	RunE: runNotify,
}

var notifyAuthCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authorize Gmail for sending notifications",
	Long: `Auth opens a browser for Google OAuth and stores the token at
notify.gmail.token_path. Run it once before using the gmail transport.`,
	Args: cobra.NoArgs,
	RunE: runNotifyAuth,
}

func init() {
	rootCmd.AddCommand(notifyCmd)
	notifyCmd.AddCommand(notifyAuthCmd)
	addRankFlags(notifyCmd)
	notifyCmd.Flags().BoolVarP(&notifyYes, "yes", "y", false, "Do not ask for confirmation")
}

func runNotify(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	userID := args[0]

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	rec, err := a.recommender(ctx, true, !notifyYes, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	opts := a.rankOptions(rankFilters, rankMinScore, rankLimit)

	if !notifyYes {
		ranking, err := rec.Rank(ctx, userID, opts)
		if err != nil {
			return err
		}
		n := a.cfg.Notify
		top := notify.SelectTopMatches(ranking.Matches, n.HighThreshold, n.TopN)
		if len(top) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No matches above the notification threshold.")
			return nil
		}
		if err := output.TableTo(cmd.OutOrStdout(), top); err != nil {
			return err
		}

		prompt := promptui.Select{
			Label: fmt.Sprintf("Send %d notification(s) via %s?", len(top), n.Transport),
			Items: []string{promptYes, promptNo},
		}
		_, answer, err := prompt.Run()
		if err != nil {
			return fmt.Errorf("prompt failed: %w", err)
		}
		if answer != promptYes {
			fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
			return nil
		}
	}

	outcome, err := rec.Notify(ctx, userID, opts)
	if err != nil {
		return err
	}

	if err := output.OutputTo(cmd.OutOrStdout(), outputFmt, outcome.Report); err != nil {
		return err
	}
	if outcome.Report.Failed > 0 {
		return fmt.Errorf("%d of %d notification(s) failed", outcome.Report.Failed, outcome.Report.Attempted)
	}
	return nil
}

func runNotifyAuth(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	g := cfg.Notify.Gmail
	if err := gmail.Authorize(cmd.Context(), g.CredentialsPath, g.TokenPath, cmd.ErrOrStderr()); err != nil {
		return fmt.Errorf("authorization failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Token saved to %s\n", g.TokenPath)
	return nil
}
