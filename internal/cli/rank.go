package cli

import (
	"github.com/spf13/cobra"

	"github.com/vijay-prabhu/jobmatch/internal/output"
	"github.com/vijay-prabhu/jobmatch/internal/source"
)

var (
	rankFilters  source.PostingFilters
	rankMinScore float64
	rankLimit    int
)

var rankCmd = &cobra.Command{
	Use:   "rank <user-id>",
	Short: "Rank active job postings for a job seeker",
	Long: `Rank scores every active posting against the job seeker's profile and
prints the matches, best first. Postings with equal scores keep the order the
store returned them in.

Examples:
  jobmatch rank u-42
  jobmatch rank u-42 --min-score=0.6 --limit=10
  jobmatch rank u-42 --company=acme --job-type=contract -o json`,
	Args: cobra.ExactArgs(1),
	RunE: runRank,
}

var scoreCmd = &cobra.Command{
	Use:   "score <user-id> <posting-id>",
	Short: "Score one posting for a job seeker with a per-feature breakdown",
	Args:  cobra.ExactArgs(2),
	RunE:  runScore,
}

func init() {
	rootCmd.AddCommand(rankCmd)
	rootCmd.AddCommand(scoreCmd)
	addRankFlags(rankCmd)
}

func addRankFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&rankFilters.Company, "company", "", "Only postings from this company")
	cmd.Flags().StringVar(&rankFilters.JobType, "job-type", "", "Only postings of this job type")
	cmd.Flags().StringVar(&rankFilters.Location, "location", "", "Only postings whose location contains this text")
	cmd.Flags().IntVar(&rankFilters.Limit, "page-size", 0, "Fetch at most this many postings (0 = all)")
	cmd.Flags().IntVar(&rankFilters.Offset, "offset", 0, "Skip this many postings when fetching")
	cmd.Flags().Float64Var(&rankMinScore, "min-score", -1, "Drop matches below this score (default: matching.min_score)")
	cmd.Flags().IntVar(&rankLimit, "limit", -1, "Maximum matches to show (default: matching.limit, 0 = all)")
}

func runRank(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	rec, err := a.recommender(ctx, false, false, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	ranking, err := rec.Rank(ctx, args[0], a.rankOptions(rankFilters, rankMinScore, rankLimit))
	if err != nil {
		return err
	}

	return output.OutputTo(cmd.OutOrStdout(), outputFmt, ranking)
}

func runScore(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	rec, err := a.recommender(ctx, false, false, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	result, err := rec.Score(ctx, args[0], args[1])
	if err != nil {
		return err
	}

	return output.OutputTo(cmd.OutOrStdout(), outputFmt, result)
}
