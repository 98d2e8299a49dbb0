package output

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/olekukonko/tablewriter"

	"github.com/vijay-prabhu/jobmatch/internal/database"
	"github.com/vijay-prabhu/jobmatch/internal/match"
	"github.com/vijay-prabhu/jobmatch/internal/notify"
	"github.com/vijay-prabhu/jobmatch/internal/recommend"
)

// Table writes data as a formatted table to stdout
func Table(data interface{}) error {
	return TableTo(os.Stdout, data)
}

// TableTo writes data as a formatted table to the given writer
func TableTo(w io.Writer, data interface{}) error {
	switch v := data.(type) {
	case []match.MatchResult:
		return matchesTable(w, v)
	case *recommend.Ranking:
		return matchesTable(w, v.Matches)
	case *match.MatchResult:
		return matchDetail(w, v)
	case notify.Report:
		return reportTable(w, &v)
	case *notify.Report:
		return reportTable(w, v)
	case *recommend.Outcome:
		if err := matchesTable(w, v.Ranking.Matches); err != nil {
			return err
		}
		fmt.Fprintln(w)
		return reportTable(w, &v.Report)
	case *database.Stats:
		return statsTable(w, v)
	default:
		return fmt.Errorf("unsupported data type for table output: %T", data)
	}
}

func matchesTable(w io.Writer, results []match.MatchResult) error {
	if len(results) == 0 {
		fmt.Fprintln(w, "No matches found.")
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.Header("#", "Score", "Title", "Company", "Location", "Matching Skills")

	for i, r := range results {
		if err := table.Append([]string{
			fmt.Sprintf("%d", i+1),
			FormatScore(r.Score),
			truncate(r.Posting.Title, 30),
			truncate(r.Posting.Company, 20),
			truncate(r.Posting.Location, 20),
			truncate(strings.Join(r.MatchingSkills, ", "), 30),
		}); err != nil {
			return err
		}
	}

	return table.Render()
}

func matchDetail(w io.Writer, r *match.MatchResult) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "Posting:\t%s\n", r.Posting.ID)
	fmt.Fprintf(tw, "Title:\t%s\n", r.Posting.Title)
	if r.Posting.Company != "" {
		fmt.Fprintf(tw, "Company:\t%s\n", r.Posting.Company)
	}
	fmt.Fprintf(tw, "Score:\t%s\n", FormatScore(r.Score))
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "BREAKDOWN")
	fmt.Fprintf(tw, "  Skills:\t%s\n", FormatScore(r.Breakdown.Skills))
	fmt.Fprintf(tw, "  Experience:\t%s\n", FormatScore(r.Breakdown.Experience))
	fmt.Fprintf(tw, "  Job type:\t%s\n", FormatScore(r.Breakdown.JobType))
	fmt.Fprintf(tw, "  Location:\t%s\n", FormatScore(r.Breakdown.Location))
	fmt.Fprintf(tw, "  Salary:\t%s\n", FormatScore(r.Breakdown.Salary))

	if len(r.MatchingSkills) > 0 {
		fmt.Fprintln(tw)
		fmt.Fprintf(tw, "Matching skills:\t%s\n", strings.Join(r.MatchingSkills, ", "))
	}

	if len(r.Reasons) > 0 {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "WHY")
		for _, reason := range r.Reasons {
			fmt.Fprintf(tw, "  - %s\n", reason.Message)
		}
	}

	return tw.Flush()
}

func reportTable(w io.Writer, r *notify.Report) error {
	if r.Attempted == 0 {
		fmt.Fprintln(w, "No matches above the notification threshold.")
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.Header("Posting", "Title", "Score", "Status")

	for _, res := range r.Results {
		status := "sent"
		if !res.OK() {
			status = "failed: " + truncate(res.Error, 40)
		}
		if err := table.Append([]string{
			res.Request.PostingID,
			truncate(res.Request.Title, 30),
			FormatScore(res.Request.Score),
			status,
		}); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}

	fmt.Fprintf(w, "%d sent, %d failed via %s\n", r.Sent, r.Failed, r.Transport)
	return nil
}

func statsTable(w io.Writer, s *database.Stats) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Postings:\t%d\n", s.Postings)
	fmt.Fprintf(tw, "Active postings:\t%d\n", s.ActivePostings)
	fmt.Fprintf(tw, "Profiles:\t%d\n", s.Profiles)
	return tw.Flush()
}

// FormatScore renders a [0,1] score as a whole percentage
func FormatScore(score float64) string {
	return fmt.Sprintf("%d%%", int(math.Round(score*100)))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
