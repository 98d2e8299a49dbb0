package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vijay-prabhu/jobmatch/internal/match"
)

// importFile is the JSON document accepted by the import command
type importFile struct {
	Postings []match.Posting `json:"postings"`
	Profiles []match.Profile `json:"profiles"`
}

var importCmd = &cobra.Command{
	Use:   "import <file.json>",
	Short: "Load job postings and profiles from a JSON file",
	Long: `Import upserts postings and job seeker profiles into the configured store.

The file holds two arrays:

  {
    "postings": [{"id": "p1", "title": "Go Developer", "skills_required": ["go"], "is_active": true}],
    "profiles": [{"id": "u1", "skills": ["go", "postgres"], "experience_level": "mid"}]
  }

Entries without an id get a generated one.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}

	var file importFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse %s: %w", args[0], err)
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	postings, profiles, err := importAll(ctx, a.store, file)
	if err != nil {
		return err
	}

	a.logger.Info("import finished", zap.Int("postings", postings), zap.Int("profiles", profiles))
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d posting(s) and %d profile(s)\n", postings, profiles)
	return nil
}

type upserter interface {
	UpsertPosting(ctx context.Context, p *match.Posting) error
	UpsertProfile(ctx context.Context, p *match.Profile) error
}

func importAll(ctx context.Context, s upserter, file importFile) (int, int, error) {
	now := time.Now().UTC()

	for i := range file.Postings {
		p := &file.Postings[i]
		if strings.TrimSpace(p.ID) == "" {
			p.ID = uuid.NewString()
		}
		if p.CreatedAt.IsZero() {
			p.CreatedAt = now
		}
		if err := s.UpsertPosting(ctx, p); err != nil {
			return i, 0, fmt.Errorf("failed to import posting %s: %w", p.ID, err)
		}
	}

	for i := range file.Profiles {
		p := &file.Profiles[i]
		if strings.TrimSpace(p.ID) == "" {
			p.ID = uuid.NewString()
		}
		if err := s.UpsertProfile(ctx, p); err != nil {
			return len(file.Postings), i, fmt.Errorf("failed to import profile %s: %w", p.ID, err)
		}
	}

	return len(file.Postings), len(file.Profiles), nil
}
