// Package pgstore serves postings and profiles from PostgreSQL.
package pgstore

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vijay-prabhu/jobmatch/internal/match"
	"github.com/vijay-prabhu/jobmatch/internal/source"
)

//go:embed schema.sql
var schema string

// Store reads postings and profiles through a pgx connection pool
type Store struct {
	pool *pgxpool.Pool
}

// NewPool creates and verifies a pgxpool connection pool
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}

	return pool, nil
}

// Open connects to PostgreSQL and ensures the schema exists
func Open(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := NewPool(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	s := New(pool)
	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an existing pool
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Migrate creates the tables if they are missing
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// Close releases the pool
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// Health checks database connectivity
func (s *Store) Health(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

const postingColumns = `id, title, company, location, job_type, experience_level,
	skills_required, salary_min, salary_max, description, is_active, created_at`

// postingsQuery builds the active-postings query with positional arguments
func postingsQuery(filters source.PostingFilters) (string, []interface{}) {
	var b strings.Builder
	args := []interface{}{}

	b.WriteString(`SELECT ` + postingColumns + ` FROM job_postings WHERE is_active = true`)

	if filters.Company != "" {
		args = append(args, "%"+filters.Company+"%")
		fmt.Fprintf(&b, " AND company ILIKE $%d", len(args))
	}
	if filters.JobType != "" {
		args = append(args, filters.JobType)
		fmt.Fprintf(&b, " AND LOWER(job_type) = LOWER($%d)", len(args))
	}
	if filters.Location != "" {
		args = append(args, "%"+filters.Location+"%")
		fmt.Fprintf(&b, " AND location ILIKE $%d", len(args))
	}

	b.WriteString(" ORDER BY created_at DESC, id")

	if filters.Limit > 0 {
		args = append(args, filters.Limit)
		fmt.Fprintf(&b, " LIMIT $%d", len(args))
		if filters.Offset > 0 {
			args = append(args, filters.Offset)
			fmt.Fprintf(&b, " OFFSET $%d", len(args))
		}
	}

	return b.String(), args
}

// FetchActivePostings lists active postings, newest first
func (s *Store) FetchActivePostings(ctx context.Context, filters source.PostingFilters) ([]match.Posting, error) {
	query, args := postingsQuery(filters)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query postings: %w", err)
	}
	defer rows.Close()

	postings := []match.Posting{}
	for rows.Next() {
		p, err := scanPosting(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan posting: %w", err)
		}
		postings = append(postings, *p)
	}
	return postings, rows.Err()
}

// GetPosting retrieves a posting by ID
func (s *Store) GetPosting(ctx context.Context, id string) (*match.Posting, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+postingColumns+` FROM job_postings WHERE id = $1`, id)

	p, err := scanPosting(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, source.NewPostingNotFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get posting: %w", err)
	}
	return p, nil
}

func scanPosting(row pgx.Row) (*match.Posting, error) {
	p := &match.Posting{}
	var level string

	err := row.Scan(
		&p.ID, &p.Title, &p.Company, &p.Location, &p.JobType, &level,
		&p.SkillsRequired, &p.SalaryMin, &p.SalaryMax, &p.Description, &p.IsActive, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.ExperienceLevel = match.ExperienceLevel(level)
	return p, nil
}

// FetchJobSeekerProfile retrieves a profile by user ID
func (s *Store) FetchJobSeekerProfile(ctx context.Context, userID string) (*match.Profile, error) {
	p := &match.Profile{}
	var level string

	err := s.pool.QueryRow(ctx, `
		SELECT id, skills, experience_level, preferred_job_types, location,
		       salary_min, salary_max, industries, willing_to_relocate
		FROM job_seekers WHERE id = $1
	`, userID).Scan(
		&p.ID, &p.Skills, &level, &p.PreferredJobTypes, &p.Location,
		&p.SalaryExpectationMin, &p.SalaryExpectationMax, &p.Industries, &p.WillingToRelocate,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, source.NewProfileNotFound(userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	p.ExperienceLevel = match.ExperienceLevel(level)
	return p, nil
}

// UpsertPosting inserts or replaces a job posting
func (s *Store) UpsertPosting(ctx context.Context, p *match.Posting) error {
	skills := p.SkillsRequired
	if skills == nil {
		skills = []string{}
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO job_postings (`+postingColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, COALESCE($12, NOW()))
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			company = EXCLUDED.company,
			location = EXCLUDED.location,
			job_type = EXCLUDED.job_type,
			experience_level = EXCLUDED.experience_level,
			skills_required = EXCLUDED.skills_required,
			salary_min = EXCLUDED.salary_min,
			salary_max = EXCLUDED.salary_max,
			description = EXCLUDED.description,
			is_active = EXCLUDED.is_active
	`,
		p.ID, p.Title, p.Company, p.Location, p.JobType, string(p.ExperienceLevel),
		skills, p.SalaryMin, p.SalaryMax, p.Description, p.IsActive, nullTime(p),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert posting %s: %w", p.ID, err)
	}
	return nil
}

// UpsertProfile inserts or replaces a job seeker profile
func (s *Store) UpsertProfile(ctx context.Context, p *match.Profile) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO job_seekers (
			id, skills, experience_level, preferred_job_types, location,
			salary_min, salary_max, industries, willing_to_relocate
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			skills = EXCLUDED.skills,
			experience_level = EXCLUDED.experience_level,
			preferred_job_types = EXCLUDED.preferred_job_types,
			location = EXCLUDED.location,
			salary_min = EXCLUDED.salary_min,
			salary_max = EXCLUDED.salary_max,
			industries = EXCLUDED.industries,
			willing_to_relocate = EXCLUDED.willing_to_relocate
	`,
		p.ID, nonNil(p.Skills), string(p.ExperienceLevel), nonNil(p.PreferredJobTypes), p.Location,
		p.SalaryExpectationMin, p.SalaryExpectationMax, nonNil(p.Industries), p.WillingToRelocate,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert profile %s: %w", p.ID, err)
	}
	return nil
}

// ListProfileIDs returns every stored profile id
func (s *Store) ListProfileIDs(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT id FROM job_seekers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func nullTime(p *match.Posting) interface{} {
	if p.CreatedAt.IsZero() {
		return nil
	}
	return p.CreatedAt
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
