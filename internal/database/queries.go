package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vijay-prabhu/jobmatch/internal/match"
	"github.com/vijay-prabhu/jobmatch/internal/source"
)

const postingColumns = `id, title, company, location, job_type, experience_level,
	skills_required, salary_min, salary_max, description, is_active, created_at`

// UpsertPosting inserts or replaces a job posting
func (db *DB) UpsertPosting(ctx context.Context, p *match.Posting) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO job_postings (
			id, title, company, location, job_type, experience_level,
			skills_required, salary_min, salary_max, description, is_active,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			company = excluded.company,
			location = excluded.location,
			job_type = excluded.job_type,
			experience_level = excluded.experience_level,
			skills_required = excluded.skills_required,
			salary_min = excluded.salary_min,
			salary_max = excluded.salary_max,
			description = excluded.description,
			is_active = excluded.is_active,
			updated_at = excluded.updated_at
	`,
		p.ID, p.Title, p.Company, p.Location, p.JobType, string(p.ExperienceLevel),
		source.JoinList(p.SkillsRequired), NullFloat64(p.SalaryMin), NullFloat64(p.SalaryMax),
		p.Description, p.IsActive, p.CreatedAt, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert posting %s: %w", p.ID, err)
	}
	return nil
}

// GetPosting retrieves a posting by ID, active or not
func (db *DB) GetPosting(ctx context.Context, id string) (*match.Posting, error) {
	row := db.QueryRowContext(ctx, `SELECT `+postingColumns+` FROM job_postings WHERE id = ?`, id)

	p, err := scanPosting(row)
	if err == sql.ErrNoRows {
		return nil, source.NewPostingNotFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get posting: %w", err)
	}
	return p, nil
}

// FetchActivePostings lists active postings, newest first
func (db *DB) FetchActivePostings(ctx context.Context, filters source.PostingFilters) ([]match.Posting, error) {
	query := `SELECT ` + postingColumns + ` FROM job_postings WHERE is_active = 1`
	args := []interface{}{}

	if filters.Company != "" {
		query += " AND LOWER(company) LIKE LOWER(?)"
		args = append(args, "%"+filters.Company+"%")
	}
	if filters.JobType != "" {
		query += " AND LOWER(job_type) = LOWER(?)"
		args = append(args, filters.JobType)
	}
	if filters.Location != "" {
		query += " AND LOWER(location) LIKE LOWER(?)"
		args = append(args, "%"+filters.Location+"%")
	}

	query += " ORDER BY created_at DESC, id"

	if filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filters.Limit)
		if filters.Offset > 0 {
			query += fmt.Sprintf(" OFFSET %d", filters.Offset)
		}
	}

	rows, err := db.QueryContext(ctx, query, args...)
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

// DeactivatePosting marks a posting closed
func (db *DB) DeactivatePosting(ctx context.Context, id string) error {
	res, err := db.ExecContext(ctx,
		`UPDATE job_postings SET is_active = 0, updated_at = ? WHERE id = ?`, time.Now(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return source.NewPostingNotFound(id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanPosting(s scanner) (*match.Posting, error) {
	p := &match.Posting{}
	var level, skills string
	var salaryMin, salaryMax sql.NullFloat64

	err := s.Scan(
		&p.ID, &p.Title, &p.Company, &p.Location, &p.JobType, &level,
		&skills, &salaryMin, &salaryMax, &p.Description, &p.IsActive, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.ExperienceLevel = match.ExperienceLevel(level)
	p.SkillsRequired = source.ParseList(skills)
	p.SalaryMin = Float64Ptr(salaryMin)
	p.SalaryMax = Float64Ptr(salaryMax)
	return p, nil
}

// UpsertProfile inserts or replaces a job seeker profile
func (db *DB) UpsertProfile(ctx context.Context, p *match.Profile) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	now := time.Now()

	_, err := db.ExecContext(ctx, `
		INSERT INTO job_seekers (
			id, skills, experience_level, preferred_job_types, location,
			salary_min, salary_max, industries, willing_to_relocate, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			skills = excluded.skills,
			experience_level = excluded.experience_level,
			preferred_job_types = excluded.preferred_job_types,
			location = excluded.location,
			salary_min = excluded.salary_min,
			salary_max = excluded.salary_max,
			industries = excluded.industries,
			willing_to_relocate = excluded.willing_to_relocate,
			updated_at = excluded.updated_at
	`,
		p.ID, source.JoinList(p.Skills), string(p.ExperienceLevel), source.JoinList(p.PreferredJobTypes),
		p.Location, NullFloat64(p.SalaryExpectationMin), NullFloat64(p.SalaryExpectationMax),
		source.JoinList(p.Industries), p.WillingToRelocate, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert profile %s: %w", p.ID, err)
	}
	return nil
}

// FetchJobSeekerProfile retrieves a profile, splitting its stored list fields
func (db *DB) FetchJobSeekerProfile(ctx context.Context, userID string) (*match.Profile, error) {
	p := &match.Profile{}
	var skills, level, jobTypes, industries string
	var salaryMin, salaryMax sql.NullFloat64

	err := db.QueryRowContext(ctx, `
		SELECT id, skills, experience_level, preferred_job_types, location,
		       salary_min, salary_max, industries, willing_to_relocate
		FROM job_seekers WHERE id = ?
	`, userID).Scan(
		&p.ID, &skills, &level, &jobTypes, &p.Location,
		&salaryMin, &salaryMax, &industries, &p.WillingToRelocate,
	)
	if err == sql.ErrNoRows {
		return nil, source.NewProfileNotFound(userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	p.Skills = source.ParseList(skills)
	p.ExperienceLevel = match.ExperienceLevel(level)
	p.PreferredJobTypes = source.ParseList(jobTypes)
	p.Industries = source.ParseList(industries)
	p.SalaryExpectationMin = Float64Ptr(salaryMin)
	p.SalaryExpectationMax = Float64Ptr(salaryMax)
	return p, nil
}

// ListProfileIDs returns every stored profile id
func (db *DB) ListProfileIDs(ctx context.Context) ([]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT id FROM job_seekers ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// GetStats returns record counts
func (db *DB) GetStats(ctx context.Context) (*Stats, error) {
	s := &Stats{}
	err := db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM job_postings),
			(SELECT COUNT(*) FROM job_postings WHERE is_active = 1),
			(SELECT COUNT(*) FROM job_seekers)
	`).Scan(&s.Postings, &s.ActivePostings, &s.Profiles)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}
	return s, nil
}
