package logger

import (
	"strings"

	"go.uber.org/zap"

	"github.com/vijay-prabhu/jobmatch/internal/match"
)

const (
	FieldProfileID = "profile_id"
	FieldPostingID = "posting_id"
	FieldCompany   = "company"
	FieldScore     = "match_score"
	FieldTransport = "transport"
)

// WithFields attaches fields to the logger, falling back to a no-op logger when nil
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// ProfileFields describes a job seeker. Blank ids are omitted.
func ProfileFields(profile match.Profile) []zap.Field {
	id := strings.TrimSpace(profile.ID)
	if id == "" {
		return nil
	}
	return []zap.Field{zap.String(FieldProfileID, id)}
}

// ResultFields describes a scored posting
func ResultFields(result match.MatchResult) []zap.Field {
	fields := []zap.Field{
		zap.String(FieldPostingID, result.Posting.ID),
		zap.Float64(FieldScore, result.Score),
	}
	if c := strings.TrimSpace(result.Posting.Company); c != "" {
		fields = append(fields, zap.String(FieldCompany, c))
	}
	return fields
}

// WithProfile attaches the profile id to the logger
func WithProfile(logger *zap.Logger, profile match.Profile) *zap.Logger {
	return WithFields(logger, ProfileFields(profile)...)
}
