package match

import (
	"math"
	"strings"
)

// MatchSkills returns the fraction of required skills covered by the candidate
// and the covered required skills in their original order and spelling.
//
// A required skill is covered when either normalized string contains the other,
// so "react" covers "react.js" and one candidate skill may cover several
// requirements. Blank entries on either side are ignored. With no required
// skills the score is 0.
func MatchSkills(candidate []string, required []string) (float64, []string) {
	have := make([]string, 0, len(candidate))
	for _, s := range candidate {
		if n := normalize(s); n != "" {
			have = append(have, n)
		}
	}

	total := 0
	matched := []string{}
	for _, req := range required {
		r := normalize(req)
		if r == "" {
			continue
		}
		total++
		for _, c := range have {
			if strings.Contains(c, r) || strings.Contains(r, c) {
				matched = append(matched, req)
				break
			}
		}
	}

	if total == 0 {
		return 0, matched
	}
	return float64(len(matched)) / float64(total), matched
}

// MatchExperience compares seniority levels.
// Unknown levels score 0.5, overqualified candidates 0.8, and each level of
// deficit costs 0.3 down to a floor of 0.3.
func MatchExperience(candidate, job ExperienceLevel) float64 {
	ci, ok := candidate.Index()
	if !ok {
		return 0.5
	}
	ji, ok := job.Index()
	if !ok {
		return 0.5
	}

	switch {
	case ci == ji:
		return 1.0
	case ci > ji:
		return 0.8
	default:
		return math.Max(0.3, 1.0-0.3*float64(ji-ci))
	}
}

// MatchJobType scores a job type against the candidate's preferences
func MatchJobType(preferred []string, jobType string) float64 {
	if len(preferred) == 0 {
		return 0.5
	}

	jt := normalize(jobType)
	for _, p := range preferred {
		if normalize(p) == jt {
			return 1.0
		}
	}
	return 0.2
}

// MatchLocation scores location compatibility; the first applicable rule wins.
// An empty location never counts as equal to or contained in another one.
func MatchLocation(candidate, job string, willingToRelocate bool) float64 {
	c := normalize(candidate)
	j := normalize(job)

	switch {
	case c != "" && c == j:
		return 1.0
	case strings.Contains(j, "remote"):
		return 0.9
	case c != "" && j != "" && (strings.Contains(c, j) || strings.Contains(j, c)):
		return 0.8
	case willingToRelocate:
		return 0.6
	default:
		return 0.2
	}
}

// MatchSalary compares salary ranges. Missing minimums score 0.5.
func MatchSalary(seekerMin, seekerMax, jobMin, jobMax *float64) float64 {
	if seekerMin == nil || jobMin == nil {
		return 0.5
	}

	if seekerMax != nil && jobMax != nil {
		overlap := math.Min(*seekerMax, *jobMax) - math.Max(*seekerMin, *jobMin)
		if overlap > 0 {
			return 1.0
		}
	}

	switch {
	case *jobMin >= *seekerMin:
		return 0.8
	case *jobMin >= 0.8**seekerMin:
		return 0.6
	default:
		return 0.3
	}
}
