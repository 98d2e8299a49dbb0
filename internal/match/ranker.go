package match

import "sort"

// Rank scores every posting, drops results below minScore and orders the rest
// by descending score. Equal scores keep their input order.
func (s *Scorer) Rank(profile Profile, postings []Posting, minScore float64) []MatchResult {
	results := make([]MatchResult, 0, len(postings))
	for _, p := range postings {
		r := s.Aggregate(profile, p)
		if r.Score < minScore {
			continue
		}
		results = append(results, r)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	return results
}

// Rank ranks postings using the default weighting
func Rank(profile Profile, postings []Posting, minScore float64) []MatchResult {
	return defaultScorer.Rank(profile, postings, minScore)
}
