package catalog

import (
	"context"
	"slices"

	"github.com/cinebuzz/discovery/models"
)

const (
	trendingRatingWeight = 0.7
	trendingYearWeight   = 0.3
)

// ReviewCounter supplies local review counts for the "Most Reviewed" ordering.
type ReviewCounter interface {
	Counts(ctx context.Context) (map[string]int, error)
}

// Sort returns a stably sorted copy of records. SortTypeDefault keeps the
// merge order. The input slice is never modified.
func Sort(records []models.MediaRecord, st models.SortType, counts map[string]int) []models.MediaRecord {
	res := slices.Clone(records)
	switch st {
	case models.SortTypeTrending:
		scores := trendingScores(res)
		idx := make([]int, len(res))
		for i := range idx {
			idx[i] = i
		}
		slices.SortStableFunc(idx, func(a, b int) int {
			return compareDesc(scores[a], scores[b])
		})
		sorted := make([]models.MediaRecord, len(res))
		for i, j := range idx {
			sorted[i] = res[j]
		}
		return sorted
	case models.SortTypeTopRated:
		slices.SortStableFunc(res, func(a, b models.MediaRecord) int {
			return compareDesc(a.Rating, b.Rating)
		})
	case models.SortTypeNewest:
		slices.SortStableFunc(res, func(a, b models.MediaRecord) int {
			return b.Year - a.Year
		})
	case models.SortTypeOldest:
		slices.SortStableFunc(res, func(a, b models.MediaRecord) int {
			return a.Year - b.Year
		})
	case models.SortTypeMostReviewed:
		if len(counts) == 0 {
			return Sort(records, models.SortTypeTopRated, nil)
		}
		slices.SortStableFunc(res, func(a, b models.MediaRecord) int {
			if d := counts[b.ID] - counts[a.ID]; d != 0 {
				return d
			}
			return compareDesc(a.Rating, b.Rating)
		})
	}
	return res
}

func compareDesc(a, b float64) int {
	switch {
	case a > b:
		return -1
	case a < b:
		return 1
	}
	return 0
}

// trendingScores computes rating*0.7 + normalizedYear*0.3 where the year is
// scaled to 0..10 over the known years of the pool. Unknown years score 0.
func trendingScores(records []models.MediaRecord) []float64 {
	minYear, maxYear := 0, 0
	for _, r := range records {
		if r.Year <= 0 {
			continue
		}
		if minYear == 0 || r.Year < minYear {
			minYear = r.Year
		}
		if r.Year > maxYear {
			maxYear = r.Year
		}
	}
	scores := make([]float64, len(records))
	for i, r := range records {
		ny := 0.0
		if r.Year > 0 {
			if maxYear > minYear {
				ny = float64(r.Year-minYear) / float64(maxYear-minYear) * 10
			} else {
				ny = 10
			}
		}
		scores[i] = r.Rating*trendingRatingWeight + ny*trendingYearWeight
	}
	return scores
}

// FilterQuality drops records without a usable poster.
func FilterQuality(records []models.MediaRecord) []models.MediaRecord {
	res := make([]models.MediaRecord, 0, len(records))
	for i := range records {
		if records[i].HasPoster() {
			res = append(res, records[i])
		}
	}
	return res
}

// Truncate caps the pool at limit records, keeping the established order.
func Truncate(records []models.MediaRecord, limit int) []models.MediaRecord {
	if limit <= 0 || len(records) <= limit {
		return records
	}
	return records[:limit]
}
