package models

import "strings"

type SortType int

const (
	SortTypeDefault SortType = iota
	SortTypeTrending
	SortTypeTopRated
	SortTypeNewest
	SortTypeOldest
	SortTypeMostReviewed
)

func (s SortType) String() string {
	switch s {
	case SortTypeDefault:
		return "Default"
	case SortTypeTrending:
		return "Trending"
	case SortTypeTopRated:
		return "Top Rated"
	case SortTypeNewest:
		return "Newest"
	case SortTypeOldest:
		return "Oldest"
	case SortTypeMostReviewed:
		return "Most Reviewed"
	default:
		return "Unknown"
	}
}

// ParseSortType understands both display names ("Top Rated") and slugs ("top_rated").
func ParseSortType(s string) SortType {
	n := strings.NewReplacer(" ", "", "_", "", "-", "").Replace(strings.ToLower(s))
	switch n {
	case "trending":
		return SortTypeTrending
	case "toprated", "rating":
		return SortTypeTopRated
	case "newest", "new":
		return SortTypeNewest
	case "oldest", "old":
		return SortTypeOldest
	case "mostreviewed", "reviewed":
		return SortTypeMostReviewed
	default:
		return SortTypeDefault
	}
}
