package catalog

import (
	"strings"

	"github.com/cinebuzz/discovery/models"
)

// titleKey returns the secondary identity of a record. Records without a
// usable title get an empty key and never collide with each other.
func titleKey(r *models.MediaRecord) string {
	return strings.ToLower(strings.TrimSpace(r.Title))
}

// Dedup removes duplicates while preserving order. A record is dropped when its
// provider-qualified id was already seen, or when another record with the same
// title was already seen. The first occurrence always wins.
//
// Title matching is a best-effort cross-provider heuristic: distinct works that
// share a title collapse into one.
func Dedup(records []models.MediaRecord) []models.MediaRecord {
	seenIDs := make(map[string]bool, len(records))
	seenTitles := make(map[string]bool, len(records))
	res := make([]models.MediaRecord, 0, len(records))
	for i := range records {
		r := &records[i]
		if seenIDs[r.ID] {
			continue
		}
		tk := titleKey(r)
		if tk != "" && seenTitles[tk] {
			continue
		}
		seenIDs[r.ID] = true
		if tk != "" {
			seenTitles[tk] = true
		}
		res = append(res, *r)
	}
	return res
}

func dedupGenres(lists ...[]models.Genre) []models.Genre {
	seen := map[string]bool{}
	res := []models.Genre{}
	for _, l := range lists {
		for _, g := range l {
			k := strings.ToLower(strings.TrimSpace(g.Name))
			if k == "" || seen[k] {
				continue
			}
			seen[k] = true
			res = append(res, g)
		}
	}
	return res
}
