package browse

import (
	"slices"
	"strconv"
	"strings"

	"github.com/cinebuzz/discovery/models"
)

const (
	// Any disables a filter.
	Any = "All"
	// YearOlder selects everything released before 1990.
	YearOlder   = "Older"
	olderBefore = 1990
)

type ViewMode string

const (
	ViewModeGrid ViewMode = "grid"
	ViewModeList ViewMode = "list"
)

func ParseViewMode(s string) ViewMode {
	if strings.EqualFold(strings.TrimSpace(s), string(ViewModeList)) {
		return ViewModeList
	}
	return ViewModeGrid
}

// Filters narrow the fetched pool without a new request. Empty values and
// Any match every record.
type Filters struct {
	Genre    string `json:"genre,omitempty"`
	Year     string `json:"year,omitempty"`
	Platform string `json:"platform,omitempty"`
	Language string `json:"language,omitempty"`
	Status   string `json:"status,omitempty"`
}

func unset(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || strings.EqualFold(v, Any)
}

func (f *Filters) Match(r *models.MediaRecord) bool {
	if !unset(f.Genre) && !r.HasGenre(f.Genre) {
		return false
	}
	if !unset(f.Year) && !matchYear(f.Year, r.Year) {
		return false
	}
	if !unset(f.Platform) && !r.HasPlatform(f.Platform) {
		return false
	}
	if !unset(f.Language) && !strings.EqualFold(f.Language, r.Language) {
		return false
	}
	if !unset(f.Status) && !strings.EqualFold(f.Status, r.Status) {
		return false
	}
	return true
}

// matchYear understands an exact year ("2015"), a decade ("1990s") and Older.
// An unparsable bucket matches nothing.
func matchYear(bucket string, year int) bool {
	bucket = strings.TrimSpace(bucket)
	if year <= 0 {
		return false
	}
	if strings.EqualFold(bucket, YearOlder) {
		return year < olderBefore
	}
	if d, ok := strings.CutSuffix(bucket, "s"); ok {
		start, err := strconv.Atoi(d)
		if err != nil {
			return false
		}
		return year >= start && year < start+10
	}
	y, err := strconv.Atoi(bucket)
	if err != nil {
		return false
	}
	return y == year
}

func (f *Filters) Apply(records []models.MediaRecord) []models.MediaRecord {
	res := make([]models.MediaRecord, 0, len(records))
	for i := range records {
		if f.Match(&records[i]) {
			res = append(res, records[i])
		}
	}
	return res
}

// Options lists the filter values present in a pool.
type Options struct {
	Genres    []string `json:"genres"`
	Years     []string `json:"years"`
	Platforms []string `json:"platforms"`
	Languages []string `json:"languages"`
	Statuses  []string `json:"statuses"`
}

func collect(set map[string]struct{}) []string {
	res := make([]string, 0, len(set))
	for k := range set {
		res = append(res, k)
	}
	slices.Sort(res)
	return res
}

func NewOptions(records []models.MediaRecord) *Options {
	genres := map[string]struct{}{}
	platforms := map[string]struct{}{}
	languages := map[string]struct{}{}
	statuses := map[string]struct{}{}
	decades := map[int]struct{}{}
	older := false
	for _, r := range records {
		for _, g := range r.Genres {
			genres[g] = struct{}{}
		}
		for _, p := range r.Platforms {
			platforms[p.Name] = struct{}{}
		}
		if r.Language != "" {
			languages[r.Language] = struct{}{}
		}
		if r.Status != "" {
			statuses[r.Status] = struct{}{}
		}
		switch {
		case r.Year <= 0:
		case r.Year < olderBefore:
			older = true
		default:
			decades[r.Year/10*10] = struct{}{}
		}
	}
	ds := make([]int, 0, len(decades))
	for d := range decades {
		ds = append(ds, d)
	}
	slices.Sort(ds)
	slices.Reverse(ds)
	years := make([]string, 0, len(ds)+1)
	for _, d := range ds {
		years = append(years, strconv.Itoa(d)+"s")
	}
	if older {
		years = append(years, YearOlder)
	}
	return &Options{
		Genres:    collect(genres),
		Years:     years,
		Platforms: collect(platforms),
		Languages: collect(languages),
		Statuses:  collect(statuses),
	}
}
