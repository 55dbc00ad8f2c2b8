package catalog

import (
	"context"

	"github.com/cinebuzz/discovery/models"
)

// Status tags every adapter result so callers can tell "nothing found"
// apart from "upstream misbehaved".
type Status int

const (
	StatusOK Status = iota
	StatusEmpty
	StatusMalformed
	StatusUnavailable
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusEmpty:
		return "empty"
	case StatusMalformed:
		return "malformed"
	case StatusUnavailable:
		return "unavailable"
	}
	return "unknown"
}

// Failed reports whether the result came from an upstream failure.
func (s Status) Failed() bool {
	return s == StatusMalformed || s == StatusUnavailable
}

type Category string

const (
	CategoryPopular     Category = "popular"
	CategoryTopRated    Category = "top_rated"
	CategoryNowPlaying  Category = "now_playing"
	CategoryAiringToday Category = "airing_today"
	CategoryGenre       Category = "genre"
)

type ListQuery struct {
	Category Category
	GenreID  int
	Page     int
}

type Page struct {
	Records      []models.MediaRecord
	TotalResults int
	TotalPages   int
	Status       Status
}

// NewPage builds an OK page, or an Empty one when there are no records.
func NewPage(records []models.MediaRecord, totalResults, totalPages int) *Page {
	st := StatusOK
	if len(records) == 0 {
		st = StatusEmpty
		records = []models.MediaRecord{}
	}
	return &Page{
		Records:      records,
		TotalResults: totalResults,
		TotalPages:   totalPages,
		Status:       st,
	}
}

func FailedPage(st Status) *Page {
	return &Page{
		Records: []models.MediaRecord{},
		Status:  st,
	}
}

// Item is the result of a single lookup. Record is nil unless Status is StatusOK.
type Item struct {
	Record *models.MediaRecord
	Status Status
}

func NewItem(r *models.MediaRecord) *Item {
	if r == nil {
		return &Item{Status: StatusEmpty}
	}
	return &Item{Record: r, Status: StatusOK}
}

func FailedItem(st Status) *Item {
	return &Item{Status: st}
}

type GenreList struct {
	Genres []models.Genre
	Status Status
}

func NewGenreList(genres []models.Genre) *GenreList {
	if len(genres) == 0 {
		return &GenreList{Genres: []models.Genre{}, Status: StatusEmpty}
	}
	return &GenreList{Genres: genres, Status: StatusOK}
}

func FailedGenreList(st Status) *GenreList {
	return &GenreList{Genres: []models.Genre{}, Status: st}
}

// Provider is a fail-soft adapter over one external catalog. Implementations
// never return errors: every upstream failure is folded into the result Status.
type Provider interface {
	// GetName returns a stable provider name used for logging, metrics and cache keys
	GetName() string
	Type() models.MediaType
	// Owns reports whether id belongs to this provider's namespace
	Owns(id string) bool
	Search(ctx context.Context, query string, page int) *Page
	List(ctx context.Context, q ListQuery) *Page
	Get(ctx context.Context, id string) *Item
	Genres(ctx context.Context) *GenreList
}

// Localized is implemented by providers whose responses depend on a language.
type Localized interface {
	Language() string
}
