package models

import "strings"

type MediaType string

const (
	MediaTypeMovie MediaType = "movie"
	MediaTypeTV    MediaType = "tv"
)

func (t MediaType) String() string {
	return string(t)
}

// ParseMediaType accepts both the singular form and the plural route segment ("movies").
func ParseMediaType(s string) (MediaType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "movie", "movies":
		return MediaTypeMovie, true
	case "tv", "shows", "series":
		return MediaTypeTV, true
	default:
		return "", false
	}
}

type Platform struct {
	Name    string `json:"name"`
	LogoURL string `json:"logoUrl,omitempty"`
	URL     string `json:"url,omitempty"`
}

type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// MediaRecord is a provider-agnostic movie or show. It is built once by an adapter
// and never mutated afterwards.
type MediaRecord struct {
	ID          string     `json:"id"`
	Provider    string     `json:"provider"`
	Type        MediaType  `json:"type"`
	Title       string     `json:"title"`
	Year        int        `json:"year"`
	Rating      float64    `json:"rating"`
	PosterURL   string     `json:"posterUrl,omitempty"`
	BackdropURL string     `json:"backdropUrl,omitempty"`
	Genres      []string   `json:"genres"`
	Plot        string     `json:"plot,omitempty"`
	Runtime     int        `json:"runtime,omitempty"`
	Seasons     int        `json:"seasons,omitempty"`
	Episodes    int        `json:"episodes,omitempty"`
	Status      string     `json:"status,omitempty"`
	Director    string     `json:"director,omitempty"`
	Cast        []string   `json:"cast,omitempty"`
	Platforms   []Platform `json:"platforms"`
	Language    string     `json:"language,omitempty"`
}

func (r *MediaRecord) HasPoster() bool {
	return r.PosterURL != ""
}

func (r *MediaRecord) HasGenre(name string) bool {
	for _, g := range r.Genres {
		if strings.EqualFold(g, name) {
			return true
		}
	}
	return false
}

func (r *MediaRecord) HasPlatform(name string) bool {
	for _, p := range r.Platforms {
		if strings.EqualFold(p.Name, name) {
			return true
		}
	}
	return false
}
