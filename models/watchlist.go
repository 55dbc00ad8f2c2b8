package models

import "time"

type WatchlistItem struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	PosterURL   string    `json:"poster"`
	Type        MediaType `json:"type"`
	AddedAt     time.Time `json:"addedAt"`
	Rating      *float64  `json:"rating,omitempty"`
	ReleaseDate string    `json:"releaseDate,omitempty"`
}
