package models

import "time"

type ReviewUser struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

type Review struct {
	ID        string     `json:"id"`
	MovieID   string     `json:"movieId"`
	User      ReviewUser `json:"user"`
	Rating    int        `json:"rating"`
	Content   string     `json:"content"`
	Timestamp time.Time  `json:"timestamp"`
}
