package models

import "time"

// CommunityPost.Liked is a single global flag, not tracked per viewer.
type CommunityPost struct {
	ID        string     `json:"id"`
	User      ReviewUser `json:"user"`
	Content   string     `json:"content"`
	Likes     int        `json:"likes"`
	Comments  int        `json:"comments"`
	Timestamp time.Time  `json:"timestamp"`
	Liked     bool       `json:"liked"`
}

type CommunityMember struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Avatar   string    `json:"avatar"`
	Role     string    `json:"role"`
	Posts    int       `json:"posts"`
	JoinDate time.Time `json:"joinDate"`
}
