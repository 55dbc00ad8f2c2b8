package models

import (
	"fmt"
	"net/url"
	"time"
)

// User mirrors the user object returned by the auth backend.
type User struct {
	ID           string    `json:"_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	ProfileImage string    `json:"profileImage,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Avatar falls back to a generated avatar seeded by the user name.
func (u *User) Avatar() string {
	if u.ProfileImage != "" {
		return u.ProfileImage
	}
	seed := u.Name
	if seed == "" {
		seed = "Guest"
	}
	return fmt.Sprintf("https://api.dicebear.com/7.x/avataaars/svg?seed=%s", url.QueryEscape(seed))
}

func (u *User) Author() ReviewUser {
	name := u.Name
	if name == "" {
		name = "Guest User"
	}
	return ReviewUser{
		ID:     u.ID,
		Name:   name,
		Avatar: u.Avatar(),
	}
}
