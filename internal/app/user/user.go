/*
Package user defines the account record and the public profile derived from it.
*/
package user

import "time"

// User is a registered account as stored by the user store.
type User struct {
	ID           string
	FullName     string
	Email        string
	PasswordHash string
	ProfilePic   string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile is the public view of a User, free of credential material.
// It is what authenticated handlers receive and what clients see.
type Profile struct {
	ID         string    `json:"id"`
	FullName   string    `json:"fullName"`
	Email      string    `json:"email"`
	ProfilePic string    `json:"profilePic"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Profile returns the public projection of u.
func (u User) Profile() Profile {
	return Profile{
		ID:         u.ID,
		FullName:   u.FullName,
		Email:      u.Email,
		ProfilePic: u.ProfilePic,
		CreatedAt:  u.CreatedAt,
	}
}
