// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is a registered account. PasswordHash is a bcrypt string and is only
// ever checked through auth.PasswordHasher.
type User struct {
	ID           int64
	UserName     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Subject is the authenticated identity attached to a request.
type Subject struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// Subject returns the identity view of u.
func (u *User) Subject() *Subject {
	return &Subject{ID: u.ID, Username: u.UserName}
}
