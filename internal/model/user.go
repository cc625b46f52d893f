package model

import "time"

// User represents a registered user held by the credential store.
type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"` // Never expose in JSON
	CreatedAt    time.Time `json:"created_at"`
}

// UserView is the outward representation of a user. It never carries the password hash.
type UserView struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Master   bool   `json:"master,omitempty"`
}

// View strips credentials from the user.
func (u *User) View() UserView {
	return UserView{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
	}
}
