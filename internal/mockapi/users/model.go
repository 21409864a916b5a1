package users

import "time"

// User is an account held by the mock API.
type User struct {
	ID           string
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	Avatar       string
	PasswordHash []byte
	CreatedAt    time.Time
}

// NewUser is the registration input.
type NewUser struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Avatar    string
}
