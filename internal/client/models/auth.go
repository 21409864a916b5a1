package models

import (
	"sort"
	"strings"
)

// LoginRequest is the JSON body of POST /user/login.
type LoginRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Fingerprint string `json:"fingerprint,omitempty"`
}

// RegisterForm carries the multipart fields of POST /user/register.
type RegisterForm struct {
	FirstName            string
	LastName             string
	Email                string
	Password             string
	PasswordConfirmation string
	Fingerprint          string
}

// Avatar is an optional image uploaded with registration.
type Avatar struct {
	Filename string
	Data     []byte
}

// AuthResponse mirrors the envelope returned by login and register.
type AuthResponse struct {
	Success bool                `json:"success"`
	Token   string              `json:"token,omitempty"`
	User    *Profile            `json:"user,omitempty"`
	Message string              `json:"message,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

// ErrorMessage picks the most useful human-readable text from a failed
// response: the message if any, otherwise the first validation error in
// field order.
func (r AuthResponse) ErrorMessage() string {
	if r.Message != "" {
		return r.Message
	}
	fields := make([]string, 0, len(r.Errors))
	for f := range r.Errors {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		if msgs := r.Errors[f]; len(msgs) > 0 {
			return strings.TrimSpace(msgs[0])
		}
	}
	return ""
}

// AuthResult is what login and register hand back to callers. Expected
// failures (bad credentials, validation, connectivity) are reported here
// with Success=false instead of as Go errors.
type AuthResult struct {
	Success bool
	Message string
	Token   string
	User    *Profile
}

// Failure builds an unsuccessful result.
func Failure(message string) AuthResult {
	return AuthResult{Success: false, Message: message}
}
