// Package models holds the value types exchanged with the Remote Auth API
// and exposed by the session manager.
package models

import (
	"bytes"
	"encoding/json"
	"strings"
)

// ProfileID accepts both numeric and string identifiers from the server.
type ProfileID string

func (id *ProfileID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ProfileID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = ProfileID(n.String())
	return nil
}

// Profile is the server-confirmed identity. It is replaced wholesale on
// every successful fetch and never merged field by field.
type Profile struct {
	ID        ProfileID `json:"id"`
	FirstName string    `json:"first_name,omitempty"`
	LastName  string    `json:"last_name,omitempty"`
	Name      string    `json:"name,omitempty"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Avatar    string    `json:"avatar,omitempty"`
}

// DisplayName prefers the explicit name, then first+last, then the email.
func (p Profile) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	full := strings.TrimSpace(p.FirstName + " " + p.LastName)
	if full != "" {
		return full
	}
	return p.Email
}

// ProfileEnvelope is the body of GET /user/profile.
type ProfileEnvelope struct {
	User *Profile `json:"user"`
}
