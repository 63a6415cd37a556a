package model

import (
	"encoding/json"
	"strings"
)

// User is the authenticated account returned by the auth endpoints.
type User struct {
	// ID is an opaque identifier assigned by the backend.
	ID string `json:"id"`

	// Email is the sign-in address.
	Email string `json:"email"`

	// Name is the optional display name; empty when unset.
	Name string `json:"name,omitempty"`

	// CreatedAt is kept as the raw value the backend sent. The auth
	// endpoints are not consistent about its type, so it is treated
	// as opaque display data.
	CreatedAt string `json:"createdAt,omitempty"`
}

// userAlias avoids recursion in UnmarshalJSON.
type userAlias User

// UnmarshalJSON decodes a user, tolerating a numeric createdAt field.
func (u *User) UnmarshalJSON(data []byte) error {
	var raw struct {
		userAlias
		CreatedAt json.RawMessage `json:"createdAt"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*u = User(raw.userAlias)
	u.CreatedAt = strings.Trim(string(raw.CreatedAt), `"`)
	if u.CreatedAt == "null" {
		u.CreatedAt = ""
	}
	return nil
}
