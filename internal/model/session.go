package model

import "encoding/json"

// Role is the authorisation role carried by a user.
type Role string

const (
	RoleUser  Role = "User"
	RoleAdmin Role = "Admin"
)

// User is the authenticated identity returned by the remote auth endpoints.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Role  Role   `json:"role"`
}

// UnmarshalJSON accepts the id under "_id" or "id".
func (u *User) UnmarshalJSON(data []byte) error {
	var raw struct {
		MongoID json.RawMessage `json:"_id"`
		ID      json.RawMessage `json:"id"`
		Name    string          `json:"name"`
		Email   string          `json:"email"`
		Role    Role            `json:"role"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	id := flexibleID(raw.MongoID)
	if id == "" {
		id = flexibleID(raw.ID)
	}

	*u = User{ID: id, Name: raw.Name, Email: raw.Email, Role: raw.Role}
	return nil
}

// Session is the user identity and bearer token held by the client.
type Session struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// IsAuthenticated reports whether both the user and the token are present.
func (s Session) IsAuthenticated() bool {
	return s.User != nil && s.Token != ""
}

// HasRole reports whether the session is authenticated with one of roles.
func (s Session) HasRole(roles ...Role) bool {
	if !s.IsAuthenticated() {
		return false
	}
	for _, r := range roles {
		if s.User.Role == r {
			return true
		}
	}
	return false
}

// Credentials is the login payload.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the register payload.
type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}

// AuthResponse is the remote reply to login and register calls.
type AuthResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}
