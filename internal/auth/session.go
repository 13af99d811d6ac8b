package auth

// Roles
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// SessionData represents the authenticated session context for a request
type SessionData struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Token  string `json:"-"`
}

// IsAdmin reports whether the session belongs to an admin
func (s *SessionData) IsAdmin() bool {
	return s.Role == RoleAdmin
}
