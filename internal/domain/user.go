package domain

// User roles.
const (
	RoleSubscriber = "subscriber"
	RoleAdmin      = "admin"
)

// User is a known account. Users are looked up by email, which is unique.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// IsAdmin reports whether the user may manage the catalog.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
