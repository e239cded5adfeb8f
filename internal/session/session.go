// Package session holds the authenticated identity and gates the operations
// that require one. The session is passed explicitly to whoever needs it;
// there is no process-wide singleton.
package session

import "context"

// Roles the service knows about.
const (
	RoleAdmin  = "admin"
	RoleVendor = "vendeur"
	RoleClient = "client"
)

// User is the identity attached to a session.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"nom"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Role  string `json:"role"`
}

func (u User) IsAdmin() bool  { return u.Role == RoleAdmin }
func (u User) IsVendor() bool { return u.Role == RoleVendor }
func (u User) IsClient() bool { return u.Role == RoleClient }

// Session answers whether a valid identity is present and who it is.
type Session interface {
	IsAuthenticated(ctx context.Context) bool
	CurrentUser(ctx context.Context) *User
}

// Static is a fixed session for tests and embedding.
type Static struct {
	User      *User
	AuthToken string
}

func (s Static) IsAuthenticated(context.Context) bool { return s.AuthToken != "" }

func (s Static) CurrentUser(context.Context) *User {
	if s.User == nil {
		return nil
	}
	copied := *s.User
	return &copied
}

// Token implements the API client's token source.
func (s Static) Token(context.Context) string { return s.AuthToken }
