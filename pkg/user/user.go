package user

// Role is the closed set of roles a user can hold. It is stored on the user
// row and is the single source of truth for authorization decisions.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

type User struct {
	Id    int
	Uid   string
	Name  string
	Email string
	Role  Role
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
