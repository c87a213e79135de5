package domain

// Role names as stored in the roles table. Token role claims carry these values verbatim.
const (
	RoleStudent = "Студент"
	RoleTeacher = "Преподаватель"
	RoleAdmin   = "Администратор"
)

// AllRoles lists the fixed role set in seeding order.
var AllRoles = []string{RoleStudent, RoleTeacher, RoleAdmin}

// Role is a named permission level referenced by exactly one User.
type Role struct {
	ID          int64
	Name        string
	Description string
}

// DefaultRoles returns the seed rows for the roles table.
func DefaultRoles() []Role {
	return []Role{
		{ID: 1, Name: RoleStudent, Description: "Студент - может просматривать курсы и выполнять задания"},
		{ID: 2, Name: RoleTeacher, Description: "Преподаватель - может создавать курсы, уроки и задания"},
		{ID: 3, Name: RoleAdmin, Description: "Администратор - полный доступ к системе"},
	}
}
