package domain

const (
	// RoleUser is the default role assigned on registration.
	RoleUser = "USER"
	// RoleAdmin gates the downstream /admin route groups.
	RoleAdmin = "ADMIN"
)

func IsValidRole(r string) bool {
	return r == RoleUser || r == RoleAdmin
}
