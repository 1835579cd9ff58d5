package repoargs

import "github.com/fsdevblog/floramart/internal/domain"

type CreateUser struct {
	Username string
	Password string
	Role     domain.RoleType
}
