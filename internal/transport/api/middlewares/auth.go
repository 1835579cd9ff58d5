package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/fsdevblog/floramart/internal/domain"
	"github.com/fsdevblog/floramart/internal/transport/api/tokens"
)

const (
	// CtxUserIDKey ключ контекста gin, под которым лежит ID аутентифицированного пользователя.
	CtxUserIDKey = "ctxUserID"
	// CtxUserRoleKey ключ контекста gin с ролью пользователя.
	CtxUserRoleKey = "ctxUserRole"
)

// AuthRequired проверяет JWT из заголовка Authorization и кладёт ID и роль
// пользователя в контекст запроса. При истёкшем или битом токене
// запрос отклоняется со статусом 401.
func AuthRequired(jwtSecret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			_ = c.AbortWithError(http.StatusUnauthorized, errors.New("missing bearer token"))
			return
		}
		rawToken := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if rawToken == "" {
			_ = c.AbortWithError(http.StatusUnauthorized, errors.New("missing bearer token"))
			return
		}

		claims, err := tokens.ValidateUserJWT(rawToken, jwtSecret)
		if err != nil {
			_ = c.AbortWithError(http.StatusUnauthorized, err)
			return
		}

		c.Set(CtxUserIDKey, claims.ID)
		c.Set(CtxUserRoleKey, claims.Role)
		c.Next()
	}
}

// RequireRole пропускает запрос только если роль пользователя входит в allowed.
// Должен стоять после Auth.
func RequireRole(allowed ...domain.RoleType) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := UserRoleFromContext(c)
		if !ok {
			_ = c.AbortWithError(http.StatusUnauthorized, errors.New("missing role in context"))
			return
		}
		for _, a := range allowed {
			if role == a {
				c.Next()
				return
			}
		}
		_ = c.AbortWithError(http.StatusForbidden, domain.ErrForbidden)
	}
}

// UserIDFromContext достаёт ID пользователя, положенный middleware Auth.
func UserIDFromContext(c *gin.Context) (int64, bool) {
	v, ok := c.Get(CtxUserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

// UserRoleFromContext достаёт роль пользователя, положенную middleware Auth.
func UserRoleFromContext(c *gin.Context) (domain.RoleType, bool) {
	v, ok := c.Get(CtxUserRoleKey)
	if !ok {
		return "", false
	}
	role, ok := v.(domain.RoleType)
	return role, ok
}
