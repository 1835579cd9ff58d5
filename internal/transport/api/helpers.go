package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fsdevblog/floramart/internal/domain"
	"github.com/fsdevblog/floramart/internal/transport/api/middlewares"
)

func getUserIDFromContext(c *gin.Context) int64 {
	id, _ := middlewares.UserIDFromContext(c)
	return id
}

func getUserRoleFromContext(c *gin.Context) domain.RoleType {
	role, _ := middlewares.UserRoleFromContext(c)
	return role
}

// domainErrStatus классифицирует доменные ошибки по HTTP статусам. Нарушения
// бизнес-правил (средства, остатки, переходы статусов) — ошибки клиента, а не сервера.
func domainErrStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusBadRequest, "insufficient funds"
	case errors.Is(err, domain.ErrInsufficientStock):
		return http.StatusBadRequest, "insufficient stock"
	case errors.Is(err, domain.ErrInvalidStateTransition):
		return http.StatusBadRequest, "invalid status transition"
	case errors.Is(err, domain.ErrAlreadyAssigned):
		return http.StatusBadRequest, "request is already assigned"
	case errors.Is(err, domain.ErrMixedShopItems):
		return http.StatusBadRequest, "order items must belong to a single shop"
	case errors.Is(err, domain.ErrEmptyOrder):
		return http.StatusBadRequest, "order must contain at least one item"
	case errors.Is(err, domain.ErrNoMatchingTransaction):
		return http.StatusBadRequest, "no matching bank transaction found"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, domain.ErrRecordNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, domain.ErrDuplicateKey):
		return http.StatusConflict, "already exists"
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return http.StatusBadGateway, "payment provider unavailable"
	default:
		return http.StatusInternalServerError, ""
	}
}

// abortWithDomainError завершает запрос статусом, соответствующим доменной ошибке.
// Неклассифицированные ошибки остаются приватными и отдаются как 500.
func abortWithDomainError(c *gin.Context, err error) {
	status, msg := domainErrStatus(err)
	if status == http.StatusInternalServerError {
		_ = c.AbortWithError(status, err).SetType(gin.ErrorTypePrivate)
		return
	}
	_ = c.Error(err).SetType(gin.ErrorTypePrivate)
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
