package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	appidentity "github.com/gridledger/billing/internal/application/identity"
	"github.com/gridledger/billing/internal/domain/identity"
	"github.com/gridledger/billing/internal/interfaces/http/dto"
)

// ModuleGuard decides whether an actor may use a module. Implemented by
// the application AccessGuard, which logs and counts every denial.
type ModuleGuard interface {
	Authorize(ctx context.Context, actor identity.Actor, module identity.Module, action string) error
}

// RequireModule rejects requests from roles with no access to module before
// they reach a handler. The application services check again; this keeps
// obviously forbidden traffic away from the database.
func RequireModule(module identity.Module, guard ModuleGuard) gin.HandlerFunc {
	if guard == nil {
		guard = appidentity.NewAccessGuard(nil, nil)
	}
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeUnauthorized, "Authentication required", GetRequestID(c)))
			return
		}
		if err := guard.Authorize(c.Request.Context(), actor, module, actionOf(c.Request.Method)); err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeForbidden, "Role has no access to "+module.String(), GetRequestID(c)))
			return
		}
		c.Next()
	}
}

func actionOf(method string) string {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return appidentity.ActionRead
	}
	return appidentity.ActionWrite
}
