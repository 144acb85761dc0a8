package identity

import (
	"context"
	"fmt"

	"github.com/gridledger/billing/internal/domain/identity"
	"github.com/gridledger/billing/internal/domain/notification"
	"github.com/gridledger/billing/internal/domain/shared"
	"github.com/gridledger/billing/internal/infrastructure/logger"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Actions recorded on denials
const (
	ActionRead   = "read"
	ActionWrite  = "write"
	ActionReview = "review"
)

// AccessGuard is the single gate every application operation passes through
// before touching a repository. It consults the static role table and the
// notification review matrix.
type AccessGuard struct {
	logger *zap.Logger
	denied *prometheus.CounterVec
}

// NewAccessGuard creates a guard. denied may be nil.
func NewAccessGuard(log *zap.Logger, denied *prometheus.CounterVec) *AccessGuard {
	if log == nil {
		log = zap.NewNop()
	}
	return &AccessGuard{logger: log, denied: denied}
}

// Authorize returns PERMISSION_DENIED unless actor's role may use module
func (g *AccessGuard) Authorize(ctx context.Context, actor identity.Actor, module identity.Module, action string) error {
	if actor.CanAccess(module) {
		return nil
	}
	return g.deny(ctx, actor, module.String(), action,
		fmt.Sprintf("role %q has no access to %s", actor.Role, module))
}

// AuthorizeReview checks both the notifications module and the review
// matrix for kind
func (g *AccessGuard) AuthorizeReview(ctx context.Context, actor identity.Actor, kind notification.Kind) error {
	if err := g.Authorize(ctx, actor, identity.ModuleNotifications, ActionReview); err != nil {
		return err
	}
	if notification.CanReview(actor.Role, kind) {
		return nil
	}
	return g.deny(ctx, actor, identity.ModuleNotifications.String()+":"+string(kind), ActionReview,
		fmt.Sprintf("role %q cannot review %s notifications", actor.Role, kind))
}

func (g *AccessGuard) deny(ctx context.Context, actor identity.Actor, module, action, message string) error {
	log := g.logger
	if _, ok := ctx.Value(logger.LoggerKey).(*zap.Logger); ok {
		log = logger.L(ctx)
	}
	log.Warn("access denied",
		zap.String("user_id", actor.UserID.String()),
		zap.String("role", actor.Role.String()),
		zap.String("module", module),
		zap.String("action", action),
	)
	if g.denied != nil {
		g.denied.WithLabelValues(actor.Role.String(), module, action).Inc()
	}
	return shared.NewPermissionDeniedError(message)
}
