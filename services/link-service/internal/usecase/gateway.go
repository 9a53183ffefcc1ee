package usecase

import (
	"context"

	"github.com/rs/zerolog"
)

// RoleGateway reads and grants the authorization role on the chat platform.
// HasRole returns provider.ErrRoleUnresolvable when the role configuration cannot be resolved.
// GrantRole must be idempotent.
type RoleGateway interface {
	HasRole(ctx context.Context, identity string) (bool, error)
	GrantRole(ctx context.Context, identity string) error
}

// AlertKind names an operator-facing condition.
type AlertKind string

const (
	AlertLinkedRoleGrantFailed AlertKind = "linked_role_grant_failed"
	AlertRoleUnavailable       AlertKind = "role_unavailable"
	AlertGrantFailed           AlertKind = "grant_failed"
)

// Alert describes an operator-facing condition observed while serving a request.
type Alert struct {
	Kind      AlertKind
	Identity  string
	AccountID string
	Err       error
}

// OperatorAlerter notifies operators. Implementations must not block the request.
type OperatorAlerter interface {
	Alert(ctx context.Context, alert Alert)
}

type nopAlerter struct{}

func (nopAlerter) Alert(context.Context, Alert) {}

// loggerFrom prefers the request-scoped logger attached to ctx.
func loggerFrom(ctx context.Context, fallback *zerolog.Logger) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l != nil && l.GetLevel() != zerolog.Disabled {
		return l
	}
	return fallback
}
