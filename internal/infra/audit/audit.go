// Package audit writes security-relevant events to a dedicated log stream.
package audit

import (
	"context"
	"log/slog"

	"storehub/internal/domain/entity"
)

// Logger records authentication and authorization events.
type Logger struct {
	logger *slog.Logger
}

func NewLogger(logger *slog.Logger) *Logger {
	return &Logger{logger: logger.With(slog.String("component", "audit"))}
}

// LogAction records one audited action.
func (al *Logger) LogAction(ctx context.Context, principal *entity.Principal, action, resource, resourceID, status, details string) {
	attrs := []slog.Attr{
		slog.String("action", action),
		slog.String("resource", resource),
		slog.String("resource_id", resourceID),
		slog.String("status", status),
		slog.String("details", details),
	}
	if principal != nil {
		attrs = append(attrs,
			slog.String("guard", string(principal.Guard)),
			slog.String("account_id", principal.AccountID.String()),
			slog.String("store_id", principal.StoreID.String()),
		)
	}

	al.logger.LogAttrs(ctx, slog.LevelInfo, "audit", attrs...)
}

// LogDenied records a request refused by the permission evaluator.
func (al *Logger) LogDenied(ctx context.Context, principal *entity.Principal, permission entity.Permission, resourceID string) {
	al.LogAction(ctx, principal, "access_denied", "permission", resourceID, "denied", string(permission))
}

// LogLogin records a login outcome for an identifier.
func (al *Logger) LogLogin(ctx context.Context, guard entity.Guard, identifier, status string) {
	al.logger.LogAttrs(ctx, slog.LevelInfo, "audit",
		slog.String("action", "login"),
		slog.String("guard", string(guard)),
		slog.String("identifier", identifier),
		slog.String("status", status),
	)
}

// LogTwoFactor records a two-factor verification or setup outcome.
func (al *Logger) LogTwoFactor(ctx context.Context, guard entity.Guard, accountID, action, status string) {
	al.logger.LogAttrs(ctx, slog.LevelInfo, "audit",
		slog.String("action", action),
		slog.String("guard", string(guard)),
		slog.String("account_id", accountID),
		slog.String("status", status),
	)
}
