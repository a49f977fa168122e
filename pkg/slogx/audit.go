package slogx

import (
	"context"
	"log/slog"

	"github.com/aussiebroadwan/accounts/pkg/idx"
)

// Audit records a security-relevant event (registration, login, profile
// change). Events go through the request logger so they carry the req_id,
// and each gets its own event_id for de-duplication downstream.
func Audit(ctx context.Context, event string, attrs ...slog.Attr) {
	all := make([]slog.Attr, 0, len(attrs)+2)
	all = append(all,
		slog.Bool("audit", true),
		slog.String("event_id", idx.New().String()),
	)
	all = append(all, attrs...)

	FromContext(ctx).LogAttrs(ctx, slog.LevelInfo, event, all...)
}
