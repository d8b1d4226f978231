// Package logging defines the structured-logging contract of the library.
// Consumers receive a Logger; the process decides what backs it.
package logging

import "context"

// Logger is a context-aware structured logger. Variadic args are
// key-value pairs:
//
//	log.Info(ctx, "company woken up", "company_id", companyID)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger whose records always carry the given
	// key-value pairs.
	With(args ...any) Logger
}
