package usecase

import "context"

type guardKey struct{}

// withCallGuard marks ctx as being inside an outgoing value transfer.
func withCallGuard(ctx context.Context) context.Context {
	return context.WithValue(ctx, guardKey{}, true)
}

// InGuardedCall reports whether ctx was handed out to a transfer callback.
func InGuardedCall(ctx context.Context) bool {
	guarded, _ := ctx.Value(guardKey{}).(bool)
	return guarded
}
