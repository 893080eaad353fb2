package permission

import (
	"context"

	"github.com/sh-dot/machineinfo/libs/reconcile"
)

// Source resolves what a user may see unmasked in a view. A nil scope grants
// nothing.
type Source interface {
	GetScope(ctx context.Context, user string, view reconcile.View) (*reconcile.PermissionScope, error)
}
