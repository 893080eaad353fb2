package permission

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/sh-dot/machineinfo/libs/reconcile"
)

const (
	claimCustomerName = "customer_name"
	claimPersonalInfo = "personal_info"
	claimMap          = "map"
)

type setReader interface {
	SMembers(ctx context.Context, key string) *redis.StringSliceCmd
}

// Redis reads the organization sets granted to a user. Each claim is stored
// under <prefix>:<user>:<view>:<claim>.
type Redis struct {
	client  setReader
	prefix  string
	timeout time.Duration
}

func NewRedis(client *redis.Client, prefix string, timeout time.Duration) *Redis {
	return &Redis{client: client, prefix: prefix, timeout: timeout}
}

func (r *Redis) key(user string, view reconcile.View, claim string) string {
	return fmt.Sprintf("%s:%s:%s:%s", r.prefix, strings.ToLower(strings.TrimSpace(user)), view, claim)
}

func (r *Redis) GetScope(ctx context.Context, user string, view reconcile.View) (*reconcile.PermissionScope, error) {
	if strings.TrimSpace(user) == "" {
		return nil, nil
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	scope := &reconcile.PermissionScope{}
	for claim, dst := range map[string]*[]string{
		claimCustomerName: &scope.CustomerNameOrgIDs,
		claimPersonalInfo: &scope.PersonalInfoOrgIDs,
		claimMap:          &scope.MapOrgIDs,
	} {
		ids, err := r.client.SMembers(ctx, r.key(user, view, claim)).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to read %s permissions of %s: %w", claim, user, err)
		}
		*dst = ids
	}

	if scope.IsEmpty() {
		return nil, nil
	}
	return scope, nil
}
