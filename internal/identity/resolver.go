package identity

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"

	"lumira/pkg/domain"
)

const (
	cachePrefix     = "lumira:identity:"
	defaultCacheTTL = 2 * time.Minute
)

// Resolver is the single shared identity-resolution capability. It fast-fails
// structurally malformed credentials without any network call, serves repeat
// lookups from a short-lived Redis cache, and otherwise defers to the
// identity provider.
type Resolver struct {
	client   *Client
	cache    *redis.Client
	cacheTTL time.Duration
}

// NewResolver wires the provider client and an optional Redis cache.
// A nil cache disables caching (every call hits the provider).
func NewResolver(client *Client, cache *redis.Client, cacheTTL time.Duration) *Resolver {
	if cacheTTL <= 0 {
		cacheTTL = defaultCacheTTL
	}
	return &Resolver{client: client, cache: cache, cacheTTL: cacheTTL}
}

// Resolve validates the bearer token and returns the resolved user.
func (r *Resolver) Resolve(ctx context.Context, token string) (domain.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.User{}, fmt.Errorf("%w: empty credential", ErrUnauthenticated)
	}
	// Structural check before any network call: provider credentials are
	// JWTs, so anything that does not even parse can be rejected locally.
	// The provider remains authoritative for signature and expiry.
	if _, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{}); err != nil {
		return domain.User{}, fmt.Errorf("%w: malformed credential", ErrUnauthenticated)
	}

	key := cacheKey(token)
	if user, ok := r.cached(ctx, key); ok {
		return user, nil
	}

	user, err := r.client.Me(ctx, token)
	if err != nil {
		return domain.User{}, err
	}
	r.store(ctx, key, user)
	return user, nil
}

func (r *Resolver) cached(ctx context.Context, key string) (domain.User, bool) {
	if r.cache == nil {
		return domain.User{}, false
	}
	raw, err := r.cache.Get(ctx, key).Bytes()
	if err != nil {
		return domain.User{}, false
	}
	var user domain.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return domain.User{}, false
	}
	return user, true
}

func (r *Resolver) store(ctx context.Context, key string, user domain.User) {
	if r.cache == nil {
		return
	}
	raw, err := json.Marshal(user)
	if err != nil {
		return
	}
	// Cache failures are invisible: the next call goes to the provider.
	_ = r.cache.Set(ctx, key, raw, r.cacheTTL).Err()
}

func cacheKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return cachePrefix + hex.EncodeToString(sum[:])
}
