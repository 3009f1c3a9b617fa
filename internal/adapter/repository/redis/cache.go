package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/iho/gobank/internal/domain"
)

// DefaultAccountTTL bounds how long a cached account may be served.
const DefaultAccountTTL = 30 * time.Second

// versionTTL keeps invalidation counters well past any in-flight fill.
const versionTTL = 24 * time.Hour

var errStaleFill = errors.New("account changed since version read")

// AccountCache implements usecase.AccountCache using Redis.
type AccountCache struct {
	client        *redis.Client
	prefix        string
	versionPrefix string
	ttl           time.Duration
}

// NewAccountCache creates a new AccountCache.
func NewAccountCache(client *redis.Client, ttl time.Duration) *AccountCache {
	if ttl <= 0 {
		ttl = DefaultAccountTTL
	}

	return &AccountCache{
		client:        client,
		prefix:        "account:",
		versionPrefix: "account-version:",
		ttl:           ttl,
	}
}

type cachedAccount struct {
	ID        string          `json:"id"`
	OwnerID   string          `json:"owner_id"`
	Balance   decimal.Decimal `json:"balance"`
	Active    bool            `json:"active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Get returns the cached account, or nil on a miss.
func (c *AccountCache) Get(ctx context.Context, id string) (*domain.Account, error) {
	raw, err := c.client.Get(ctx, c.prefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var cached cachedAccount
	if err := json.Unmarshal(raw, &cached); err != nil {
		return nil, fmt.Errorf("decode cached account %s: %w", id, err)
	}

	return &domain.Account{
		ID:        cached.ID,
		OwnerID:   cached.OwnerID,
		Balance:   cached.Balance,
		Active:    cached.Active,
		CreatedAt: cached.CreatedAt,
		UpdatedAt: cached.UpdatedAt,
	}, nil
}

// Version returns the invalidation counter of an account, zero if unset.
func (c *AccountCache) Version(ctx context.Context, id string) (int64, error) {
	version, err := c.client.Get(ctx, c.versionPrefix+id).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	return version, nil
}

// Set stores an account with the cache TTL. Nothing is stored when the
// account was invalidated after version was read.
func (c *AccountCache) Set(ctx context.Context, account *domain.Account, version int64) error {
	raw, err := json.Marshal(cachedAccount{
		ID:        account.ID,
		OwnerID:   account.OwnerID,
		Balance:   account.Balance,
		Active:    account.Active,
		CreatedAt: account.CreatedAt,
		UpdatedAt: account.UpdatedAt,
	})
	if err != nil {
		return err
	}

	versionKey := c.versionPrefix + account.ID

	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, versionKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != version {
			return errStaleFill
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, c.prefix+account.ID, raw, c.ttl)
			return nil
		})
		return err
	}, versionKey)

	if errors.Is(err, errStaleFill) || errors.Is(err, redis.TxFailedErr) {
		return nil
	}

	return err
}

// Invalidate removes the given accounts and bumps their versions so that
// fills started earlier are discarded.
func (c *AccountCache) Invalidate(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}

	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range ids {
			pipe.Incr(ctx, c.versionPrefix+id)
			pipe.Expire(ctx, c.versionPrefix+id, versionTTL)
			pipe.Del(ctx, c.prefix+id)
		}
		return nil
	})

	return err
}
