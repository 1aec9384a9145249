package redis

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/iho/backoffice/internal/domain"
)

// DefaultAccountTTL bounds how long a stale snapshot can be served when an
// invalidation is lost.
const DefaultAccountTTL = 5 * time.Minute

// AccountCache implements usecase.AccountCache with msgpack-encoded snapshots.
type AccountCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewAccountCache creates a new AccountCache. A non-positive ttl selects
// DefaultAccountTTL.
func NewAccountCache(client *redis.Client, ttl time.Duration) *AccountCache {
	if ttl <= 0 {
		ttl = DefaultAccountTTL
	}
	return &AccountCache{
		client: client,
		prefix: "account:",
		ttl:    ttl,
	}
}

type accountSnapshot struct {
	ID             int64     `msgpack:"id"`
	Name           string    `msgpack:"name"`
	Type           string    `msgpack:"type"`
	OpeningBalance string    `msgpack:"opening_balance"`
	CurrentBalance string    `msgpack:"current_balance"`
	Active         bool      `msgpack:"active"`
	CreatedAt      time.Time `msgpack:"created_at"`
	UpdatedAt      time.Time `msgpack:"updated_at"`
}

func (c *AccountCache) key(id int64) string {
	return c.prefix + strconv.FormatInt(id, 10)
}

// Get returns the cached account, or nil on a miss.
func (c *AccountCache) Get(ctx context.Context, id int64) (*domain.Account, error) {
	raw, err := c.client.Get(ctx, c.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var snap accountSnapshot
	if err := msgpack.Unmarshal(raw, &snap); err != nil {
		return nil, err
	}

	opening, err := decimal.NewFromString(snap.OpeningBalance)
	if err != nil {
		return nil, err
	}
	current, err := decimal.NewFromString(snap.CurrentBalance)
	if err != nil {
		return nil, err
	}

	return &domain.Account{
		ID:             snap.ID,
		Name:           snap.Name,
		Type:           domain.AccountType(snap.Type),
		OpeningBalance: opening,
		CurrentBalance: current,
		Active:         snap.Active,
		CreatedAt:      snap.CreatedAt,
		UpdatedAt:      snap.UpdatedAt,
	}, nil
}

// Set stores a snapshot of the account.
func (c *AccountCache) Set(ctx context.Context, account *domain.Account) error {
	raw, err := msgpack.Marshal(accountSnapshot{
		ID:             account.ID,
		Name:           account.Name,
		Type:           string(account.Type),
		OpeningBalance: account.OpeningBalance.String(),
		CurrentBalance: account.CurrentBalance.String(),
		Active:         account.Active,
		CreatedAt:      account.CreatedAt,
		UpdatedAt:      account.UpdatedAt,
	})
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(account.ID), raw, c.ttl).Err()
}

// Invalidate drops the snapshot of an account.
func (c *AccountCache) Invalidate(ctx context.Context, id int64) error {
	return c.client.Del(ctx, c.key(id)).Err()
}
