package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/intrafind/ihub-apps-sub004/internal/config"
)

// CodeStore persists authorization codes. ConsumeCode must be atomic: a code is
// returned at most once.
type CodeStore interface {
	StoreCode(ctx context.Context, code *AuthorizationCode) (string, error)
	ConsumeCode(ctx context.Context, code string) (*AuthorizationCode, bool, error)
}

// ConsentStore remembers consent grants keyed by client and user.
type ConsentStore interface {
	GetConsent(ctx context.Context, clientID, userID string) (*ConsentRecord, bool, error)
	SaveConsent(ctx context.Context, rec *ConsentRecord) error
}

// SessionStore is the server-side OAuth session of a browser. It holds at most
// one pending authorization per session id; a newer one overwrites the older.
type SessionStore interface {
	PutPending(ctx context.Context, sessionID string, p *Pending) error
	GetPending(ctx context.Context, sessionID string) (*Pending, bool, error)
	DeletePending(ctx context.Context, sessionID string) error
}

type Stores struct {
	Codes    CodeStore
	Consents ConsentStore
	Sessions SessionStore

	close func() error
	ping  func(ctx context.Context) error
}

func (s *Stores) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// New builds the stores selected by conf.Driver.
func New(ctx context.Context, conf *config.StoreConfig) (*Stores, error) {
	switch conf.Driver {
	case config.StoreDriverMemory:
		return &Stores{
			Codes:    NewMemoryCodeStore(conf.MaxCodes),
			Consents: NewMemoryConsentStore(),
			Sessions: NewMemorySessionStore(),
		}, nil
	case config.StoreDriverRedis:
		opts, err := redis.ParseURL(conf.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse redis url: %w", err)
		}
		client := redis.NewClient(opts)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to ping redis: %w", err)
		}

		rs := NewRedisStore(client, conf.KeyPrefix)
		return &Stores{
			Codes:    rs,
			Consents: rs,
			Sessions: rs,
			close:    client.Close,
			ping: func(ctx context.Context) error {
				return client.Ping(ctx).Err()
			},
		}, nil
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", conf.Driver)
	}
}

// Ping reports whether the backing store is reachable.
func (s *Stores) Ping(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}
