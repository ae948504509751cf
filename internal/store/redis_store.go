package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisStore keeps codes, consents and sessions in Redis so that several
// replicas can serve the same flow. Codes and session ids are stored hashed.
type redisStore struct {
	client *redis.Client
	prefix string

	generateKey func() ([32]byte, error)
	nowFunc     func() time.Time
}

func NewRedisStore(client *redis.Client, prefix string) *redisStore {
	return &redisStore{
		client: client,
		prefix: prefix,
	}
}

func (r *redisStore) now() time.Time {
	return nowOr(r.nowFunc)
}

func hashKey(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func (r *redisStore) codeKey(code string) string {
	return r.prefix + ":code:" + hashKey(code)
}

func (r *redisStore) sessionKey(sessionID string) string {
	return r.prefix + ":session:" + hashKey(sessionID)
}

func (r *redisStore) consentKey(clientID, userID string) string {
	return r.prefix + ":consent:" + url.QueryEscape(clientID) + ":" + url.QueryEscape(userID)
}

func (r *redisStore) StoreCode(ctx context.Context, c *AuthorizationCode) (string, error) {
	if size := c.size(); size > codeMaxSize {
		return "", fmt.Errorf("authorization code payload exceeds maximum of %d bytes: %d", codeMaxSize, size)
	}
	ttl := c.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		return "", errors.New("authorization code is already expired")
	}
	b, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal authorization code: %w", err)
	}

	generateKey := generateSecureCode
	if r.generateKey != nil {
		generateKey = r.generateKey
	}

	for {
		keyBytes, err := generateKey()
		if err != nil {
			return "", fmt.Errorf("failed to generate authorization code: %w", err)
		}
		code := encodeKey(keyBytes)
		ok, err := r.client.SetNX(ctx, r.codeKey(code), b, ttl).Result()
		if err != nil {
			return "", fmt.Errorf("failed to store authorization code: %w", err)
		}
		if ok {
			return code, nil
		}
	}
}

func (r *redisStore) ConsumeCode(ctx context.Context, code string) (*AuthorizationCode, bool, error) {
	b, err := r.client.GetDel(ctx, r.codeKey(code)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to consume authorization code: %w", err)
	}
	var c AuthorizationCode
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal authorization code: %w", err)
	}
	if c.Expired(r.now()) {
		return nil, false, nil
	}
	return &c, true, nil
}

func (r *redisStore) GetConsent(ctx context.Context, clientID, userID string) (*ConsentRecord, bool, error) {
	var rec ConsentRecord
	ok, err := r.getJSON(ctx, r.consentKey(clientID, userID), &rec)
	if err != nil || !ok {
		return nil, false, err
	}
	return &rec, true, nil
}

func (r *redisStore) SaveConsent(ctx context.Context, rec *ConsentRecord) error {
	return r.setJSON(ctx, r.consentKey(rec.ClientID, rec.UserID), rec, rec.ExpiresAt)
}

func (r *redisStore) PutPending(ctx context.Context, sessionID string, p *Pending) error {
	return r.setJSON(ctx, r.sessionKey(sessionID), p, p.ExpiresAt)
}

func (r *redisStore) GetPending(ctx context.Context, sessionID string) (*Pending, bool, error) {
	var p Pending
	ok, err := r.getJSON(ctx, r.sessionKey(sessionID), &p)
	if err != nil || !ok {
		return nil, false, err
	}
	return &p, true, nil
}

func (r *redisStore) DeletePending(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, r.sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (r *redisStore) setJSON(ctx context.Context, key string, v any, expiresAt time.Time) error {
	ttl := expiresAt.Sub(r.now())
	if ttl <= 0 {
		if err := r.client.Del(ctx, key).Err(); err != nil {
			return fmt.Errorf("failed to delete '%s': %w", key, err)
		}
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal '%s': %w", key, err)
	}
	if err := r.client.Set(ctx, key, b, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set '%s': %w", key, err)
	}
	return nil
}

func (r *redisStore) getJSON(ctx context.Context, key string, v any) (bool, error) {
	b, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get '%s': %w", key, err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return false, fmt.Errorf("failed to unmarshal '%s': %w", key, err)
	}
	return true, nil
}
