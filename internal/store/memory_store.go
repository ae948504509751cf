package store

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const (
	memoryCleanupInterval = time.Minute
)

type memoryConsentStore struct {
	c       *gocache.Cache
	nowFunc func() time.Time
}

func NewMemoryConsentStore() *memoryConsentStore {
	return &memoryConsentStore{c: gocache.New(gocache.NoExpiration, memoryCleanupInterval)}
}

func consentCacheKey(clientID, userID string) string {
	return clientID + "\x00" + userID
}

func (m *memoryConsentStore) GetConsent(_ context.Context, clientID, userID string) (*ConsentRecord, bool, error) {
	v, ok := m.c.Get(consentCacheKey(clientID, userID))
	if !ok {
		return nil, false, nil
	}
	rec := *v.(*ConsentRecord)
	return &rec, true, nil
}

func (m *memoryConsentStore) SaveConsent(_ context.Context, rec *ConsentRecord) error {
	key := consentCacheKey(rec.ClientID, rec.UserID)
	ttl := rec.ExpiresAt.Sub(nowOr(m.nowFunc))
	if ttl <= 0 {
		m.c.Delete(key)
		return nil
	}
	cp := *rec
	m.c.Set(key, &cp, ttl)
	return nil
}

type memorySessionStore struct {
	c       *gocache.Cache
	nowFunc func() time.Time
}

func NewMemorySessionStore() *memorySessionStore {
	return &memorySessionStore{c: gocache.New(gocache.NoExpiration, memoryCleanupInterval)}
}

func (m *memorySessionStore) PutPending(_ context.Context, sessionID string, p *Pending) error {
	ttl := p.ExpiresAt.Sub(nowOr(m.nowFunc))
	if ttl <= 0 {
		m.c.Delete(sessionID)
		return nil
	}
	cp := *p
	m.c.Set(sessionID, &cp, ttl)
	return nil
}

func (m *memorySessionStore) GetPending(_ context.Context, sessionID string) (*Pending, bool, error) {
	v, ok := m.c.Get(sessionID)
	if !ok {
		return nil, false, nil
	}
	p := *v.(*Pending)
	return &p, true, nil
}

func (m *memorySessionStore) DeletePending(_ context.Context, sessionID string) error {
	m.c.Delete(sessionID)
	return nil
}

func nowOr(nowFunc func() time.Time) time.Time {
	if nowFunc != nil {
		return nowFunc()
	}
	return time.Now()
}
