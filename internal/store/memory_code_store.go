package store

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type codeKey string

type memoryCodeStore struct {
	maxSize       int
	codes         map[codeKey]*AuthorizationCode
	evictionQueue []codeKey
	mu            sync.Mutex

	generateKey func() ([32]byte, error)
	nowFunc     func() time.Time
}

// NewMemoryCodeStore keeps at most maxSize codes in memory, evicting the
// oldest first when full.
func NewMemoryCodeStore(maxSize int) *memoryCodeStore {
	return &memoryCodeStore{
		maxSize: maxSize,
		codes:   make(map[codeKey]*AuthorizationCode),
	}
}

func (m *memoryCodeStore) now() time.Time {
	if m.nowFunc != nil {
		return m.nowFunc()
	}
	return time.Now()
}

func (m *memoryCodeStore) StoreCode(_ context.Context, c *AuthorizationCode) (string, error) {
	if size := c.size(); size > codeMaxSize {
		return "", fmt.Errorf("authorization code payload exceeds maximum of %d bytes: %d", codeMaxSize, size)
	}

	m.mu.Lock()
	defer func() { m.collectGarbage(); m.mu.Unlock() }()

	generateKey := generateSecureCode
	if m.generateKey != nil {
		generateKey = m.generateKey
	}

	for {
		keyBytes, err := generateKey()
		if err != nil {
			return "", fmt.Errorf("failed to generate authorization code: %w", err)
		}
		key := encodeKey(keyBytes)
		if _, ok := m.codes[codeKey(key)]; ok {
			continue
		}

		// Enforce maximum size.
		for len(m.codes) >= m.maxSize && len(m.evictionQueue) > 0 {
			oldest := m.evictionQueue[0]
			m.evictionQueue = m.evictionQueue[1:]
			delete(m.codes, oldest)
		}

		cp := *c
		m.codes[codeKey(key)] = &cp
		m.evictionQueue = append(m.evictionQueue, codeKey(key))
		return key, nil
	}
}

func (m *memoryCodeStore) ConsumeCode(_ context.Context, key string) (*AuthorizationCode, bool, error) {
	m.mu.Lock()
	c, ok := m.codes[codeKey(key)]
	delete(m.codes, codeKey(key))
	m.collectGarbage()
	m.mu.Unlock()

	if !ok || c.Expired(m.now()) {
		return nil, false, nil
	}
	return c, true, nil
}

func (m *memoryCodeStore) collectGarbage() {
	now := m.now()
	var evictionQueue []codeKey
	for _, key := range m.evictionQueue {
		c, ok := m.codes[key]
		if !ok {
			continue
		}
		if c.Expired(now) {
			delete(m.codes, key)
		} else {
			evictionQueue = append(evictionQueue, key)
		}
	}
	m.evictionQueue = evictionQueue
}
