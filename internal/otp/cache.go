package otp

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"
)

var (
	// ErrNotFound means no code exists for the number: never issued, already
	// consumed, or purged after expiry.
	ErrNotFound = errors.New("otp not found or expired")
	ErrExpired  = errors.New("otp expired")
	ErrMismatch = errors.New("invalid otp")
)

// DefaultTTL is how long an issued code stays valid.
const DefaultTTL = 5 * time.Minute

const purgeInterval = time.Minute

type entry struct {
	code      string
	expiresAt time.Time
}

// Cache issues and verifies short-lived one-time codes keyed by phone number.
// At most one live code exists per number; a new Issue overwrites the previous
// one. All operations are atomic under a single mutex, so a code can never be
// verified twice.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration

	done     chan struct{}
	stopOnce sync.Once
}

// NewCache creates a cache with the given TTL (DefaultTTL when <= 0) and
// starts a background janitor that purges expired entries.
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &Cache{
		entries: make(map[string]entry),
		ttl:     ttl,
		done:    make(chan struct{}),
	}
	go c.janitor()
	return c
}

// Issue generates a uniformly random 6-digit code (leading zeros allowed) and
// stores it for the phone number with an absolute expiry of now + TTL.
func (c *Cache) Issue(phoneNumber string) (string, error) {
	code, err := generateCode()
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}

	c.mu.Lock()
	c.entries[phoneNumber] = entry{code: code, expiresAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()

	return code, nil
}

// Verify checks the code for the phone number. On success the entry is removed
// atomically, so a verified code cannot be replayed. A mismatch does not
// consume the entry; an expired entry is purged as a side effect.
func (c *Cache) Verify(phoneNumber, code string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[phoneNumber]
	if !ok {
		return ErrNotFound
	}
	if time.Now().After(e.expiresAt) {
		delete(c.entries, phoneNumber)
		return ErrExpired
	}
	if e.code != code {
		return ErrMismatch
	}

	delete(c.entries, phoneNumber)
	return nil
}

// Clear drops all live entries. Intended for tests.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
}

// Stop halts the background janitor. Safe to call more than once.
func (c *Cache) Stop() {
	c.stopOnce.Do(func() {
		close(c.done)
	})
}

func (c *Cache) janitor() {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case now := <-ticker.C:
			c.mu.Lock()
			for phone, e := range c.entries {
				if now.After(e.expiresAt) {
					delete(c.entries, phone)
				}
			}
			c.mu.Unlock()
		}
	}
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
