package storage

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/redis/go-redis/v9"
)

const browserIDKey = "browser_id"

// Provider opens the Store belonging to the browser that sent a request
type Provider interface {
	Open(w http.ResponseWriter, r *http.Request) (Store, error)
}

// CookieProvider keeps the whole state in signed cookies: the staged purchase
// in its own cookie and everything else in the session cookie
type CookieProvider struct {
	sessions sessions.Store
	name     string
}

// NewCookieProvider creates a cookie-backed provider
func NewCookieProvider(store sessions.Store, name string) *CookieProvider {
	return &CookieProvider{sessions: store, name: name}
}

// Open returns a usable store together with the decode error when a cookie
// had to be replaced
func (p *CookieProvider) Open(w http.ResponseWriter, r *http.Request) (Store, error) {
	main, mainErr := NewSessionStore(p.sessions, p.name, w, r)
	if main == nil {
		return nil, mainErr
	}
	staging, stagingErr := NewSessionStore(p.sessions, p.name+StagingCookieSuffix, w, r)
	if staging == nil {
		return nil, stagingErr
	}
	return &cookieStore{main: main, staging: staging}, errors.Join(mainErr, stagingErr)
}

// RedisProvider keeps only a browser id in the session cookie and the state
// itself in Redis
type RedisProvider struct {
	client   redis.Cmdable
	sessions sessions.Store
	name     string
	ttl      time.Duration
}

// NewRedisProvider creates a Redis-backed provider
func NewRedisProvider(client redis.Cmdable, store sessions.Store, name string, ttl time.Duration) *RedisProvider {
	return &RedisProvider{client: client, sessions: store, name: name, ttl: ttl}
}

func (p *RedisProvider) Open(w http.ResponseWriter, r *http.Request) (Store, error) {
	id, err := browserID(p.sessions, p.name, w, r)
	if err != nil {
		return nil, err
	}
	return NewRedisStore(r.Context(), p.client, id, p.ttl), nil
}

// DefaultMaxMemoryStores bounds how many browsers a MemoryProvider tracks
const DefaultMaxMemoryStores = 10000

// MemoryProvider keeps each browser's state in process memory, keyed by the
// browser id cookie. Stores idle for longer than the ttl are swept, and once
// the provider holds maxStores browsers the least recently seen one is
// dropped to make room.
type MemoryProvider struct {
	sessions  sessions.Store
	name      string
	ttl       time.Duration
	maxStores int
	now       func() time.Time

	mu     sync.Mutex
	stores map[string]*memoryEntry

	stop     chan struct{}
	stopOnce sync.Once
}

type memoryEntry struct {
	store    *MemoryStore
	lastSeen time.Time
}

// NewMemoryProvider creates an in-process provider. A positive ttl starts a
// sweeper goroutine that Close stops.
func NewMemoryProvider(store sessions.Store, name string, ttl time.Duration) *MemoryProvider {
	p := &MemoryProvider{
		sessions:  store,
		name:      name,
		ttl:       ttl,
		maxStores: DefaultMaxMemoryStores,
		now:       time.Now,
		stores:    make(map[string]*memoryEntry),
		stop:      make(chan struct{}),
	}

	if ttl > 0 {
		go p.cleanup()
	}

	return p
}

func (p *MemoryProvider) Open(w http.ResponseWriter, r *http.Request) (Store, error) {
	id, err := browserID(p.sessions, p.name, w, r)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	entry, ok := p.stores[id]
	if !ok {
		if len(p.stores) >= p.maxStores {
			p.sweep(now)
		}
		if len(p.stores) >= p.maxStores {
			p.evictOldest()
		}
		entry = &memoryEntry{store: NewMemoryStore()}
		p.stores[id] = entry
	}
	entry.lastSeen = now
	return entry.store, nil
}

// Len returns the number of browsers currently tracked
func (p *MemoryProvider) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.stores)
}

// Close stops the sweeper goroutine
func (p *MemoryProvider) Close() {
	p.stopOnce.Do(func() { close(p.stop) })
}

// sweep drops stores idle for longer than the ttl. Callers hold p.mu.
func (p *MemoryProvider) sweep(now time.Time) {
	if p.ttl <= 0 {
		return
	}
	cutoff := now.Add(-p.ttl)
	for id, entry := range p.stores {
		if entry.lastSeen.Before(cutoff) {
			delete(p.stores, id)
		}
	}
}

// evictOldest drops the least recently seen store. Callers hold p.mu.
func (p *MemoryProvider) evictOldest() {
	var (
		oldestID string
		oldest   time.Time
	)
	for id, entry := range p.stores {
		if oldestID == "" || entry.lastSeen.Before(oldest) {
			oldestID, oldest = id, entry.lastSeen
		}
	}
	if oldestID != "" {
		delete(p.stores, oldestID)
	}
}

// cleanup sweeps idle stores periodically
func (p *MemoryProvider) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
			p.mu.Lock()
			p.sweep(p.now())
			p.mu.Unlock()
		}
	}
}

// browserID returns the id stored in the session cookie, issuing a new one
// when the browser has none
func browserID(store sessions.Store, name string, w http.ResponseWriter, r *http.Request) (string, error) {
	ss, err := NewSessionStore(store, name, w, r)
	if ss == nil {
		return "", err
	}

	if id, ok, _ := ss.Get(browserIDKey); ok && id != "" {
		return id, nil
	}

	id := uuid.NewString()
	if err := ss.Set(browserIDKey, id); err != nil {
		return "", fmt.Errorf("failed to issue browser id: %w", err)
	}
	return id, nil
}
