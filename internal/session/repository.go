// Package session keeps per-voter progress through the deck in memory.
package session

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// Session is one browsing session of one voter.
type Session struct {
	ID        string    `json:"session_id"`
	UserName  string    `json:"user_name"`
	Index     int       `json:"index"`
	StartedAt time.Time `json:"started_at"`
}

// Repository stores sessions until they have been idle for the TTL.
type Repository struct {
	cache *cache.Cache
	// mu makes read-modify-write of a session atomic.
	mu sync.Mutex
}

func NewRepository(ttl time.Duration) *Repository {
	return &Repository{cache: cache.New(ttl, ttl/4)}
}

// Create starts a session at the beginning of the deck.
func (r *Repository) Create(userName string) Session {
	s := Session{
		ID:        uuid.NewString(),
		UserName:  strings.TrimSpace(userName),
		StartedAt: time.Now().UTC(),
	}
	r.cache.Set(s.ID, s, cache.DefaultExpiration)
	return s
}

func (r *Repository) Get(id string) (Session, bool) {
	if x, found := r.cache.Get(id); found {
		return x.(Session), true
	}
	return Session{}, false
}

// Advance moves the session to the next item. When expectIndex is
// non-negative the session only advances if it is still at that index, so a
// repeated request does not skip an item.
func (r *Repository) Advance(id string, expectIndex int) (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.Get(id)
	if !ok {
		return Session{}, false
	}
	if expectIndex < 0 || s.Index == expectIndex {
		s.Index++
		r.cache.Set(s.ID, s, cache.DefaultExpiration)
	}
	return s, true
}

func (r *Repository) Delete(id string) {
	r.cache.Delete(id)
}

func (r *Repository) Count() int {
	return r.cache.ItemCount()
}
