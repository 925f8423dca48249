package memory

import (
	"time"

	"ai-scribe-be/pkg/store"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// SessionRepository holds the live scribe sessions, keyed by user id. A
// session idle past the expiration window is purged together with its
// session-scoped suggestions, which must never outlive the encounter.
type SessionRepository struct {
	cache *cache.Cache
}

func NewSessionRepository() *SessionRepository {
	// Sessions expire after 2 hours of inactivity, purged every 10 minutes.
	c := cache.New(2*time.Hour, 10*time.Minute)
	return &SessionRepository{
		cache: c,
	}
}

func (r *SessionRepository) Save(session *store.ScribeSession) {
	r.cache.Set(session.UserID, session, cache.DefaultExpiration)
}

func (r *SessionRepository) Get(userID string) (*store.ScribeSession, bool) {
	if x, found := r.cache.Get(userID); found {
		// Touch to keep an active encounter alive.
		r.cache.Set(userID, x, cache.DefaultExpiration)
		return x.(*store.ScribeSession), true
	}
	return nil, false
}

// GetOrCreate returns the user's session, creating a fresh idle one when
// none exists.
func (r *SessionRepository) GetOrCreate(userID string) *store.ScribeSession {
	if s, found := r.Get(userID); found {
		return s
	}
	s := store.NewScribeSession(uuid.NewString(), userID)
	r.Save(s)
	return s
}

func (r *SessionRepository) Delete(userID string) {
	r.cache.Delete(userID)
}
