package memory

import (
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// Identity is the display identity broadcast with presence and cursor
// events. Cached so a cursor move does not hit the database.
type Identity struct {
	UserId   uuid.UUID
	Username string
	Name     string
}

type IdentityCache struct {
	cache *cache.Cache
}

func NewIdentityCache() *IdentityCache {
	// 15 minute expiration, purge sweep every 5; identities change rarely.
	c := cache.New(15*time.Minute, 5*time.Minute)
	return &IdentityCache{
		cache: c,
	}
}

func (r *IdentityCache) Save(identity *Identity) {
	r.cache.Set(identity.UserId.String(), identity, cache.DefaultExpiration)
}

func (r *IdentityCache) Get(userId uuid.UUID) (*Identity, bool) {
	if x, found := r.cache.Get(userId.String()); found {
		return x.(*Identity), true
	}
	return nil, false
}

func (r *IdentityCache) Delete(userId uuid.UUID) {
	r.cache.Delete(userId.String())
}
