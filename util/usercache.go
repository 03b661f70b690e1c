package util

import (
	"strconv"
	"sync"
	"time"

	"github.com/ariebrainware/medibook/model"
	cache "github.com/patrickmn/go-cache"
)

var (
	userCacheMu sync.RWMutex
	userCache   *cache.Cache
)

// InitUserCache enables the in-process user cache consulted when resolving callers.
// A ttl <= 0 defaults to one minute.
func InitUserCache(ttl time.Duration) {
	if ttl <= 0 {
		ttl = time.Minute
	}
	userCacheMu.Lock()
	userCache = cache.New(ttl, 2*ttl)
	userCacheMu.Unlock()
}

// DisableUserCache turns the cache off.
func DisableUserCache() {
	userCacheMu.Lock()
	userCache = nil
	userCacheMu.Unlock()
}

func currentUserCache() *cache.Cache {
	userCacheMu.RLock()
	defer userCacheMu.RUnlock()
	return userCache
}

func userCacheKey(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

// UserCacheGet returns a cached copy of the user.
func UserCacheGet(id uint) (model.User, bool) {
	c := currentUserCache()
	if c == nil {
		return model.User{}, false
	}
	v, ok := c.Get(userCacheKey(id))
	if !ok {
		return model.User{}, false
	}
	u, ok := v.(model.User)
	return u, ok
}

// UserCacheSet stores a copy of u.
func UserCacheSet(u model.User) {
	if c := currentUserCache(); c != nil && u.ID != 0 {
		c.Set(userCacheKey(u.ID), u, cache.DefaultExpiration)
	}
}

// UserCacheInvalidate drops the user; call it after every user mutation.
func UserCacheInvalidate(id uint) {
	if c := currentUserCache(); c != nil {
		c.Delete(userCacheKey(id))
	}
}
