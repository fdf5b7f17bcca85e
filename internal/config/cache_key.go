package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// SessionTokenKey returns the cache key holding the auth token stored for a browser session
func (r *CacheKeyStruct) SessionTokenKey(sessionID string) string {
	return fmt.Sprintf("parent_panel:session:%s:auth_token", sessionID)
}

var CacheKey = NewCacheKeyStruct()
