package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// VisitorCookiesKey returns the hash holding a visitor's relayed backend cookies
func (r *CacheKeyStruct) VisitorCookiesKey(visitorID string) string {
	return fmt.Sprintf("visitor:%s:cookies", visitorID)
}

var CacheKey = NewCacheKeyStruct()
