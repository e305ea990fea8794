package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// RevokedSessionKey returns the key marking a signed-out auth session.
func (r *CacheKeyStruct) RevokedSessionKey(sessionID string) string {
	return fmt.Sprintf("auth:revoked:%s", sessionID)
}

// ClassEventsChannel returns the Redis PubSub channel name for a class's event stream.
func (r *CacheKeyStruct) ClassEventsChannel(classID int64) string {
	return fmt.Sprintf("class:%d:events", classID)
}

var CacheKey = NewCacheKeyStruct()
