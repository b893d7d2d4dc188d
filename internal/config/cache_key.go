package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// ExamMonitorChannel returns the Redis PubSub channel carrying live attempt
// events for one exam's host monitor.
func (r *CacheKeyStruct) ExamMonitorChannel(examID string) string {
	return fmt.Sprintf("exam:%s:monitor", examID)
}

// ProctorCommandChannel returns the Redis PubSub channel the native proctor
// agent listens on for start/stop commands.
func (r *CacheKeyStruct) ProctorCommandChannel() string {
	return "proctor:commands"
}

// ProctorAttemptEventsKey returns the Redis list holding events the native
// agent collected for one attempt, drained when monitoring stops.
func (r *CacheKeyStruct) ProctorAttemptEventsKey(attemptID string) string {
	return fmt.Sprintf("proctor:attempt:%s:events", attemptID)
}

var CacheKey = NewCacheKeyStruct()
