package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// FlowPayloadKey returns the cache key for a flow's employee-facing payload
func (r *CacheKeyStruct) FlowPayloadKey(flowID string) string {
	return fmt.Sprintf("flow:%s:payload", flowID)
}

// AssignmentEventsChannel returns the PubSub channel for an assignment's progress events
func (r *CacheKeyStruct) AssignmentEventsChannel(assignmentID string) string {
	return fmt.Sprintf("assignment:%s:events", assignmentID)
}

var CacheKey = NewCacheKeyStruct()
