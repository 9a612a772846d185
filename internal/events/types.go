// Package events provides an in-process event bus for report lifecycle events.
package events

import "time"

// EventType represents different event types
type EventType string

const (
	ReportCreated   EventType = "REPORT_CREATED"
	ReportDeleted   EventType = "REPORT_DELETED"
	ReportCompleted EventType = "REPORT_COMPLETED"
	ReportFailed    EventType = "REPORT_FAILED"
	ErrorOccurred   EventType = "ERROR_OCCURRED"
)

// AllTypes lists every event type the bus can carry
var AllTypes = []EventType{
	ReportCreated,
	ReportDeleted,
	ReportCompleted,
	ReportFailed,
	ErrorOccurred,
}

// Event is a single emitted event
type Event struct {
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Module    string                 `json:"module"`
	Data      map[string]interface{} `json:"data"`
}
