package output

import "time"

type Level string

const (
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

type EventName string

const (
	EventToolChecked     EventName = "tool_checked"
	EventToolUpdated     EventName = "tool_updated"
	EventToolDegraded    EventName = "tool_degraded"
	EventToolFailed      EventName = "tool_failed"
	EventTransfer        EventName = "transfer"
	EventRootResolved    EventName = "root_resolved"
	EventRootFallback    EventName = "root_fallback"
	EventCacheServed     EventName = "cache_served"
	EventCacheRefreshed  EventName = "cache_refreshed"
	EventAuthWarning     EventName = "auth_warning"
	EventPersistWarning  EventName = "persist_warning"
	EventDownloadStarted EventName = "download_started"
	EventDownloadPlanned EventName = "download_planned"
	EventDownloadDone    EventName = "download_finished"
	EventDownloadWarning EventName = "download_warning"
	EventDownloadFailed  EventName = "download_failed"
)

type Event struct {
	Timestamp time.Time      `json:"timestamp"`
	Level     Level          `json:"level"`
	Event     EventName      `json:"event"`
	Scope     string         `json:"scope,omitempty"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
}

// Announcer stamps and emits events for one component. A nil emitter is
// allowed and discards everything.
type Announcer struct {
	Emitter EventEmitter
	Now     func() time.Time
}

func (a Announcer) Emit(level Level, name EventName, scope, message string, details map[string]any) {
	if a.Emitter == nil {
		return
	}
	now := time.Now
	if a.Now != nil {
		now = a.Now
	}
	_ = a.Emitter.Emit(Event{
		Timestamp: now(),
		Level:     level,
		Event:     name,
		Scope:     scope,
		Message:   message,
		Details:   details,
	})
}

func (a Announcer) Info(name EventName, scope, message string, details map[string]any) {
	a.Emit(LevelInfo, name, scope, message, details)
}

func (a Announcer) Warn(name EventName, scope, message string, details map[string]any) {
	a.Emit(LevelWarn, name, scope, message, details)
}

func (a Announcer) Error(name EventName, scope, message string, details map[string]any) {
	a.Emit(LevelError, name, scope, message, details)
}
