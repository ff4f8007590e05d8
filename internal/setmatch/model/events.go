package model

// Stream message types, one JSON object per line.
const (
	EventMetadata = "metadata"
	EventBatch    = "batch"
	EventError    = "error"
	EventDebug    = "debug"
)

type Event interface {
	EventType() string
}

type MetadataEvent struct {
	Type      string `json:"type"`
	Total     int    `json:"total"`
	UserParts int    `json:"user_parts"`
}

type BatchEvent struct {
	Type  string      `json:"type"`
	Batch int         `json:"batch"`
	Data  []ScoredSet `json:"data"`
}

type ErrorEvent struct {
	Type    string `json:"type"`
	Batch   int    `json:"batch"`
	Message string `json:"message"`
}

type DebugEvent struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data"`
}

func (MetadataEvent) EventType() string { return EventMetadata }
func (BatchEvent) EventType() string    { return EventBatch }
func (ErrorEvent) EventType() string    { return EventError }
func (DebugEvent) EventType() string    { return EventDebug }

func NewMetadata(total, userParts int) MetadataEvent {
	return MetadataEvent{Type: EventMetadata, Total: total, UserParts: userParts}
}

func NewBatch(n int, data []ScoredSet) BatchEvent {
	return BatchEvent{Type: EventBatch, Batch: n, Data: data}
}

func NewError(n int, msg string) ErrorEvent {
	return ErrorEvent{Type: EventError, Batch: n, Message: msg}
}

func NewDebug(data map[string]any) DebugEvent {
	return DebugEvent{Type: EventDebug, Data: data}
}
