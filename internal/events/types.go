package events

import (
	"time"

	"github.com/gorilla/websocket"
)

// EventType represents the type of WebSocket event
type EventType string

const (
	// EventTypeDocumentScrubbed fires when a document finishes redaction
	EventTypeDocumentScrubbed EventType = "document_scrubbed"
	// EventTypeDuplicateFound fires when pairwise analysis marks a duplicate
	EventTypeDuplicateFound EventType = "duplicate_found"
	// EventTypeTemplateDetected fires for each template found in a corpus
	EventTypeTemplateDetected EventType = "template_detected"
	// EventTypeSystemStatus represents a system status event
	EventTypeSystemStatus EventType = "system_status"
	// EventTypeConnection represents connection events
	EventTypeConnection EventType = "connection"
)

// Event represents a WebSocket event sent to clients
type Event struct {
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// DocumentScrubbedEvent reports one redacted document
type DocumentScrubbedEvent struct {
	Filename      string `json:"filename"`
	RedactedCount int    `json:"redacted_count"`
	Confidence    *int   `json:"confidence,omitempty"`
}

// DuplicateFoundEvent reports one duplicate relationship
type DuplicateFoundEvent struct {
	Filename       string  `json:"filename"`
	DuplicateOf    string  `json:"duplicate_of"`
	DifferenceType string  `json:"difference_type"`
	Similarity     float64 `json:"similarity"`
}

// TemplateDetectedEvent reports one detected template
type TemplateDetectedEvent struct {
	TemplateID   string  `json:"template_id"`
	TemplateType string  `json:"template_type"`
	Frequency    float64 `json:"frequency"`
}

// SystemStatusEvent represents system status information
type SystemStatusEvent struct {
	Status           string `json:"status"`
	Uptime           string `json:"uptime"`
	DocumentsTotal   int64  `json:"documents_total"`
	DuplicatesTotal  int64  `json:"duplicates_total"`
	ConnectedClients int    `json:"connected_clients"`
}

// ConnectionEvent represents WebSocket connection events
type ConnectionEvent struct {
	Action   string `json:"action"` // "connected", "disconnected"
	ClientID string `json:"client_id"`
	ClientIP string `json:"client_ip"`
}

// ClientMessage represents messages sent from clients to server
type ClientMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// SubscriptionRequest represents a client subscription request
type SubscriptionRequest struct {
	Events []EventType `json:"events"`
}

// Client represents a WebSocket client connection
type Client struct {
	ID           string
	Conn         *websocket.Conn
	Send         chan Event
	Subscription *SubscriptionRequest
	ConnectedAt  time.Time
	LastPing     time.Time
	IP           string
	UserAgent    string
}
