// Package notify delivers best-effort live notifications to connected clients.
package notify

import "time"

// EventNotification is the SSE event name clients listen on.
const EventNotification = "notification"

const (
	TypeFollow  = "follow"
	TypeLike    = "like"
	TypeComment = "comment"
	TypeRepost  = "repost"
)

// Notification is the payload of a "notification" event.
type Notification struct {
	Type  string                 `json:"type"`
	Title string                 `json:"title"`
	Body  string                 `json:"body"`
	Data  map[string]interface{} `json:"data,omitempty"`
	At    time.Time              `json:"at"`
}

// Event is one message written to a session.
type Event struct {
	Name    string       `json:"event"`
	Payload Notification `json:"payload"`
}

// envelope is the wire format shared by the redis and nats buses.
type envelope struct {
	UserID string `json:"userId"`
	Event  Event  `json:"event"`
}
