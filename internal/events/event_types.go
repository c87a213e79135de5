package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered       EventType = "user_registered"
	EventRegistrationFailed   EventType = "registration_failed"
	EventLoginSucceeded       EventType = "login_succeeded"
	EventLoginFailed          EventType = "login_failed"
	EventPasswordChanged      EventType = "password_changed"
	EventPasswordChangeFailed EventType = "password_change_failed"
)

// AllEventTypes lists every type the auth service emits.
var AllEventTypes = []EventType{
	EventUserRegistered,
	EventRegistrationFailed,
	EventLoginSucceeded,
	EventLoginFailed,
	EventPasswordChanged,
	EventPasswordChangeFailed,
}

// Event is an authentication outcome emitted by the auth service.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	UserID    int64     `json:"user_id,omitempty"`
	Email     string    `json:"email,omitempty"`
	Role      string    `json:"role,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewEvent stamps an event with an id and the current time.
func NewEvent(eventType EventType) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
	}
}
