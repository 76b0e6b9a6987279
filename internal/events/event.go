package events

import (
	"time"

	"github.com/google/uuid"
)

// Source identifies this service on published events
const Source = "student-portal"

// Event types
const (
	StudentRegistered     = "student.registered"
	RegistrationCompleted = "registration.completed"
	QuerySubmitted        = "query.submitted"
	QueryResponded        = "query.responded"
)

// Event is the envelope published on the bus
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Source    string      `json:"source"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

func NewEvent(eventType string, data interface{}) *Event {
	return &Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    Source,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

type StudentRegisteredEvent struct {
	RollNo       string   `json:"roll_no"`
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	Courses      []string `json:"courses"`
	RegisteredBy string   `json:"registered_by"`
}

type RegistrationCompletedEvent struct {
	Total             int    `json:"total"`
	Registered        int    `json:"registered"`
	AlreadyRegistered int    `json:"already_registered"`
	Errors            int    `json:"errors"`
	RegisteredBy      string `json:"registered_by"`
}

type QueryEvent struct {
	QueryID string `json:"query_id"`
	RollNo  string `json:"roll_no"`
	Subject string `json:"subject"`
	Status  string `json:"status"`
}
