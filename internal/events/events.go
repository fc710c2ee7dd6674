// Package events announces completed resume generations to other systems.
package events

import (
	"context"
	"time"
)

// TypeGenerated is the routing key and type of a completed generation.
const TypeGenerated = "resume.generated"

// Event carries generation metadata only; no resume text or personal
// fields leave the process.
type Event struct {
	Type         string    `json:"type"`
	GenerationID string    `json:"generationId"`
	Template     string    `json:"template"`
	Formats      []string  `json:"formats"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
