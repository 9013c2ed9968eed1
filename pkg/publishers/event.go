package publishers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// EventReportCompleted is emitted after a report is rendered and archived.
const EventReportCompleted = "report.completed"

// fifoGroupID groups report events on FIFO queues and topics.
const fifoGroupID = "declaration-reports"

// Publisher delivers report events to one downstream sink.
type Publisher interface {
	ID() string
	Type() string
	Publish(ctx context.Context, evt Event) error
}

// Event represents the payload published downstream.
type Event struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	URL        string          `json:"url"`
	TargetName string          `json:"target_name"`
	Score      float64         `json:"score"`
	CreatedAt  time.Time       `json:"created_at"`
	Result     json.RawMessage `json:"result,omitempty"`
}

// NewReportEvent constructs a report.completed Event carrying result as JSON.
func NewReportEvent(url, targetName string, score float64, result any) (Event, error) {
	var raw json.RawMessage
	if result != nil {
		b, err := json.Marshal(result)
		if err != nil {
			return Event{}, fmt.Errorf("marshal event result: %w", err)
		}
		raw = b
	}
	return Event{
		ID:         uuid.NewString(),
		Type:       EventReportCompleted,
		URL:        url,
		TargetName: targetName,
		Score:      score,
		CreatedAt:  time.Now().UTC(),
		Result:     raw,
	}, nil
}

func (e Event) body() (string, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return "", fmt.Errorf("marshal event %s: %w", e.ID, err)
	}
	return string(b), nil
}

// attributes are the message attributes shared by queue and topic publishers.
func (e Event) attributes() map[string]string {
	return map[string]string{
		"event_id":   e.ID,
		"event_type": e.Type,
	}
}

func isFIFO(name string) bool {
	return strings.HasSuffix(name, ".fifo")
}
