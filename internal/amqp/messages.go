package amqp

import (
	"encoding/json"
	"time"
)

// DocumentAssembledMessage announces a finished claim document. It carries
// only the metadata; consumers fetch the file from Location.
type DocumentAssembledMessage struct {
	RunID      string    `json:"run_id"`
	CourseID   string    `json:"course_id"`
	Filename   string    `json:"filename"`
	Location   string    `json:"location"`
	Pages      int       `json:"pages"`
	Bytes      int       `json:"bytes"`
	TotalCents int64     `json:"total_cents"`
	Forced     bool      `json:"forced,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// ToJSON converts the message to JSON bytes
func (m *DocumentAssembledMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// DocumentAssembledMessageFromJSON creates a message from JSON bytes
func DocumentAssembledMessageFromJSON(data []byte) (*DocumentAssembledMessage, error) {
	var msg DocumentAssembledMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
