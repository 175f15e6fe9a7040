package amqp

import (
	"encoding/json"
	"time"
)

// FilterSelectedMessage records one chart request: which filter was chosen
// and how large the result was.
type FilterSelectedMessage struct {
	Filter    string    `json:"filter"`
	Regions   int       `json:"regions"`
	Rows      int       `json:"rows"`
	Timestamp time.Time `json:"timestamp"`
}

func NewFilterSelectedMessage(filter string, regions, rows int) *FilterSelectedMessage {
	return &FilterSelectedMessage{
		Filter:    filter,
		Regions:   regions,
		Rows:      rows,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *FilterSelectedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func FilterSelectedMessageFromJSON(data []byte) (*FilterSelectedMessage, error) {
	var msg FilterSelectedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
