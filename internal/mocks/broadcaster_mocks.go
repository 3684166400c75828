package mocks

import (
	"sync"

	"github.com/stretchr/testify/mock"
	"github.com/welldanyogia/webrana-voicemail-backend/internal/websocket"
)

// EventRecord records an event sent through the mock broadcaster
type EventRecord struct {
	AccountID   string
	Event       websocket.MessageType
	VoicemailID string
}

// MockBroadcaster implements services.Broadcaster and records every event
type MockBroadcaster struct {
	mock.Mock
	mu     sync.Mutex
	Events []EventRecord
}

// NewMockBroadcaster creates a new MockBroadcaster instance
func NewMockBroadcaster() *MockBroadcaster {
	return &MockBroadcaster{
		Events: make([]EventRecord, 0),
	}
}

// BroadcastVoicemailEvent records the event
func (m *MockBroadcaster) BroadcastVoicemailEvent(accountID string, event websocket.MessageType, voicemailID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, EventRecord{
		AccountID:   accountID,
		Event:       event,
		VoicemailID: voicemailID,
	})
}

// GetEvents returns all recorded events
func (m *MockBroadcaster) GetEvents() []EventRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]EventRecord(nil), m.Events...)
}
