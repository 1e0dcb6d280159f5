package adapters

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/trutalk/voice-server/domain/entities"
	"github.com/trutalk/voice-server/domain/repositories"
)

// MemoryTranscriptRepository is an in-memory implementation of
// TranscriptRepository, used when MongoDB is not configured and as a test
// double. Safe for concurrent use.
type MemoryTranscriptRepository struct {
	mu       sync.RWMutex
	sessions map[string]*entities.CallSession
	byCaller map[string][]string
}

var _ repositories.TranscriptRepository = (*MemoryTranscriptRepository)(nil)

// NewMemoryTranscriptRepository creates a new in-memory transcript repository
func NewMemoryTranscriptRepository() *MemoryTranscriptRepository {
	return &MemoryTranscriptRepository{
		sessions: make(map[string]*entities.CallSession),
		byCaller: make(map[string][]string),
	}
}

// Create implements TranscriptRepository
func (m *MemoryTranscriptRepository) Create(ctx context.Context, session *entities.CallSession) error {
	if session == nil {
		return errors.New("session cannot be nil")
	}
	if err := session.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[session.ID]; exists {
		return errors.New("session already exists")
	}

	stored := *session
	m.sessions[session.ID] = &stored
	m.byCaller[session.CallerID] = append(m.byCaller[session.CallerID], session.ID)
	return nil
}

// GetByID implements TranscriptRepository
func (m *MemoryTranscriptRepository) GetByID(ctx context.Context, id string) (*entities.CallSession, error) {
	if id == "" {
		return nil, errors.New("session ID cannot be empty")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	session, exists := m.sessions[id]
	if !exists {
		return nil, nil
	}

	copied := *session
	copied.Transcript = append([]entities.TranscriptEntry(nil), session.Transcript...)
	return &copied, nil
}

// GetByCallerID implements TranscriptRepository
func (m *MemoryTranscriptRepository) GetByCallerID(ctx context.Context, callerID string) ([]*entities.CallSession, error) {
	if callerID == "" {
		return nil, errors.New("caller ID cannot be empty")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := m.byCaller[callerID]
	sessions := make([]*entities.CallSession, 0, len(ids))
	for _, id := range ids {
		if session, exists := m.sessions[id]; exists {
			copied := *session
			copied.Transcript = append([]entities.TranscriptEntry(nil), session.Transcript...)
			sessions = append(sessions, &copied)
		}
	}

	return sessions, nil
}

// AppendEntry implements TranscriptRepository
func (m *MemoryTranscriptRepository) AppendEntry(ctx context.Context, sessionID string, entry entities.TranscriptEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[sessionID]
	if !exists {
		return errors.New("session not found")
	}

	session.Transcript = append(session.Transcript, entry)
	return nil
}

// End implements TranscriptRepository
func (m *MemoryTranscriptRepository) End(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[sessionID]
	if !exists {
		return errors.New("session not found")
	}

	now := time.Now()
	session.Status = entities.CallStatusEnded
	session.EndedAt = &now
	return nil
}
