package repositories

import (
	"context"

	"github.com/trutalk/voice-server/domain/entities"
)

// TranscriptRepository defines data access methods for call sessions and
// their transcripts
type TranscriptRepository interface {
	Create(ctx context.Context, session *entities.CallSession) error
	GetByID(ctx context.Context, id string) (*entities.CallSession, error)
	GetByCallerID(ctx context.Context, callerID string) ([]*entities.CallSession, error)
	// AppendEntry appends one translated utterance to an existing session
	AppendEntry(ctx context.Context, sessionID string, entry entities.TranscriptEntry) error
	// End marks a session ended and stores its end time
	End(ctx context.Context, sessionID string) error
}
