package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/trutalk/voice-server/domain/entities"
	"github.com/trutalk/voice-server/domain/repositories"
)

// TranscriptRepository persists call sessions and their translated
// transcripts in MongoDB.
type TranscriptRepository struct {
	collection *mongo.Collection
}

// NewTranscriptRepository creates a new MongoDB transcript repository
func NewTranscriptRepository(db *mongo.Database) repositories.TranscriptRepository {
	return &TranscriptRepository{
		collection: db.Collection("call_sessions"),
	}
}

// Create implements repositories.TranscriptRepository
func (r *TranscriptRepository) Create(ctx context.Context, session *entities.CallSession) error {
	if session == nil {
		return errors.New("session cannot be nil")
	}
	if err := session.Validate(); err != nil {
		return err
	}

	if session.StartedAt.IsZero() {
		session.StartedAt = time.Now()
	}

	if _, err := r.collection.InsertOne(ctx, session); err != nil {
		return fmt.Errorf("failed to create call session: %w", err)
	}

	return nil
}

// GetByID implements repositories.TranscriptRepository
func (r *TranscriptRepository) GetByID(ctx context.Context, id string) (*entities.CallSession, error) {
	if id == "" {
		return nil, errors.New("session ID cannot be empty")
	}

	var session entities.CallSession
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get call session %s: %w", id, err)
	}

	return &session, nil
}

// GetByCallerID implements repositories.TranscriptRepository
func (r *TranscriptRepository) GetByCallerID(ctx context.Context, callerID string) ([]*entities.CallSession, error) {
	if callerID == "" {
		return nil, errors.New("caller ID cannot be empty")
	}

	opts := options.Find().SetSort(bson.M{"started_at": -1})
	cursor, err := r.collection.Find(ctx, bson.M{"caller_id": callerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list call sessions for caller %s: %w", callerID, err)
	}
	defer cursor.Close(ctx)

	var sessions []*entities.CallSession
	if err := cursor.All(ctx, &sessions); err != nil {
		return nil, fmt.Errorf("failed to decode call sessions: %w", err)
	}

	return sessions, nil
}

// AppendEntry implements repositories.TranscriptRepository
func (r *TranscriptRepository) AppendEntry(ctx context.Context, sessionID string, entry entities.TranscriptEntry) error {
	if sessionID == "" {
		return errors.New("session ID cannot be empty")
	}

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": sessionID},
		bson.M{"$push": bson.M{"transcript": entry}},
	)
	if err != nil {
		return fmt.Errorf("failed to append transcript entry: %w", err)
	}

	if result.MatchedCount == 0 {
		return fmt.Errorf("call session %s not found", sessionID)
	}

	return nil
}

// End implements repositories.TranscriptRepository
func (r *TranscriptRepository) End(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return errors.New("session ID cannot be empty")
	}

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": sessionID},
		bson.M{"$set": bson.M{
			"status":   entities.CallStatusEnded,
			"ended_at": time.Now(),
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to end call session: %w", err)
	}

	if result.MatchedCount == 0 {
		return fmt.Errorf("call session %s not found", sessionID)
	}

	return nil
}
