package websocket

import (
	"time"

	"go.uber.org/zap"

	"github.com/gorilla/websocket"
)

const (
	cleanupInterval = 5 * time.Minute
	maxIdleTime     = 15 * time.Minute
)

// CleanupService disconnects clients that have gone silent without closing
// their connection, so their call sessions get ended and persisted.
type CleanupService struct {
	hub      *Hub
	logger   *zap.Logger
	stopChan chan struct{}
}

// NewCleanupService creates a new idle connection cleanup service
func NewCleanupService(hub *Hub, logger *zap.Logger) *CleanupService {
	return &CleanupService{
		hub:      hub,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Start begins the background cleanup process
func (s *CleanupService) Start() {
	go s.cleanupLoop()
	s.logger.Info("Connection cleanup service started")
}

// Stop gracefully stops the cleanup service
func (s *CleanupService) Stop() {
	close(s.stopChan)
	s.logger.Info("Connection cleanup service stopped")
}

func (s *CleanupService) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.runCleanup()
		}
	}
}

// runCleanup closes connections idle beyond maxIdleTime. Closing the
// connection makes the read pump exit, which unregisters the client and
// ends its call session through the usual path.
func (s *CleanupService) runCleanup() {
	cutoff := time.Now().Add(-maxIdleTime)

	s.hub.mu.RLock()
	var stale []*Client
	for _, client := range s.hub.clients {
		if client.idleSince().Before(cutoff) {
			stale = append(stale, client)
		}
	}
	s.hub.mu.RUnlock()

	for _, client := range stale {
		s.logger.Info("Closing idle connection",
			zap.String("userID", client.userID),
			zap.Time("lastActive", client.idleSince()))
		client.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "idle timeout"),
			time.Now().Add(writeWait),
		)
		client.conn.Close()
	}
}
