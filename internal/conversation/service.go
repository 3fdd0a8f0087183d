package conversation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gomind-health/bianca/internal/observability/metrics"
	"github.com/gomind-health/bianca/pkg/logging"
)

// Service coordinates one conversation turn: it loads the session, runs the
// engine, persists the updated session, and archives the transcript.
// Turns for the same session are serialized; different sessions run
// concurrently.
type Service struct {
	engine  *Engine
	store   SessionStore
	archive *ArchiveStore
	metrics *metrics.ConversationMetrics
	logger  *logging.Logger

	locks sync.Map // session id -> *sync.Mutex
}

func NewService(engine *Engine, store SessionStore, archive *ArchiveStore, m *metrics.ConversationMetrics, logger *logging.Logger) *Service {
	if engine == nil {
		panic("conversation: engine cannot be nil")
	}
	if store == nil {
		panic("conversation: session store cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		engine:  engine,
		store:   store,
		archive: archive,
		metrics: m,
		logger:  logger,
	}
}

func (s *Service) sessionLock(id string) *sync.Mutex {
	lock, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// ProcessMessage handles one user turn and returns the assistant reply with
// the session's new stage.
func (s *Service) ProcessMessage(ctx context.Context, sessionID, message string) (*Reply, error) {
	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	sess, err := s.store.GetOrCreate(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("conversation: failed to load session %s: %w", sessionID, err)
	}

	fromStage := sess.Stage
	userMsg := Message{Role: "user", Content: message}
	sess.Messages = append(sess.Messages, userMsg)

	start := time.Now()
	response, newStage := s.engine.Dispatch(ctx, sess, message)
	s.metrics.ObserveTurnLatency(string(fromStage), time.Since(start).Seconds())
	s.metrics.ObserveTurn(string(fromStage), "ok")
	if newStage != fromStage {
		s.metrics.ObserveTransition(string(fromStage), string(newStage))
	}

	sess.Stage = newStage
	if response != "" {
		sess.Messages = append(sess.Messages, Message{Role: "assistant", Content: response})
	}

	if err := s.store.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("conversation: failed to save session %s: %w", sessionID, err)
	}

	s.archiveTurn(ctx, sess, userMsg, response)

	if response == "" {
		response = msgProcessingFallback
	}
	return &Reply{
		SessionID: sessionID,
		Response:  response,
		Stage:     newStage,
	}, nil
}

// archiveTurn persists the turn to the transcript archive. Failures are
// logged and never surface to the user.
func (s *Service) archiveTurn(ctx context.Context, sess *Session, userMsg Message, response string) {
	if s.archive == nil {
		return
	}
	if err := s.archive.AppendMessage(ctx, sess, userMsg); err != nil {
		s.logger.Warn("transcript archive failed", "error", err.Error(), "session_id", sess.SessionID)
		return
	}
	if response != "" {
		if err := s.archive.AppendMessage(ctx, sess, Message{Role: "assistant", Content: response}); err != nil {
			s.logger.Warn("transcript archive failed", "error", err.Error(), "session_id", sess.SessionID)
			return
		}
	}
	if sess.Stage == StageConversationEnded {
		if err := s.archive.EndConversation(ctx, sess.SessionID); err != nil {
			s.logger.Warn("transcript archive close failed", "error", err.Error(), "session_id", sess.SessionID)
		}
	}
}
