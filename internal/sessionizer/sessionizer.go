package sessionizer

import (
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/eventlab/commerce-analytics-pipeline/internal/domain"
)

// DefaultGap is the default inactivity threshold between two events of the
// same session.
const DefaultGap = 1800 * time.Second

// Sessionizer partitions each client's chronologically ordered events into
// sessions by inactivity gap. Session boundaries are a pure function of the
// gap, never of event type or payload.
type Sessionizer struct {
	gap time.Duration
	log *zap.Logger
}

// New creates a new sessionizer with the given inactivity gap.
func New(gap time.Duration, log *zap.Logger) *Sessionizer {
	if gap <= 0 {
		gap = DefaultGap
	}
	return &Sessionizer{
		gap: gap,
		log: log,
	}
}

// Sessionize groups the normalized event set into sessions. Events must
// already be in canonical order (timestamp ascending, row order on ties);
// out-of-order input is a contract violation and fails immediately. Events
// without a client_id are excluded: sessionization is undefined for them.
func (s *Sessionizer) Sessionize(events []domain.Event) ([]domain.Session, error) {
	byClient := make(map[string][]domain.Event)
	for _, event := range events {
		if !event.HasClientID() {
			continue
		}
		byClient[event.ClientID] = append(byClient[event.ClientID], event)
	}

	clients := make([]string, 0, len(byClient))
	for clientID := range byClient {
		clients = append(clients, clientID)
	}
	sort.Strings(clients)

	var sessions []domain.Session
	for _, clientID := range clients {
		clientSessions, err := s.sessionizeClient(clientID, byClient[clientID])
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, clientSessions...)
	}

	s.log.Info("Sessionized events",
		zap.Int("client_count", len(clients)),
		zap.Int("session_count", len(sessions)))

	return sessions, nil
}

// sessionizeClient walks one client's ordered events and opens a new session
// whenever the gap since the previous event exceeds the threshold.
func (s *Sessionizer) sessionizeClient(clientID string, events []domain.Event) ([]domain.Session, error) {
	var sessions []domain.Session
	var current *domain.Session
	var previous time.Time

	for _, event := range events {
		if !previous.IsZero() && event.Timestamp.Before(previous) {
			return nil, fmt.Errorf("events for client %s are out of order at %s", clientID, event.Timestamp)
		}

		if current == nil || event.Timestamp.Sub(previous) > s.gap {
			if current != nil {
				sessions = append(sessions, *current)
			}
			seq := len(sessions) + 1
			current = &domain.Session{
				SessionID:  SessionID(clientID, seq),
				ClientID:   clientID,
				Sequence:   seq,
				StartTime:  event.Timestamp,
				EndTime:    event.Timestamp,
				EventCount: 1,
				Channel:    domain.ChannelDirect,
			}
		} else {
			current.EndTime = event.Timestamp
			current.EventCount++
		}

		// The session channel is the last touchpoint inside the session.
		if event.IsTouchpoint() {
			current.Channel = event.UTMSource
		}

		previous = event.Timestamp
	}

	if current != nil {
		sessions = append(sessions, *current)
	}

	return sessions, nil
}

// SessionID derives the deterministic session identifier from the client
// and the per-client session ordinal.
func SessionID(clientID string, seq int) string {
	return fmt.Sprintf("%s_session_%d", clientID, seq)
}
