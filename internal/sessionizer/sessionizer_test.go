package sessionizer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/eventlab/commerce-analytics-pipeline/internal/domain"
)

var testBase = time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC)

func event(clientID string, offset time.Duration, row int) domain.Event {
	return domain.Event{
		ClientID:  clientID,
		EventName: "page_viewed",
		Timestamp: testBase.Add(offset),
		RowOrder:  row,
	}
}

func TestSessionize_SingleEventSession(t *testing.T) {
	s := New(DefaultGap, zap.NewNop())

	sessions, err := s.Sessionize([]domain.Event{event("c1", 0, 0)})

	assert.NoError(t, err)
	assert.Len(t, sessions, 1)
	assert.Equal(t, "c1_session_1", sessions[0].SessionID)
	assert.Equal(t, 1, sessions[0].EventCount)
	assert.Equal(t, time.Duration(0), sessions[0].Duration())
}

func TestSessionize_GapStartsNewSession(t *testing.T) {
	s := New(DefaultGap, zap.NewNop())

	sessions, err := s.Sessionize([]domain.Event{
		event("c1", 0, 0),
		event("c1", 10*time.Minute, 1),
		// 30m1s after the previous event: strictly exceeds the gap.
		event("c1", 10*time.Minute+30*time.Minute+time.Second, 2),
	})

	assert.NoError(t, err)
	assert.Len(t, sessions, 2)
	assert.Equal(t, "c1_session_1", sessions[0].SessionID)
	assert.Equal(t, 2, sessions[0].EventCount)
	assert.Equal(t, "c1_session_2", sessions[1].SessionID)
	assert.Equal(t, 1, sessions[1].EventCount)
}

func TestSessionize_ExactGapStaysInSession(t *testing.T) {
	s := New(DefaultGap, zap.NewNop())

	sessions, err := s.Sessionize([]domain.Event{
		event("c1", 0, 0),
		event("c1", 1800*time.Second, 1),
	})

	assert.NoError(t, err)
	assert.Len(t, sessions, 1)
	assert.Equal(t, 2, sessions[0].EventCount)
	assert.Equal(t, 1800*time.Second, sessions[0].Duration())
}

func TestSessionize_CoversEveryEventExactlyOnce(t *testing.T) {
	s := New(DefaultGap, zap.NewNop())

	events := []domain.Event{
		event("c1", 0, 0),
		event("c1", 5*time.Minute, 1),
		event("c1", 2*time.Hour, 2),
		event("c2", 0, 3),
		event("c2", 31*time.Minute, 4),
		event("c2", 32*time.Minute, 5),
	}

	sessions, err := s.Sessionize(events)

	assert.NoError(t, err)

	total := 0
	perClient := map[string]int{}
	for _, session := range sessions {
		total += session.EventCount
		perClient[session.ClientID] += session.EventCount
	}
	assert.Equal(t, len(events), total)
	assert.Equal(t, 3, perClient["c1"])
	assert.Equal(t, 3, perClient["c2"])

	// Sessions per client are contiguous and non-overlapping.
	var prev *domain.Session
	for i := range sessions {
		session := sessions[i]
		assert.False(t, session.EndTime.Before(session.StartTime))
		if prev != nil && prev.ClientID == session.ClientID {
			assert.True(t, session.StartTime.Sub(prev.EndTime) > DefaultGap)
		}
		prev = &sessions[i]
	}
}

func TestSessionize_ExcludesNullClientIDs(t *testing.T) {
	s := New(DefaultGap, zap.NewNop())

	sessions, err := s.Sessionize([]domain.Event{
		event("", 0, 0),
		event("c1", time.Minute, 1),
		event("", 2*time.Minute, 2),
	})

	assert.NoError(t, err)
	assert.Len(t, sessions, 1)
	assert.Equal(t, "c1", sessions[0].ClientID)
}

func TestSessionize_RejectsOutOfOrderInput(t *testing.T) {
	s := New(DefaultGap, zap.NewNop())

	sessions, err := s.Sessionize([]domain.Event{
		event("c1", time.Hour, 0),
		event("c1", 0, 1),
	})

	assert.Error(t, err)
	assert.Nil(t, sessions)
	assert.Contains(t, err.Error(), "out of order")
}

func TestSessionize_Deterministic(t *testing.T) {
	s := New(DefaultGap, zap.NewNop())

	events := []domain.Event{
		event("c2", 0, 0),
		event("c1", time.Minute, 1),
		event("c1", 45*time.Minute, 2),
		event("c3", time.Minute, 3),
	}

	first, err := s.Sessionize(events)
	assert.NoError(t, err)
	second, err := s.Sessionize(events)
	assert.NoError(t, err)

	assert.Equal(t, first, second)
	// Output ordering is stable: clients sorted, sessions by sequence.
	assert.Equal(t, "c1_session_1", first[0].SessionID)
	assert.Equal(t, "c1_session_2", first[1].SessionID)
	assert.Equal(t, "c2_session_1", first[2].SessionID)
	assert.Equal(t, "c3_session_1", first[3].SessionID)
}

func TestSessionize_ChannelIsLastTouchpointInSession(t *testing.T) {
	s := New(DefaultGap, zap.NewNop())

	withUTM := func(clientID, source string, offset time.Duration, row int) domain.Event {
		e := event(clientID, offset, row)
		e.UTMSource = source
		return e
	}

	sessions, err := s.Sessionize([]domain.Event{
		withUTM("c1", "google", 0, 0),
		withUTM("c1", "email", 5*time.Minute, 1),
		event("c1", 10*time.Minute, 2),
		// New session with no touchpoint at all.
		event("c1", 2*time.Hour, 3),
	})

	assert.NoError(t, err)
	assert.Len(t, sessions, 2)
	assert.Equal(t, "email", sessions[0].Channel)
	assert.Equal(t, domain.ChannelDirect, sessions[1].Channel)
}

func TestSessionize_CustomGap(t *testing.T) {
	s := New(5*time.Minute, zap.NewNop())

	sessions, err := s.Sessionize([]domain.Event{
		event("c1", 0, 0),
		event("c1", 6*time.Minute, 1),
	})

	assert.NoError(t, err)
	assert.Len(t, sessions, 2)
}
