package domain

import "time"

// Session represents a maximal run of one client's events with no
// inactivity gap exceeding the session threshold
type Session struct {
	SessionID  string    `ch:"session_id" json:"session_id"`
	ClientID   string    `ch:"client_id" json:"client_id"`
	Sequence   int       `ch:"session_seq" json:"session_seq"`
	StartTime  time.Time `ch:"start_time" json:"start_time"`
	EndTime    time.Time `ch:"end_time" json:"end_time"`
	EventCount int       `ch:"event_count" json:"event_count"`

	// Channel is the last UTM source observed inside the session, or
	// "direct" when the session carries no touchpoint.
	Channel string `ch:"channel" json:"channel"`
}

// Duration returns the session duration. Single-event sessions have
// zero duration.
func (s *Session) Duration() time.Duration {
	return s.EndTime.Sub(s.StartTime)
}

// DeviceInfo represents a rule-based classification of a user agent
type DeviceInfo struct {
	DeviceType string `ch:"device_type" json:"device_type"`
	OS         string `ch:"os" json:"os"`
	Browser    string `ch:"browser" json:"browser"`
}

// UserProfile represents the identity-level rollup for one client
type UserProfile struct {
	ClientID     string    `ch:"client_id" json:"client_id"`
	FirstSeen    time.Time `ch:"first_seen" json:"first_seen"`
	LastSeen     time.Time `ch:"last_seen" json:"last_seen"`
	SessionCount int       `ch:"session_count" json:"session_count"`
	UserAgents   []string  `ch:"user_agents" json:"user_agents"`
}
