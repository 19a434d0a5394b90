package identity

import (
	"sort"

	"go.uber.org/zap"

	"github.com/eventlab/commerce-analytics-pipeline/internal/domain"
)

// Rollup aggregates per-client identity summaries from normalized events
// and computed sessions. Clients without an id are excluded from
// identity-level aggregates but remain in raw event counts elsewhere.
func Rollup(events []domain.Event, sessions []domain.Session, log *zap.Logger) []domain.UserProfile {
	type accumulator struct {
		profile domain.UserProfile
		agents  map[string]struct{}
	}
	byClient := make(map[string]*accumulator)

	for _, event := range events {
		if !event.HasClientID() {
			continue
		}
		acc, ok := byClient[event.ClientID]
		if !ok {
			acc = &accumulator{
				profile: domain.UserProfile{
					ClientID:  event.ClientID,
					FirstSeen: event.Timestamp,
					LastSeen:  event.Timestamp,
				},
				agents: make(map[string]struct{}),
			}
			byClient[event.ClientID] = acc
		}

		if event.Timestamp.Before(acc.profile.FirstSeen) {
			acc.profile.FirstSeen = event.Timestamp
		}
		if event.Timestamp.After(acc.profile.LastSeen) {
			acc.profile.LastSeen = event.Timestamp
		}
		if event.UserAgent != "" {
			acc.agents[event.UserAgent] = struct{}{}
		}
	}

	for _, session := range sessions {
		if acc, ok := byClient[session.ClientID]; ok {
			acc.profile.SessionCount++
		}
	}

	profiles := make([]domain.UserProfile, 0, len(byClient))
	for _, acc := range byClient {
		// Observed user agents are a set, not a single collapsed value.
		agents := make([]string, 0, len(acc.agents))
		for ua := range acc.agents {
			agents = append(agents, ua)
		}
		sort.Strings(agents)
		acc.profile.UserAgents = agents
		profiles = append(profiles, acc.profile)
	}

	sort.Slice(profiles, func(i, j int) bool {
		return profiles[i].ClientID < profiles[j].ClientID
	})

	log.Info("Rolled up user profiles", zap.Int("user_count", len(profiles)))

	return profiles
}
