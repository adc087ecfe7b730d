package service

import (
	"briefroom.app/relay/internal/queue"
	"briefroom.app/relay/internal/store"
)

type Services struct {
	sessions  store.SessionStore
	analyses  AnalysisGenerator
	synthesis SynthesisGenerator
	events    queue.Producer
}

func NewServices(sessions store.SessionStore, analyses AnalysisGenerator, synth SynthesisGenerator, events queue.Producer) *Services {
	return &Services{
		sessions:  sessions,
		analyses:  analyses,
		synthesis: synth,
		events:    events,
	}
}

func (s *Services) Decisions() DecisionService {
	return NewDecisionService(s.sessions, s.analyses, s.synthesis, s.events)
}
