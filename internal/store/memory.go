package store

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"briefroom.app/relay/internal/lifecycle"
	"briefroom.app/relay/internal/model"
)

// MemoryStore keeps sessions in process. Used for development and tests.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*model.Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*model.Session)}
}

func (m *MemoryStore) Create(_ context.Context, session *model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[session.ID]; ok {
		return fmt.Errorf("session %s already exists", session.ID)
	}
	normalize(session)
	m.sessions[session.ID] = session.Clone()
	return nil
}

func (m *MemoryStore) GetByID(_ context.Context, id string) (*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s.Clone(), nil
}

func (m *MemoryStore) AppendSubmission(_ context.Context, id string, sub model.Submission) error {
	return m.updateActive(id, func(s *model.Session) error {
		normalizeSubmission(&sub)
		sub.Iterations = slices.Clone(sub.Iterations)
		sub.UploadedDocuments = slices.Clone(sub.UploadedDocuments)
		s.Submissions = append(s.Submissions, sub)
		return nil
	})
}

func (m *MemoryStore) AppendReview(_ context.Context, id string, review model.Review) error {
	return m.updateActive(id, func(s *model.Session) error {
		s.SynthesisReviews = append(s.SynthesisReviews, review)
		return nil
	})
}

func (m *MemoryStore) SetSynthesis(_ context.Context, id string, text string, at time.Time) error {
	return m.updateActive(id, func(s *model.Session) error {
		s.Synthesis = &text
		s.SynthesisVersion = 1
		s.SynthesisGeneratedAt = &at
		return nil
	})
}

func (m *MemoryStore) ApplyRevision(_ context.Context, id string, expectedVersion int, update RevisionUpdate) error {
	return m.updateActive(id, func(s *model.Session) error {
		if lifecycle.CurrentVersion(s) != expectedVersion {
			return ErrConditionFailed
		}
		text := update.Synthesis
		at := update.RevisedAt
		s.VersionHistory = lifecycle.PushHistory(s.VersionHistory, update.Snapshot)
		s.Synthesis = &text
		s.SynthesisVersion = update.Version
		s.SynthesisGeneratedAt = &at
		s.SynthesisReviews = []model.Review{}
		return nil
	})
}

func (m *MemoryStore) Finalize(_ context.Context, id string, f Finalization) error {
	return m.updateActive(id, func(s *model.Session) error {
		at := f.FinalizedAt
		by := f.FinalizedBy
		s.Status = model.SessionStatusFinalized
		s.FinalizedAt = &at
		s.FinalizedBy = &by
		if f.FinalDecision != nil {
			decision := *f.FinalDecision
			s.FinalDecision = &decision
		}
		return nil
	})
}

// updateActive runs fn under the lock when the session exists and is active.
// fn mutates a copy that replaces the stored session only on success.
func (m *MemoryStore) updateActive(id string, fn func(s *model.Session) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return ErrNotFound
	}
	if s.IsFinalized() {
		return ErrConditionFailed
	}
	next := s.Clone()
	if err := fn(next); err != nil {
		return err
	}
	m.sessions[id] = next
	return nil
}
