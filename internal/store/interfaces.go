package store

import (
	"context"
	"errors"
	"time"

	"briefroom.app/relay/internal/model"
)

// ErrNotFound is returned when a requested session does not exist
var ErrNotFound = errors.New("not found")

// ErrConditionFailed is returned when a conditional write lost: the session is
// no longer active, or its synthesis version moved.
var ErrConditionFailed = errors.New("condition failed")

// SessionStore defines the contract for session persistence. Every mutation is
// a single atomic, field-scoped write so concurrent writers to different
// fields never overwrite each other.
type SessionStore interface {
	Create(ctx context.Context, session *model.Session) error
	GetByID(ctx context.Context, id string) (*model.Session, error)

	// AppendSubmission pushes onto submissions while the session is active.
	AppendSubmission(ctx context.Context, id string, sub model.Submission) error
	// AppendReview pushes onto synthesisReviews while the session is active.
	AppendReview(ctx context.Context, id string, review model.Review) error
	// SetSynthesis overwrites the synthesis as version 1 while the session is active.
	SetSynthesis(ctx context.Context, id string, text string, at time.Time) error
	// ApplyRevision is a compare-and-set on the synthesis version.
	ApplyRevision(ctx context.Context, id string, expectedVersion int, update RevisionUpdate) error
	// Finalize flips status to finalized. Exactly one concurrent caller wins.
	Finalize(ctx context.Context, id string, f Finalization) error
}

type RevisionUpdate struct {
	Synthesis string
	Version   int
	Snapshot  model.VersionSnapshot
	RevisedAt time.Time
}

type Finalization struct {
	FinalizedAt   time.Time
	FinalizedBy   string
	FinalDecision *string
}

// normalize replaces nil slices so array appends work on every backend.
func normalize(s *model.Session) {
	if s.SelectedRoles == nil {
		s.SelectedRoles = []string{}
	}
	if s.Submissions == nil {
		s.Submissions = []model.Submission{}
	}
	if s.SynthesisReviews == nil {
		s.SynthesisReviews = []model.Review{}
	}
	if s.VersionHistory == nil {
		s.VersionHistory = []model.VersionSnapshot{}
	}
	for i := range s.Submissions {
		normalizeSubmission(&s.Submissions[i])
	}
}

func normalizeSubmission(sub *model.Submission) {
	if sub.Iterations == nil {
		sub.Iterations = []model.Iteration{}
	}
	if sub.UploadedDocuments == nil {
		sub.UploadedDocuments = []model.DocumentRef{}
	}
}
