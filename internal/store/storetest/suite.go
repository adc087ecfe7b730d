// Package storetest is a compliance suite every SessionStore backend must pass.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"briefroom.app/relay/internal/model"
	"briefroom.app/relay/internal/store"
)

var seq atomic.Int64

func newSession() *model.Session {
	return &model.Session{
		ID:            fmt.Sprintf("st-%d-%d", time.Now().UnixNano(), seq.Add(1)),
		Title:         "Hire a staff engineer",
		Context:       "Two finalists",
		SessionType:   model.SessionTypeHiring,
		MCName:        "Morgan",
		MCEmail:       "morgan@example.test",
		MCRole:        "Hiring Manager",
		SelectedRoles: []string{"Engineering", "HR"},
		Status:        model.SessionStatusActive,
		CreatedAt:     time.Now().UTC().Truncate(time.Millisecond),
	}
}

func at(sec int) time.Time {
	return time.Date(2026, 3, 1, 10, 0, sec, 0, time.UTC)
}

// Run exercises the SessionStore contract. makeStore must return an isolated store.
func Run(t *testing.T, makeStore func(t *testing.T) store.SessionStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("create and get", func(t *testing.T) {
		s := makeStore(t)
		sess := newSession()
		if err := s.Create(ctx, sess); err != nil {
			t.Fatalf("Create: %v", err)
		}
		got, err := s.GetByID(ctx, sess.ID)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if got.Title != sess.Title || got.Status != model.SessionStatusActive || got.SessionType != model.SessionTypeHiring {
			t.Errorf("unexpected session %+v", got)
		}
		if got.Synthesis != nil || len(got.Submissions) != 0 {
			t.Errorf("new session should be empty: %+v", got)
		}
		if _, err := s.GetByID(ctx, "missing-"+sess.ID); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("GetByID missing: err = %v", err)
		}
	})

	t.Run("concurrent appends are not lost", func(t *testing.T) {
		s := makeStore(t)
		sess := newSession()
		if err := s.Create(ctx, sess); err != nil {
			t.Fatalf("Create: %v", err)
		}

		const writers = 8
		var wg sync.WaitGroup
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				sub := model.Submission{Role: "Engineering", CollaboratorName: fmt.Sprintf("c%d", i), Analysis: "a", SubmittedAt: at(i)}
				if err := s.AppendSubmission(ctx, sess.ID, sub); err != nil {
					t.Errorf("AppendSubmission: %v", err)
				}
			}(i)
		}
		wg.Wait()

		got, err := s.GetByID(ctx, sess.ID)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if len(got.Submissions) != writers {
			t.Errorf("submissions = %d, want %d", len(got.Submissions), writers)
		}
	})

	t.Run("synthesis, reviews and revision", func(t *testing.T) {
		s := makeStore(t)
		sess := newSession()
		if err := s.Create(ctx, sess); err != nil {
			t.Fatalf("Create: %v", err)
		}
		if err := s.SetSynthesis(ctx, sess.ID, "v1 text", at(1)); err != nil {
			t.Fatalf("SetSynthesis: %v", err)
		}
		review := model.Review{CollaboratorName: "Ana", Role: "HR", Rating: model.RatingNeedsWork, Comment: "more risk", Timestamp: at(2)}
		if err := s.AppendReview(ctx, sess.ID, review); err != nil {
			t.Fatalf("AppendReview: %v", err)
		}

		got, _ := s.GetByID(ctx, sess.ID)
		if got.SynthesisVersion != 1 || got.CurrentSynthesis() != "v1 text" || len(got.SynthesisReviews) != 1 {
			t.Fatalf("after generate: %+v", got)
		}

		update := store.RevisionUpdate{
			Synthesis: "v2 text",
			Version:   2,
			Snapshot:  model.VersionSnapshot{Version: 1, Synthesis: "v1 text", Feedback: []model.Review{review}, RevisedAt: at(3)},
			RevisedAt: at(3),
		}
		if err := s.ApplyRevision(ctx, sess.ID, 2, update); !errors.Is(err, store.ErrConditionFailed) {
			t.Errorf("stale expected version: err = %v", err)
		}
		if err := s.ApplyRevision(ctx, sess.ID, 1, update); err != nil {
			t.Fatalf("ApplyRevision: %v", err)
		}
		if err := s.ApplyRevision(ctx, sess.ID, 1, update); !errors.Is(err, store.ErrConditionFailed) {
			t.Errorf("second writer at same version should lose: err = %v", err)
		}

		got, _ = s.GetByID(ctx, sess.ID)
		if got.SynthesisVersion != 2 || got.CurrentSynthesis() != "v2 text" {
			t.Errorf("after revise: version=%d text=%q", got.SynthesisVersion, got.CurrentSynthesis())
		}
		if len(got.SynthesisReviews) != 0 {
			t.Errorf("reviews not cleared: %+v", got.SynthesisReviews)
		}
		if len(got.VersionHistory) != 1 || got.VersionHistory[0].Synthesis != "v1 text" || len(got.VersionHistory[0].Feedback) != 1 {
			t.Errorf("history = %+v", got.VersionHistory)
		}
	})

	t.Run("synthesis stored without a version revises from 1", func(t *testing.T) {
		s := makeStore(t)
		sess := newSession()
		legacy := "legacy text"
		sess.Synthesis = &legacy
		if err := s.Create(ctx, sess); err != nil {
			t.Fatalf("Create: %v", err)
		}

		update := store.RevisionUpdate{
			Synthesis: "v2 text",
			Version:   2,
			Snapshot:  model.VersionSnapshot{Version: 1, Synthesis: legacy, RevisedAt: at(1)},
			RevisedAt: at(1),
		}
		if err := s.ApplyRevision(ctx, sess.ID, 1, update); err != nil {
			t.Fatalf("ApplyRevision: %v", err)
		}
		got, _ := s.GetByID(ctx, sess.ID)
		if got.SynthesisVersion != 2 || got.CurrentSynthesis() != "v2 text" {
			t.Errorf("after revise: version=%d text=%q", got.SynthesisVersion, got.CurrentSynthesis())
		}
	})

	t.Run("history keeps last three", func(t *testing.T) {
		s := makeStore(t)
		sess := newSession()
		if err := s.Create(ctx, sess); err != nil {
			t.Fatalf("Create: %v", err)
		}
		if err := s.SetSynthesis(ctx, sess.ID, "v1", at(0)); err != nil {
			t.Fatalf("SetSynthesis: %v", err)
		}
		for v := 2; v <= 5; v++ {
			update := store.RevisionUpdate{
				Synthesis: fmt.Sprintf("v%d", v),
				Version:   v,
				Snapshot:  model.VersionSnapshot{Version: v - 1, Synthesis: fmt.Sprintf("v%d", v-1), RevisedAt: at(v)},
				RevisedAt: at(v),
			}
			if err := s.ApplyRevision(ctx, sess.ID, v-1, update); err != nil {
				t.Fatalf("ApplyRevision v%d: %v", v, err)
			}
		}
		got, _ := s.GetByID(ctx, sess.ID)
		if len(got.VersionHistory) != 3 || got.VersionHistory[0].Version != 2 || got.VersionHistory[2].Version != 4 {
			t.Errorf("history = %+v", got.VersionHistory)
		}
	})

	t.Run("finalize has one winner and freezes the session", func(t *testing.T) {
		s := makeStore(t)
		sess := newSession()
		if err := s.Create(ctx, sess); err != nil {
			t.Fatalf("Create: %v", err)
		}
		if err := s.SetSynthesis(ctx, sess.ID, "v1", at(0)); err != nil {
			t.Fatalf("SetSynthesis: %v", err)
		}

		var (
			wg   sync.WaitGroup
			wins atomic.Int32
		)
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				decision := fmt.Sprintf("decision %d", i)
				err := s.Finalize(ctx, sess.ID, store.Finalization{FinalizedAt: at(10 + i), FinalizedBy: "Morgan", FinalDecision: &decision})
				switch {
				case err == nil:
					wins.Add(1)
				case !errors.Is(err, store.ErrConditionFailed):
					t.Errorf("Finalize: %v", err)
				}
			}(i)
		}
		wg.Wait()
		if wins.Load() != 1 {
			t.Fatalf("finalize winners = %d, want 1", wins.Load())
		}

		got, _ := s.GetByID(ctx, sess.ID)
		if got.Status != model.SessionStatusFinalized || got.FinalizedAt == nil || got.FinalizedBy == nil || *got.FinalizedBy != "Morgan" || got.FinalDecision == nil {
			t.Errorf("finalized session = %+v", got)
		}

		sub := model.Submission{Role: "HR", CollaboratorName: "late", Analysis: "a"}
		if err := s.AppendSubmission(ctx, sess.ID, sub); !errors.Is(err, store.ErrConditionFailed) {
			t.Errorf("AppendSubmission after finalize: err = %v", err)
		}
		if err := s.AppendReview(ctx, sess.ID, model.Review{CollaboratorName: "late"}); !errors.Is(err, store.ErrConditionFailed) {
			t.Errorf("AppendReview after finalize: err = %v", err)
		}
		if err := s.SetSynthesis(ctx, sess.ID, "again", at(20)); !errors.Is(err, store.ErrConditionFailed) {
			t.Errorf("SetSynthesis after finalize: err = %v", err)
		}
		if err := s.ApplyRevision(ctx, sess.ID, 1, store.RevisionUpdate{Synthesis: "x", Version: 2}); !errors.Is(err, store.ErrConditionFailed) {
			t.Errorf("ApplyRevision after finalize: err = %v", err)
		}

		after, _ := s.GetByID(ctx, sess.ID)
		if len(after.Submissions) != 0 || after.CurrentSynthesis() != "v1" || *after.FinalDecision != *got.FinalDecision {
			t.Errorf("finalized session changed: %+v", after)
		}
	})

	t.Run("mutations on a missing session", func(t *testing.T) {
		s := makeStore(t)
		id := newSession().ID
		if err := s.AppendReview(ctx, id, model.Review{}); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("AppendReview: err = %v", err)
		}
		if err := s.Finalize(ctx, id, store.Finalization{}); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("Finalize: err = %v", err)
		}
	})
}
