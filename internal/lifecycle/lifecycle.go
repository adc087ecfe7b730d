// Package lifecycle holds the session state rules: active sessions accept
// submissions, syntheses and reviews; revisions are capped at three versions;
// finalize is a one-way lock.
package lifecycle

import (
	"fmt"
	"time"

	"briefroom.app/relay/internal/domain"
	"briefroom.app/relay/internal/model"
)

const (
	MaxSynthesisVersions = 3
	MaxVersionHistory    = 3
)

const noFeedbackMessage = "No feedback to incorporate yet"

var versionLimitMessage = fmt.Sprintf("Maximum of %d synthesis versions reached - time to make a decision", MaxSynthesisVersions)

// CurrentVersion treats a synthesis stored without a version as version 1.
func CurrentVersion(s *model.Session) int {
	if !s.HasSynthesis() {
		return 0
	}
	if s.SynthesisVersion < 1 {
		return 1
	}
	return s.SynthesisVersion
}

// CheckActive rejects every mutation on a finalized session.
func CheckActive(s *model.Session) error {
	if s.IsFinalized() {
		return domain.InvalidState("Session %s is finalized and can no longer be changed", s.ID)
	}
	return nil
}

func CheckCanSubmit(s *model.Session) error {
	return CheckActive(s)
}

func CheckCanGenerate(s *model.Session, submissions []model.Submission) error {
	if err := CheckActive(s); err != nil {
		return err
	}
	if len(submissions) == 0 {
		return domain.InvalidRequest("At least one submission is required to generate a synthesis")
	}
	return nil
}

// CheckCanReview requires a synthesis to review.
func CheckCanReview(s *model.Session) error {
	if err := CheckActive(s); err != nil {
		return err
	}
	if !s.HasSynthesis() {
		return domain.InvalidState("No synthesis to review yet")
	}
	return nil
}

// CheckCanRevise applies the revise preconditions in order: active, synthesis
// present, version ceiling, then feedback. It returns the version the revision
// will produce.
func CheckCanRevise(s *model.Session, feedback []model.Review) (int, error) {
	if err := CheckActive(s); err != nil {
		return 0, err
	}
	if !s.HasSynthesis() {
		return 0, domain.InvalidState("No synthesis to revise yet")
	}
	next := CurrentVersion(s) + 1
	if next > MaxSynthesisVersions {
		return 0, domain.VersionLimitExceeded(versionLimitMessage)
	}
	if len(feedback) == 0 {
		return 0, domain.InvalidRequest(noFeedbackMessage)
	}
	return next, nil
}

func CheckCanFinalize(s *model.Session) error {
	if s.IsFinalized() {
		return domain.InvalidState("Session %s is already finalized", s.ID)
	}
	return nil
}

// Advisory is the guidance returned with a revised synthesis.
func Advisory(version int) string {
	switch {
	case version >= MaxSynthesisVersions:
		return "Final revision complete - time to decide. No further revisions are allowed; finalize the session."
	case version == 2:
		return "First revision complete. Review the changes and consider finalizing if the brief now answers the panel's concerns."
	default:
		return ""
	}
}

// Snapshot captures the synthesis being replaced and the reviews that replaced it.
func Snapshot(s *model.Session, at time.Time) model.VersionSnapshot {
	return model.VersionSnapshot{
		Version:   CurrentVersion(s),
		Synthesis: s.CurrentSynthesis(),
		Feedback:  append([]model.Review(nil), s.SynthesisReviews...),
		RevisedAt: at,
	}
}

// PushHistory appends snap and keeps the most recent MaxVersionHistory entries.
func PushHistory(history []model.VersionSnapshot, snap model.VersionSnapshot) []model.VersionSnapshot {
	out := append(append([]model.VersionSnapshot(nil), history...), snap)
	if len(out) > MaxVersionHistory {
		out = out[len(out)-MaxVersionHistory:]
	}
	return out
}
