package model

import (
	"slices"
	"time"
)

// MaxCustomRoles caps the custom role labels an MC may add on top of the predefined ones.
const MaxCustomRoles = 5

// Session is the root aggregate. Field names are the stored document format and must not change.
type Session struct {
	ID            string        `json:"id" bson:"_id"`
	Title         string        `json:"title" bson:"title"`
	Context       string        `json:"context" bson:"context"`
	SessionType   SessionType   `json:"sessionType" bson:"sessionType"`
	MCName        string        `json:"mcName" bson:"mcName"`
	MCEmail       string        `json:"mcEmail" bson:"mcEmail"`
	MCRole        string        `json:"mcRole" bson:"mcRole"`
	SelectedRoles []string      `json:"selectedRoles" bson:"selectedRoles"`
	CustomRoles   []string      `json:"customRoles,omitempty" bson:"customRoles,omitempty"`
	Status        SessionStatus `json:"status" bson:"status"`

	Submissions []Submission `json:"submissions" bson:"submissions"`

	Synthesis            *string           `json:"synthesis" bson:"synthesis"`
	SynthesisVersion     int               `json:"synthesisVersion,omitempty" bson:"synthesisVersion,omitempty"`
	SynthesisGeneratedAt *time.Time        `json:"synthesisGeneratedAt,omitempty" bson:"synthesisGeneratedAt,omitempty"`
	SynthesisReviews     []Review          `json:"synthesisReviews" bson:"synthesisReviews"`
	VersionHistory       []VersionSnapshot `json:"versionHistory" bson:"versionHistory"`

	FinalizedAt   *time.Time `json:"finalizedAt" bson:"finalizedAt"`
	FinalizedBy   *string    `json:"finalizedBy" bson:"finalizedBy"`
	FinalDecision *string    `json:"finalDecision" bson:"finalDecision"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// Submission is one collaborator's (or the MC's) contribution. Never mutated once appended.
type Submission struct {
	Role              string        `json:"role" bson:"role"`
	CollaboratorName  string        `json:"collaboratorName" bson:"collaboratorName"`
	CustomPrompt      string        `json:"customPrompt,omitempty" bson:"customPrompt,omitempty"`
	Analysis          string        `json:"analysis" bson:"analysis"`
	Iterations        []Iteration   `json:"iterations" bson:"iterations"`
	UploadedDocuments []DocumentRef `json:"uploadedDocuments" bson:"uploadedDocuments"`
	SubmittedAt       time.Time     `json:"submittedAt" bson:"submittedAt"`
}

// Iteration is one regeneration a collaborator produced before submitting.
type Iteration struct {
	Prompt    string    `json:"prompt" bson:"prompt"`
	Analysis  string    `json:"analysis" bson:"analysis"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}

// DocumentRef points at an uploaded file in object storage.
type DocumentRef struct {
	Name      string `json:"name" bson:"name"`
	URL       string `json:"url" bson:"url"`
	MediaType string `json:"type" bson:"type"`
	Size      int64  `json:"size" bson:"size"`
}

// Review is one collaborator's feedback on the current synthesis version.
type Review struct {
	CollaboratorName string    `json:"collaboratorName" bson:"collaboratorName"`
	Role             string    `json:"role" bson:"role"`
	Rating           Rating    `json:"rating" bson:"rating"`
	Comment          string    `json:"comment,omitempty" bson:"comment,omitempty"`
	Timestamp        time.Time `json:"timestamp" bson:"timestamp"`
}

// VersionSnapshot records a superseded synthesis and the feedback that replaced it.
type VersionSnapshot struct {
	Version   int       `json:"version" bson:"version"`
	Synthesis string    `json:"synthesis" bson:"synthesis"`
	Feedback  []Review  `json:"feedback" bson:"feedback"`
	RevisedAt time.Time `json:"revisedAt" bson:"revisedAt"`
}

func (s *Session) IsFinalized() bool {
	return s.Status == SessionStatusFinalized
}

func (s *Session) HasSynthesis() bool {
	return s.Synthesis != nil && *s.Synthesis != ""
}

// CurrentSynthesis returns the synthesis text or "" when none was generated yet.
func (s *Session) CurrentSynthesis() string {
	if s.Synthesis == nil {
		return ""
	}
	return *s.Synthesis
}

// Clone returns a deep copy so callers can't alias stored slices.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.SelectedRoles = slices.Clone(s.SelectedRoles)
	c.CustomRoles = slices.Clone(s.CustomRoles)
	c.Submissions = make([]Submission, len(s.Submissions))
	for i, sub := range s.Submissions {
		sub.Iterations = slices.Clone(sub.Iterations)
		sub.UploadedDocuments = slices.Clone(sub.UploadedDocuments)
		c.Submissions[i] = sub
	}
	c.SynthesisReviews = slices.Clone(s.SynthesisReviews)
	c.VersionHistory = make([]VersionSnapshot, len(s.VersionHistory))
	for i, v := range s.VersionHistory {
		v.Feedback = slices.Clone(v.Feedback)
		c.VersionHistory[i] = v
	}
	c.Synthesis = clonePtr(s.Synthesis)
	c.SynthesisGeneratedAt = clonePtr(s.SynthesisGeneratedAt)
	c.FinalizedAt = clonePtr(s.FinalizedAt)
	c.FinalizedBy = clonePtr(s.FinalizedBy)
	c.FinalDecision = clonePtr(s.FinalDecision)
	return &c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
