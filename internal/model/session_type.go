package model

import "strings"

// SessionType selects the analytical rubric and synthesis template for a session.
type SessionType string

const (
	SessionTypeGeneral     SessionType = "general"
	SessionTypeHiring      SessionType = "hiring"
	SessionTypePerformance SessionType = "performance"
	SessionTypeRisk        SessionType = "risk"
	SessionTypeStrategy    SessionType = "strategy"
	SessionTypeStudent     SessionType = "student"
	SessionTypeRFP         SessionType = "rfp"
)

// SessionTypes lists every supported type in display order.
var SessionTypes = []SessionType{
	SessionTypeGeneral,
	SessionTypeHiring,
	SessionTypePerformance,
	SessionTypeRisk,
	SessionTypeStrategy,
	SessionTypeStudent,
	SessionTypeRFP,
}

// ParseSessionType normalizes s. Anything unrecognized becomes general.
func ParseSessionType(s string) SessionType {
	t := SessionType(strings.ToLower(strings.TrimSpace(s)))
	if t.Valid() {
		return t
	}
	return SessionTypeGeneral
}

func (t SessionType) Valid() bool {
	switch t {
	case SessionTypeGeneral, SessionTypeHiring, SessionTypePerformance, SessionTypeRisk,
		SessionTypeStrategy, SessionTypeStudent, SessionTypeRFP:
		return true
	default:
		return false
	}
}

type SessionStatus string

const (
	SessionStatusActive    SessionStatus = "active"
	SessionStatusFinalized SessionStatus = "finalized"
)

// Rating is a reviewer's verdict on the current synthesis.
type Rating string

const (
	RatingHelpful   Rating = "helpful"
	RatingNeedsWork Rating = "needs_work"
)

// ParseRating accepts the stored values plus the thumbs aliases used by clients.
func ParseRating(s string) (Rating, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "helpful", "thumbs_up", "up":
		return RatingHelpful, true
	case "needs_work", "thumbs_down", "down":
		return RatingNeedsWork, true
	default:
		return "", false
	}
}
