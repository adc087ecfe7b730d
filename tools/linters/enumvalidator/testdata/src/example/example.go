package example

type SessionType string

const (
	SessionTypeGeneral SessionType = "general"
	SessionTypeHiring  SessionType = "hiring"
)

type SessionStatus string

const (
	SessionStatusActive    SessionStatus = "active"
	SessionStatusFinalized SessionStatus = "finalized"
)

type Rating string

const RatingHelpful Rating = "helpful"

type Session struct {
	Title       string
	SessionType SessionType
	Status      SessionStatus
}

type Review struct {
	Rating Rating
}

func bad() {
	s := &Session{}
	s.Status = "closed" // want "enum field Status assigned string literal"

	r := Review{Rating: "thumbs_up"} // want "enum field Rating assigned string literal"
	_ = r

	_ = Session{
		Title:       "Hire Ada?",
		SessionType: "hiring", // want "enum field SessionType assigned string literal"
	}
}

func good() {
	s := &Session{}
	s.Status = SessionStatusFinalized // OK: using constant
	s.Title = "Renewal"               // OK: plain string field

	r := Review{Rating: RatingHelpful} // OK: using constant
	_ = r
}

func alsoGood() {
	// OK: Variable, not literal
	st := SessionTypeHiring
	s := &Session{SessionType: st, Status: SessionStatusActive}
	_ = s

	// OK: conversion of a parsed value
	raw := "general"
	s.SessionType = SessionType(raw)
}
