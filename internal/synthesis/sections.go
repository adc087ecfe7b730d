package synthesis

import (
	"strings"

	"briefroom.app/relay/internal/model"
)

// Section headers are a fixed format. Templates instruct the model to emit
// them verbatim and ParseSections splits on them.
const (
	SectionAgreement = "## Areas of Agreement"
	SectionConflict  = "## Areas of Conflict"
	SectionCritical  = "## Critical Points & Red Flags"
	SectionSummary   = "## Executive Summary & Recommendation"

	SectionOverallStatus    = "## Overall Status"
	SectionCompletedWork    = "## Completed Work"
	SectionGaps             = "## Gaps"
	SectionIntegration      = "## Integration Issues"
	SectionActionItems      = "## Action Items"
	SectionLeaderPriorities = "## Project Leader Priorities"
)

var decisionBriefSections = []string{SectionAgreement, SectionConflict, SectionCritical, SectionSummary}

var progressBriefSections = []string{
	SectionOverallStatus,
	SectionCompletedWork,
	SectionGaps,
	SectionIntegration,
	SectionActionItems,
	SectionLeaderPriorities,
}

// SectionsFor returns the header markers expected for a session type.
func SectionsFor(sessionType model.SessionType) []string {
	if sessionType == model.SessionTypeStudent {
		return progressBriefSections
	}
	return decisionBriefSections
}

type Section struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// ParseSections splits a brief on lines that start with "## ". Text before the
// first header is dropped.
func ParseSections(text string) []Section {
	var (
		sections []Section
		current  *Section
		body     strings.Builder
	)
	flush := func() {
		if current != nil {
			current.Body = strings.TrimSpace(body.String())
			sections = append(sections, *current)
		}
		body.Reset()
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "## ") {
			flush()
			current = &Section{Title: strings.TrimSpace(strings.TrimPrefix(trimmed, "## "))}
			continue
		}
		if current != nil {
			body.WriteString(line)
			body.WriteByte('\n')
		}
	}
	flush()
	return sections
}

// HasAllSections reports whether every expected marker for sessionType appears in text.
func HasAllSections(text string, sessionType model.SessionType) bool {
	for _, marker := range SectionsFor(sessionType) {
		if !strings.Contains(text, marker) {
			return false
		}
	}
	return true
}
