package synthesis

import (
	"fmt"
	"strings"

	"briefroom.app/relay/internal/model"
)

const expertSystemPrompt = `You are an expert decision synthesis facilitator. You combine analyses from several contributors into one clear, balanced brief for the person who has to decide.

Rules:
- Use only the contributions you are given. Do not invent facts, numbers or quotes.
- Attribute points to contributors by name when it matters who said what.
- Surface disagreement honestly. Do not average conflicting views into something nobody said.
- Use the exact section headers you are asked for, each on its own line, in the given order.`

// BuildGeneratePrompt embeds every submission in order and appends the
// template for the session type.
func BuildGeneratePrompt(topic string, submissions []model.Submission, sessionType model.SessionType) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Decision topic: %s\n\n", strings.TrimSpace(topic))
	b.WriteString("Expert contributions:\n\n")
	writeContributions(&b, submissions)
	b.WriteString("\n")
	b.WriteString(templateFor(sessionType))
	return b.String()
}

type RevisionInput struct {
	Topic        string
	SessionType  model.SessionType
	Previous     string
	Feedback     []model.Review
	Instructions string
	Submissions  []model.Submission
}

// BuildRevisePrompt asks for a new version that keeps the same structure and
// answers every feedback point.
func BuildRevisePrompt(in RevisionInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Decision topic: %s\n\n", strings.TrimSpace(in.Topic))

	b.WriteString("Current synthesis:\n\n")
	b.WriteString(strings.TrimSpace(in.Previous))
	b.WriteString("\n\n")

	b.WriteString("Reviewer feedback:\n")
	b.WriteString(FeedbackSummary(in.Feedback))
	b.WriteString("\n")

	if instr := strings.TrimSpace(in.Instructions); instr != "" {
		fmt.Fprintf(&b, "Additional revision instructions from the session owner:\n%s\n\n", instr)
	}

	b.WriteString("Original contributions, for grounding:\n\n")
	writeContributions(&b, in.Submissions)
	b.WriteString("\n")

	markers := SectionsFor(in.SessionType)
	fmt.Fprintf(&b, "Revise the synthesis. Keep the same %d sections with exactly these headers, in order:\n", len(markers))
	for _, m := range markers {
		b.WriteString(m)
		b.WriteByte('\n')
	}
	b.WriteString("\nAddress every feedback point. Where feedback asks for something the contributions cannot support, say so in the relevant section instead of inventing it. Return only the revised brief.")
	return b.String()
}

// FeedbackSummary renders one line per reviewer.
func FeedbackSummary(reviews []model.Review) string {
	var b strings.Builder
	for _, r := range reviews {
		thumb := "👎"
		if r.Rating == model.RatingHelpful {
			thumb = "👍"
		}
		comment := strings.TrimSpace(r.Comment)
		if comment == "" {
			comment = "No comment"
		}
		fmt.Fprintf(&b, "- %s (%s): %s %s\n", r.CollaboratorName, r.Role, thumb, comment)
	}
	return b.String()
}

func writeContributions(b *strings.Builder, submissions []model.Submission) {
	for i, s := range submissions {
		name := s.CollaboratorName
		if name == "" {
			name = "Contributor"
		}
		fmt.Fprintf(b, "### %d. %s", i+1, name)
		if s.Role != "" {
			fmt.Fprintf(b, " (%s)", s.Role)
		}
		b.WriteString("\n")
		b.WriteString(strings.TrimSpace(s.Analysis))
		b.WriteString("\n\n")
	}
}

func templateFor(sessionType model.SessionType) string {
	if sessionType == model.SessionTypeStudent {
		return progressBriefTemplate
	}
	return decisionBriefTemplate
}

var decisionBriefTemplate = `Write an Executive Decision Brief with exactly these four sections:

` + SectionAgreement + `
Points most contributors support. Name who agrees.

` + SectionConflict + `
Where contributors disagree. For each conflict give each side's position and the evidence behind it.

` + SectionCritical + `
Risks, dealbreakers and missing information that could change the decision.

` + SectionSummary + `
Start with a verdict line: **Verdict: GO**, **Verdict: NO-GO** or **Verdict: CONDITIONAL** (state the conditions).
Then 3 to 5 rationale bullets.
Then next steps, each with an owner and a timeline.`

var progressBriefTemplate = `Write an Assignment Progress Brief with exactly these six sections:

` + SectionOverallStatus + `
One of: On-Track, At-Risk or Needs-Attention, followed by one sentence explaining why.

` + SectionCompletedWork + `
What each student has completed, by name.

` + SectionGaps + `
Missing or incomplete work per student and per assignment section.

` + SectionIntegration + `
Inconsistencies between parts: terminology, referencing, argument flow, formatting.

` + SectionActionItems + `
Dated action items, each with the responsible student.

` + SectionLeaderPriorities + `
The three things the project leader should push on first.

Never write assignment content on the students' behalf. Report coordination status and gaps only.`
