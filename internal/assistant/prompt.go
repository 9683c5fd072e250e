package assistant

import (
	"fmt"
	"strings"

	"github.com/Rareminds-eym/skillpassport-sub002/internal/ai"
	"github.com/Rareminds-eym/skillpassport-sub002/internal/store"
)

const persona = `You are Sia, a warm and practical career guidance counselor for students on SkillPassport. You help students explore career paths, close skill gaps, find relevant opportunities, and track their application progress. Speak plainly, stay encouraging, and ground advice in the student context below. Never invent opportunities or assessment results that are not listed.`

// promptOpportunityCap bounds how many listings are spelled out in the
// system prompt; the aggregator already fetches at most 50.
const promptOpportunityCap = 10

// BuildSystemPrompt assembles the full system instruction: persona,
// student context (with explicit markers for sources that are not yet
// available), phase and intent steering, and the memory digest when
// older turns were compressed away.
func BuildSystemPrompt(agg *AggregatedContext, phase Phase, res IntentResult, mem MemorySummary) string {
	var b strings.Builder
	b.WriteString(persona)

	b.WriteString("\n\n## Student profile\n")
	fmt.Fprintf(&b, "Name: %s\n", agg.Profile.Name)
	if agg.Profile.CourseName != "" {
		fmt.Fprintf(&b, "Course: %s", agg.Profile.CourseName)
		if agg.Profile.BranchField != "" {
			fmt.Fprintf(&b, " (%s)", agg.Profile.BranchField)
		}
		b.WriteString("\n")
	}
	if agg.Profile.University != "" {
		fmt.Fprintf(&b, "University: %s\n", agg.Profile.University)
	}
	if len(agg.Profile.Skills) > 0 {
		b.WriteString("Skills: ")
		for i, sk := range agg.Profile.Skills {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s (level %d/5)", sk.Name, sk.Level)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n## Assessment\n")
	if agg.HasAssessment {
		fmt.Fprintf(&b, "RIASEC code: %s\n", agg.Assessment.RiasecCode)
		if len(agg.Assessment.CareerClusters) > 0 {
			fmt.Fprintf(&b, "Career clusters: %s\n", strings.Join(agg.Assessment.CareerClusters, ", "))
		}
		if len(agg.Assessment.Strengths) > 0 {
			fmt.Fprintf(&b, "Strengths: %s\n", strings.Join(agg.Assessment.Strengths, ", "))
		}
	} else {
		b.WriteString("Not yet available. If relevant, gently suggest the student complete their career assessment.\n")
	}

	b.WriteString("\n## Progress\n")
	if agg.HasProgress {
		fmt.Fprintf(&b, "Applications submitted: %d\n", agg.Progress.ApplicationsSubmitted)
		fmt.Fprintf(&b, "Saved opportunities: %d\n", agg.Progress.SavedOpportunities)
		fmt.Fprintf(&b, "Courses enrolled: %d, completed: %d\n", agg.Progress.CoursesEnrolled, agg.Progress.CoursesCompleted)
	} else {
		b.WriteString("Not yet available.\n")
	}

	if len(agg.Opportunities) > 0 {
		b.WriteString("\n## Open opportunities\n")
		b.WriteString("Recommend only from this list. Mention the title and company exactly as written.\n")
		for i, opp := range agg.Opportunities {
			if i >= promptOpportunityCap {
				fmt.Fprintf(&b, "...and %d more matching listings.\n", len(agg.Opportunities)-promptOpportunityCap)
				break
			}
			fmt.Fprintf(&b, "- %s at %s", opp.Title, opp.Company)
			if opp.Location != "" {
				fmt.Fprintf(&b, " (%s)", opp.Location)
			}
			if len(opp.SkillsReq) > 0 {
				fmt.Fprintf(&b, " (skills: %s)", strings.Join(opp.SkillsReq, ", "))
			}
			if opp.SalaryRange != "" {
				fmt.Fprintf(&b, ", %s", opp.SalaryRange)
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\n## Conversation guidance\n")
	b.WriteString(phaseGuidance(phase))
	b.WriteString(intentGuidance(res))

	if mem.Digest != "" {
		b.WriteString("\n")
		b.WriteString(mem.Digest)
		b.WriteString("\n")
	}

	return b.String()
}

func phaseGuidance(phase Phase) string {
	switch phase {
	case PhaseOpening:
		return "This conversation is just starting. Keep replies short and welcoming, and ask one question to understand what the student needs.\n"
	case PhaseExploration:
		return "The student is exploring. Offer a few concrete directions and ask clarifying questions before going deep on any one path.\n"
	case PhaseDeepening:
		return "The conversation has an established focus. Go deeper on it with specific, actionable steps rather than reopening broad options.\n"
	default:
		return "This is a long-running conversation. Build on what has already been discussed and avoid repeating earlier advice.\n"
	}
}

func intentGuidance(res IntentResult) string {
	var b strings.Builder
	switch res.Intent {
	case IntentFindJobs:
		b.WriteString("The student is looking for jobs or internships. Match listed opportunities to their skills and say why each fits.\n")
	case IntentSkillGap:
		b.WriteString("The student wants to understand skill gaps. Compare their current skills against their target roles and name what to learn next.\n")
	case IntentCareerGuidance:
		b.WriteString("The student wants career direction. Use their assessment and interests to suggest paths, with trade-offs.\n")
	case IntentApplicationStatus:
		b.WriteString("The student is asking about their applications. Use the progress numbers above; do not invent application outcomes.\n")
	case IntentResumeReview:
		b.WriteString("The student wants resume help. Give concrete wording and structure suggestions tied to their actual skills.\n")
	case IntentInterviewPrep:
		b.WriteString("The student is preparing for interviews. Offer practice questions and framing relevant to their target roles.\n")
	case IntentLearningPath:
		b.WriteString("The student is asking about courses or learning. Tie suggestions to their enrolled courses and skill gaps.\n")
	default:
		b.WriteString("No specific request detected. Answer helpfully and surface what you can help with: finding jobs, skill gaps, career direction, applications, resumes, interviews, and courses.\n")
	}
	if res.Secondary != "" {
		fmt.Fprintf(&b, "A secondary theme of %s is also present; weave it in if natural.\n", res.Secondary)
	}
	return b.String()
}

// BuildMessages produces the provider payload: the system instruction,
// the recent turn window, then the current user message.
func BuildMessages(systemPrompt string, recent []store.Turn, userMessage string) []ai.Message {
	msgs := make([]ai.Message, 0, len(recent)+2)
	msgs = append(msgs, ai.Message{Role: "system", Content: systemPrompt})
	for _, t := range recent {
		msgs = append(msgs, ai.Message{Role: t.Role, Content: t.Content})
	}
	msgs = append(msgs, ai.Message{Role: store.RoleUser, Content: userMessage})
	return msgs
}
